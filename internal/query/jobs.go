package query

import (
	"context"
	"time"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/models"
)

// List keys, and the kinds detail keys are built from.
const (
	ResearchJobsKey   Key = "research-jobs"
	CurationJobsKey   Key = "curation-jobs"
	ProductionJobsKey Key = "production-jobs"

	researchJobKind   = "research-job"
	curationJobKind   = "curation-job"
	productionJobKind = "production-job"
)

// Default refetch intervals.
const (
	DefaultListInterval   = 5 * time.Second
	DefaultDetailInterval = 3 * time.Second
)

// Intervals configures how often lists and details are refetched while
// something is still in progress.
type Intervals struct {
	List   time.Duration
	Detail time.Duration
}

// DefaultIntervals returns the dashboard defaults.
func DefaultIntervals() Intervals {
	return Intervals{List: DefaultListInterval, Detail: DefaultDetailInterval}
}

func (iv Intervals) list() time.Duration {
	if iv.List > 0 {
		return iv.List
	}
	return DefaultListInterval
}

func (iv Intervals) detail() time.Duration {
	if iv.Detail > 0 {
		return iv.Detail
	}
	return DefaultDetailInterval
}

// ResearchJobKey is the detail key of a research job.
func ResearchJobKey(id string) Key { return KeyOf(researchJobKind, id) }

// CurationJobKey is the detail key of a curation job.
func CurationJobKey(id string) Key { return KeyOf(curationJobKind, id) }

// ProductionJobKey is the detail key of a production job.
func ProductionJobKey(id string) Key { return KeyOf(productionJobKind, id) }

// ResearchJobs lists research jobs, polling while any is in progress.
func ResearchJobs(c *client.Client, iv Intervals) Query[[]models.ResearchJob] {
	return Query[[]models.ResearchJob]{
		Key: ResearchJobsKey,
		Fetch: func(ctx context.Context) ([]models.ResearchJob, error) {
			return c.Research().ListJobs(ctx)
		},
		Refetch: While(iv.list(), models.AnyResearchActive),
	}
}

// ResearchJob fetches one research job, polling until it is terminal.
func ResearchJob(c *client.Client, id string, iv Intervals) Query[*models.ResearchJobDetail] {
	return Query[*models.ResearchJobDetail]{
		Key: ResearchJobKey(id),
		Fetch: func(ctx context.Context) (*models.ResearchJobDetail, error) {
			return c.Research().GetJob(ctx, id)
		},
		Refetch: While(iv.detail(), func(j *models.ResearchJobDetail) bool {
			return j != nil && j.Status.ShouldPoll()
		}),
	}
}

// CurationJobs lists curation jobs, polling while any is in progress.
func CurationJobs(c *client.Client, iv Intervals) Query[[]models.CurationJob] {
	return Query[[]models.CurationJob]{
		Key: CurationJobsKey,
		Fetch: func(ctx context.Context) ([]models.CurationJob, error) {
			return c.Curation().ListJobs(ctx)
		},
		Refetch: While(iv.list(), models.AnyCurationActive),
	}
}

// CurationJob fetches one curation job, polling until it is terminal.
func CurationJob(c *client.Client, id string, iv Intervals) Query[*models.CurationJob] {
	return Query[*models.CurationJob]{
		Key: CurationJobKey(id),
		Fetch: func(ctx context.Context) (*models.CurationJob, error) {
			return c.Curation().GetJob(ctx, id)
		},
		Refetch: While(iv.detail(), func(j *models.CurationJob) bool {
			return j != nil && j.Status.ShouldPoll()
		}),
	}
}

// ProductionJobs lists production jobs, polling while any is in progress.
func ProductionJobs(c *client.Client, iv Intervals) Query[[]models.ProductionJob] {
	return Query[[]models.ProductionJob]{
		Key: ProductionJobsKey,
		Fetch: func(ctx context.Context) ([]models.ProductionJob, error) {
			return c.Production().ListJobs(ctx)
		},
		Refetch: While(iv.list(), models.AnyProductionActive),
	}
}

// ProductionJob fetches one production job with its assets, polling until
// the job is terminal.
func ProductionJob(c *client.Client, id string, iv Intervals) Query[*models.ProductionJobDetail] {
	return Query[*models.ProductionJobDetail]{
		Key: ProductionJobKey(id),
		Fetch: func(ctx context.Context) (*models.ProductionJobDetail, error) {
			return c.Production().GetJob(ctx, id)
		},
		Refetch: While(iv.detail(), func(d *models.ProductionJobDetail) bool {
			return d != nil && d.Job.Status.ShouldPoll()
		}),
	}
}
