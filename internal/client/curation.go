package client

import (
	"context"
	"net/http"

	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/raphaelgruber/ymfactory/internal/models"
)

// CurationClient covers /curation.
type CurationClient struct {
	c    *Client
	base string
}

// StartCurationRequest is the body of POST /curation/start.
// An empty SelectedVideoIDs lets the backend use every discovered video.
type StartCurationRequest struct {
	ResearchJobID    string   `json:"research_job_id" validate:"required"`
	SelectedVideoIDs []string `json:"selected_video_ids,omitempty"`
}

// ListJobs returns all curation jobs, newest first.
func (r *CurationClient) ListJobs(ctx context.Context) ([]models.CurationJob, error) {
	var jobs []models.CurationJob
	if err := r.c.do(ctx, metrics.OpCurationList, http.MethodGet, r.base+"/", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns a curation job, including its brief once generated.
func (r *CurationClient) GetJob(ctx context.Context, id string) (*models.CurationJob, error) {
	if err := r.c.check(idRequest{ID: id}); err != nil {
		return nil, err
	}
	var job models.CurationJob
	if err := r.c.do(ctx, metrics.OpCurationGet, http.MethodGet, jobPath(r.base, id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// StartCuration creates a curation job for a research job.
func (r *CurationClient) StartCuration(ctx context.Context, req StartCurationRequest) (*models.CurationJob, error) {
	if err := r.c.check(req); err != nil {
		return nil, err
	}
	var job models.CurationJob
	if err := r.c.do(ctx, metrics.OpCurationStart, http.MethodPost, r.base+"/start", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
