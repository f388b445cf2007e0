package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/raphaelgruber/ymfactory/internal/models"
)

// DefaultResearchDepth is sent when a research request does not name a depth.
const DefaultResearchDepth = "standard"

// ResearchClient covers /research.
type ResearchClient struct {
	c    *Client
	base string
}

// StartResearchRequest is the body of POST /research/start.
type StartResearchRequest struct {
	Topic         string `json:"topic" validate:"required"`
	ResearchDepth string `json:"research_depth"`
}

// ListJobs returns all research jobs, newest first.
func (r *ResearchClient) ListJobs(ctx context.Context) ([]models.ResearchJob, error) {
	var jobs []models.ResearchJob
	if err := r.c.do(ctx, metrics.OpResearchList, http.MethodGet, r.base, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns a research job with its discovered videos.
func (r *ResearchClient) GetJob(ctx context.Context, id string) (*models.ResearchJobDetail, error) {
	if err := r.c.check(idRequest{ID: id}); err != nil {
		return nil, err
	}
	var job models.ResearchJobDetail
	if err := r.c.do(ctx, metrics.OpResearchGet, http.MethodGet, jobPath(r.base, id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// StartJob creates a research job. The topic is trimmed; a blank topic is
// rejected with ErrInvalidRequest and nothing is sent.
func (r *ResearchClient) StartJob(ctx context.Context, req StartResearchRequest) (*models.ResearchJob, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.ResearchDepth == "" {
		req.ResearchDepth = DefaultResearchDepth
	}
	if err := r.c.check(req); err != nil {
		return nil, err
	}

	var job models.ResearchJob
	if err := r.c.do(ctx, metrics.OpResearchStart, http.MethodPost, r.base+"/start", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteJob removes a research job. Any 2xx is treated as removal.
func (r *ResearchClient) DeleteJob(ctx context.Context, id string) error {
	if err := r.c.check(idRequest{ID: id}); err != nil {
		return err
	}
	return r.c.do(ctx, metrics.OpResearchDelete, http.MethodDelete, jobPath(r.base, id), nil, nil)
}

// idRequest validates path ids.
type idRequest struct {
	ID string `validate:"required"`
}
