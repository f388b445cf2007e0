package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/raphaelgruber/ymfactory/internal/models"
)

// ProductionClient covers /production.
type ProductionClient struct {
	c    *Client
	base string
}

// StartProductionRequest is the body of POST /production/start.
type StartProductionRequest struct {
	CurationJobID string `json:"curation_job_id" validate:"required"`
}

// ListJobs returns production jobs, newest first.
func (r *ProductionClient) ListJobs(ctx context.Context) ([]models.ProductionJob, error) {
	var jobs []models.ProductionJob
	if err := r.c.do(ctx, metrics.OpProductionList, http.MethodGet, r.base+"/", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns a production job with its scenes and tracks.
func (r *ProductionClient) GetJob(ctx context.Context, id string) (*models.ProductionJobDetail, error) {
	if err := r.c.check(idRequest{ID: id}); err != nil {
		return nil, err
	}
	var detail models.ProductionJobDetail
	if err := r.c.do(ctx, metrics.OpProductionGet, http.MethodGet, jobPath(r.base, id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// StartProduction creates (or returns the existing) production job for a
// curation job.
func (r *ProductionClient) StartProduction(ctx context.Context, curationJobID string) (*models.ProductionJob, error) {
	req := StartProductionRequest{CurationJobID: curationJobID}
	if err := r.c.check(req); err != nil {
		return nil, err
	}
	var job models.ProductionJob
	if err := r.c.do(ctx, metrics.OpProductionStart, http.MethodPost, r.base+"/start", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobByCuration returns the production job started from a curation job.
// The backend answers {"status":"none"} when there is none; that is
// reported as ErrNotFound.
func (r *ProductionClient) GetJobByCuration(ctx context.Context, curationJobID string) (*models.ProductionJob, error) {
	if err := r.c.check(idRequest{ID: curationJobID}); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	path := jobPath(r.base+"/curation", curationJobID)
	if err := r.c.do(ctx, metrics.OpProductionByCuration, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	var job models.ProductionJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("unmarshal production job: %w", err)
	}
	if job.ID == "" && job.Status == "none" {
		return nil, fmt.Errorf("production job for curation %s: %w", curationJobID, ErrNotFound)
	}
	return &job, nil
}
