package client

import (
	"context"
	"net/http"

	"github.com/raphaelgruber/ymfactory/internal/metrics"
)

// Health is the backend's dependency report from GET /health.
// Each dependency field is "ok", "unknown", or an error description.
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	CometAPI string `json:"cometapi"`
}

// OK reports whether the backend considers itself healthy.
func (h Health) OK() bool {
	return h.Status == "ok"
}

// Health fetches the backend health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, metrics.OpHealth, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
