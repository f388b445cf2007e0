// Package ui implements the full-screen dashboard.
package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/raphaelgruber/ymfactory/internal/prefs"
	"github.com/raphaelgruber/ymfactory/internal/query"
	"github.com/raphaelgruber/ymfactory/internal/settings"
)

// requestTimeout bounds every fetch and mutation issued by the dashboard.
const requestTimeout = 15 * time.Second

// Dependencies holds shared services for pages.
type Dependencies struct {
	Client      *client.Client
	Cache       *query.Cache
	Tracker     *query.Tracker
	Intervals   query.Intervals
	Credentials settings.CredentialStore
	Prefs       *prefs.Store
	Metrics     *metrics.Collector
	Logs        *LineBuffer
	Logger      *slog.Logger
}

func (d *Dependencies) withDefaults() {
	if d.Cache == nil {
		d.Cache = query.NewCache()
	}
	if d.Tracker == nil {
		d.Tracker = query.NewTracker()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Credentials == nil {
		d.Credentials = settings.SimulatedStore{Logger: d.Logger}
	}
	if d.Prefs == nil {
		d.Prefs = prefs.Open("", d.Logger)
	}
	if d.Logs == nil {
		d.Logs = NewLineBuffer(defaultLogLines)
	}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
