package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

// overviewMsg carries one overview refresh.
type overviewMsg struct {
	seq        int
	research   []models.ResearchJob
	curation   []models.CurationJob
	production []models.ProductionJob
	health     *client.Health
	healthErr  error
	err        error
}

type overviewPage struct {
	deps    *Dependencies
	seq     int
	loading bool
	data    overviewMsg
	loaded  bool
}

func newOverviewPage(d *Dependencies) *overviewPage {
	return &overviewPage{deps: d}
}

func (p *overviewPage) activate(string) tea.Cmd {
	return p.refresh()
}

func (p *overviewPage) deactivate() {}

func (p *overviewPage) capturing() bool { return false }

func (p *overviewPage) key(msg tea.KeyPressMsg) tea.Cmd {
	return p.handleKey(msg.String())
}

func (p *overviewPage) handleKey(k string) tea.Cmd {
	if k == "r" {
		return p.refresh()
	}
	return nil
}

// refresh fetches the three job lists and backend health concurrently.
// Each read runs on its own; one failing list leaves the others intact.
func (p *overviewPage) refresh() tea.Cmd {
	p.seq++
	p.loading = true
	seq := p.seq
	d := p.deps

	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		msg := overviewMsg{seq: seq}
		var g errgroup.Group
		var researchErr, curationErr, productionErr error
		g.Go(func() error {
			r := query.Run(ctx, d.Cache, query.ResearchJobs(d.Client, d.Intervals))
			msg.research, researchErr = r.Data, r.Err
			return nil
		})
		g.Go(func() error {
			r := query.Run(ctx, d.Cache, query.CurationJobs(d.Client, d.Intervals))
			msg.curation, curationErr = r.Data, r.Err
			return nil
		})
		g.Go(func() error {
			r := query.Run(ctx, d.Cache, query.ProductionJobs(d.Client, d.Intervals))
			msg.production, productionErr = r.Data, r.Err
			return nil
		})

		health, healthErr := d.Client.Health(ctx)
		msg.health, msg.healthErr = health, healthErr

		_ = g.Wait()
		if err := errors.Join(researchErr, curationErr, productionErr); err != nil {
			msg.err = fmt.Errorf("refresh overview: %w", err)
		}
		return msg
	}
}

func (p *overviewPage) update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(overviewMsg)
	if !ok || m.seq != p.seq {
		return nil
	}
	p.loading = false
	p.loaded = true
	p.data = m
	if m.err != nil {
		p.deps.Logger.Warn("overview refresh failed", "error", m.err)
	}
	return nil
}

func (p *overviewPage) view(width int) string {
	t := defaultTheme
	var b strings.Builder

	b.WriteString(t.titleStyle().Render("Overview"))
	if p.loading {
		b.WriteString("  " + t.hintStyle().Render("refreshing..."))
	}
	b.WriteString("\n\n")

	if !p.loaded {
		b.WriteString(t.hintStyle().Render("Loading pipeline status..."))
		return b.String()
	}

	b.WriteString(p.healthLine())
	b.WriteString("\n\n")

	research := make([]string, len(p.data.research))
	for i, j := range p.data.research {
		research[i] = string(j.Status)
	}
	curation := make([]string, len(p.data.curation))
	for i, j := range p.data.curation {
		curation[i] = string(j.Status)
	}
	production := make([]string, len(p.data.production))
	for i, j := range p.data.production {
		production[i] = string(j.Status)
	}
	b.WriteString(stageLine("Research", research))
	b.WriteString(stageLine("Curation", curation))
	b.WriteString(stageLine("Production", production))

	if p.data.err != nil {
		b.WriteString("\n" + refreshError(p.data.err))
	}

	b.WriteString("\n" + t.titleStyle().Render("Client requests") + "\n")
	b.WriteString(requestStats(p.deps.Metrics.Snapshot()))
	b.WriteString("\n" + t.hintStyle().Render("r: refresh"))
	return b.String()
}

func (p *overviewPage) healthLine() string {
	t := defaultTheme
	if p.data.healthErr != nil {
		return t.errorStyle().Render("Backend unreachable: ") + p.data.healthErr.Error()
	}
	h := p.data.health
	if h == nil {
		return t.hintStyle().Render("Backend health unknown")
	}
	status := t.completedStyle().Render("Backend OK")
	if !h.OK() {
		status = t.warningStyle().Render("Backend degraded")
	}
	return fmt.Sprintf("%s  database: %s  redis: %s  cometapi: %s", status, h.Database, h.Redis, h.CometAPI)
}

// stageLine renders the number of jobs per status for one stage.
func stageLine(stage string, statuses []string) string {
	counts := make(map[string]int)
	for _, s := range statuses {
		counts[s]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", models.StatusLabel(k), counts[k])
	}
	detail := strings.Join(parts, ", ")
	if detail == "" {
		detail = "no jobs"
	}
	return fmt.Sprintf("  %-11s %3d  %s\n", stage, len(statuses), detail)
}

// requestStats renders the metrics snapshot as a small table.
func requestStats(s metrics.Snapshot) string {
	if len(s.Operations) == 0 {
		return defaultTheme.hintStyle().Render("  No requests yet.") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %-24s %6s %6s %8s\n", "OPERATION", "COUNT", "ERRORS", "AVG MS")
	for _, op := range s.Operations {
		fmt.Fprintf(&b, "  %-24s %6d %6d %8.1f\n", op.Op, op.Count, op.Errors, op.AvgTimeMs)
	}
	return b.String()
}
