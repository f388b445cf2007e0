package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

// watchTimeout bounds a single poll request.
const watchTimeout = 10 * time.Second

// Theme holds the color scheme for the watch display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// jobState is what the watch display needs to know about a job.
type jobState struct {
	status   string
	terminal bool
	failed   bool
	reason   string
	progress float64 // negative when there is nothing to measure
	counts   string
}

func researchState(j *models.ResearchJobDetail) jobState {
	s := jobState{
		status:   string(j.Status),
		terminal: j.Status.IsTerminal(),
		failed:   j.Status.Failed(),
		progress: -1,
	}
	if j.ErrorMessage != nil {
		s.reason = *j.ErrorMessage
	}
	switch j.Status {
	case models.ResearchPending:
		s.progress = 0
	case models.ResearchSearching:
		s.progress = 1.0 / 3
	case models.ResearchAnalyzing:
		s.progress = 2.0 / 3
	case models.ResearchCompleted:
		s.progress = 1
		s.counts = fmt.Sprintf("%d videos", len(j.Videos))
	}
	return s
}

func curationState(j *models.CurationJob) jobState {
	s := jobState{
		status:   string(j.Status),
		terminal: j.Status.IsTerminal(),
		failed:   j.Status.Failed(),
		reason:   j.FailureReason(),
		progress: -1,
	}
	switch j.Status {
	case models.CurationPending:
		s.progress = 0
	case models.CurationGeneratingBrief:
		s.progress = 0.5
	case models.CurationCompleted:
		s.progress = 1
		s.counts = fmt.Sprintf("%d scenes", j.SceneCount())
	}
	return s
}

func productionState(d *models.ProductionJobDetail) jobState {
	s := jobState{
		status:   string(d.Job.Status),
		terminal: d.Job.Status.IsTerminal(),
		failed:   d.Job.Status.Failed(),
		progress: d.Progress(),
		counts:   fmt.Sprintf("%d/%d scenes", d.CompletedScenes(), d.Job.NumScenes),
	}
	if d.Job.ErrorMessage != nil {
		s.reason = *d.Job.ErrorMessage
	}
	return s
}

// watchUpdateMsg carries one poll result.
type watchUpdateMsg struct {
	state jobState
	ok    bool
	next  time.Duration
	err   error
}

type tickMsg time.Time

// poller runs one refresh of the watched job.
type poller func(ctx context.Context) watchUpdateMsg

func pollerFor[T any](c *query.Cache, q query.Query[T], describe func(T) jobState) poller {
	return func(ctx context.Context) watchUpdateMsg {
		r := query.Run(ctx, c, q)
		msg := watchUpdateMsg{ok: r.OK, next: q.Next(r), err: r.Err}
		if r.OK {
			msg.state = describe(r.Data)
		}
		return msg
	}
}

// progressModel is the bubbletea model for job progress.
type progressModel struct {
	poll     poller
	label    string
	state    jobState
	loaded   bool
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	lastErr  error
	err      error
}

func newProgressModel(label string, poll poller) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return progressModel{
		poll:     poll,
		label:    label,
		progress: prog,
		theme:    defaultTheme,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.progress.Init())
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetch()

	case watchUpdateMsg:
		m = m.apply(msg)
		if m.done {
			return m, tea.Quit
		}
		return m, tick(msg.next)

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// apply folds a poll result into the model and decides whether watching
// is over.
func (m progressModel) apply(msg watchUpdateMsg) progressModel {
	m.lastErr = msg.err
	if msg.ok {
		m.state = msg.state
		m.loaded = true
	}

	switch {
	case errors.Is(msg.err, client.ErrNotFound):
		m.done = true
		m.err = fmt.Errorf("%s: %w", m.label, msg.err)
	case m.loaded && m.state.terminal:
		m.done = true
		if m.state.failed {
			m.err = jobFailure(m.state)
		}
	case msg.next <= 0:
		m.done = true
	}
	return m
}

func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if !m.loaded {
		if m.lastErr != nil {
			return m.theme.errorStyle().Render(fmt.Sprintf("Waiting for %s: %s", m.label, m.lastErr)) + "\n"
		}
		return fmt.Sprintf("Loading %s...\n", m.label)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", models.StatusLabel(m.state.status)))
	line := fmt.Sprintf("%s %s", m.label, status)
	if m.state.progress >= 0 {
		line += " " + m.progress.ViewAs(m.state.progress)
	}
	if m.state.counts != "" {
		line += " " + m.state.counts
	}

	hint := m.theme.hintStyle().Render("Press Ctrl+C to stop watching; the job keeps running")
	if m.lastErr != nil {
		hint = m.theme.errorStyle().Render("last refresh failed: "+m.lastErr.Error()) + "\n" + hint
	}
	return line + "\n" + hint + "\n"
}

func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render(fmt.Sprintf("\n%s continues in the background.\n", m.label))
	}
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ %s\n", m.err))
	}
	out := m.theme.completedStyle().Render("✓ " + models.StatusLabel(m.state.status))
	if m.state.counts != "" {
		out += "  " + m.state.counts
	}
	return out + "\n"
}

func (m progressModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), watchTimeout)
		defer cancel()
		return m.poll(ctx)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func jobFailure(s jobState) error {
	if s.reason != "" {
		return fmt.Errorf("job %s: %s", s.status, s.reason)
	}
	return fmt.Errorf("job %s with unknown error", s.status)
}

// watchJob follows q until the job is terminal: a live progress bar in a
// terminal, one line per status change otherwise.
func watchJob[T any](cmd *cobra.Command, label string, q query.Query[T], describe func(T) jobState) error {
	if stdoutIsTerminal() {
		return runProgress(label, pollerFor(cache, q, describe))
	}
	return printProgress(cmd.Context(), cmd.OutOrStdout(), label, q, describe)
}

func runProgress(label string, poll poller) error {
	p := tea.NewProgram(newProgressModel(label, poll))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}
	if m, ok := final.(progressModel); ok && !m.quitting {
		return m.err
	}
	return nil
}

func printProgress[T any](ctx context.Context, out io.Writer, label string, q query.Query[T], describe func(T) jobState) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var last jobState
	seen := false
	err := query.Watch(ctx, cache, q, func(r query.Result[T]) error {
		if errors.Is(r.Err, client.ErrNotFound) {
			return fmt.Errorf("%s: %w", label, r.Err)
		}
		if !r.OK {
			if r.Err != nil {
				fmt.Fprintf(out, "%s: refresh failed: %v\n", label, r.Err)
			}
			return nil
		}
		s := describe(r.Data)
		if !seen || s.status != last.status || s.counts != last.counts {
			line := fmt.Sprintf("%s: %s", label, models.StatusLabel(s.status))
			if s.counts != "" {
				line += " (" + s.counts + ")"
			}
			fmt.Fprintln(out, line)
		}
		last, seen = s, true
		return nil
	})
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(out, "%s continues in the background.\n", label)
		return nil
	}
	if err != nil {
		return err
	}
	if seen && last.failed {
		return jobFailure(last)
	}
	return nil
}
