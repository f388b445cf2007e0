package ui

import (
	"bytes"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphaelgruber/ymfactory/internal/prefs"
)

const (
	defaultLogLines = 200
	logPanelHeight  = 6
)

// LineBuffer is an io.Writer that keeps the most recent complete lines
// written to it. It backs the dashboard log panel.
type LineBuffer struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial []byte
}

// NewLineBuffer creates a buffer holding at most max lines.
func NewLineBuffer(max int) *LineBuffer {
	if max <= 0 {
		max = defaultLogLines
	}
	return &LineBuffer{max: max}
}

func (b *LineBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.partial = append(b.partial, p...)
	for {
		i := bytes.IndexByte(b.partial, '\n')
		if i < 0 {
			break
		}
		b.lines = append(b.lines, string(b.partial[:i]))
		b.partial = b.partial[i+1:]
	}
	if over := len(b.lines) - b.max; over > 0 {
		b.lines = append([]string(nil), b.lines[over:]...)
	}
	return len(p), nil
}

// Tail returns up to n of the most recent lines, oldest first.
func (b *LineBuffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > len(b.lines) {
		n = len(b.lines)
	}
	return append([]string(nil), b.lines[len(b.lines)-n:]...)
}

// logPanel shows recent client log lines under the active page.
type logPanel struct {
	deps     *Dependencies
	expanded bool
}

func newLogPanel(deps *Dependencies) logPanel {
	return logPanel{
		deps:     deps,
		expanded: deps.Prefs.Bool(prefs.LogPanelExpanded, false),
	}
}

// toggle flips the panel and persists the choice.
func (p *logPanel) toggle() {
	p.expanded = !p.expanded
	if err := p.deps.Prefs.SetBool(prefs.LogPanelExpanded, p.expanded); err != nil {
		p.deps.Logger.Warn("failed to save log panel preference", "error", err)
	}
}

func (p logPanel) view(width int) string {
	t := defaultTheme
	if !p.expanded {
		return t.hintStyle().Render("L: show logs")
	}

	lines := p.deps.Logs.Tail(logPanelHeight)
	if len(lines) == 0 {
		lines = []string{t.hintStyle().Render("No log output yet.")}
	}
	if width > 4 {
		for i, l := range lines {
			lines[i] = ansi.Truncate(l, width-4, "")
		}
	}

	header := t.hintStyle().Render("Logs (L to hide)")
	return header + "\n" + t.panelStyle().Render(strings.Join(lines, "\n"))
}
