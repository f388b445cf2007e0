package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

type curationPage struct {
	deps *Dependencies

	jobs   []models.CurationJob
	list   query.Result[[]models.CurationJob]
	cursor int

	selected  string
	detail    *models.CurationJob
	detailErr error
	showStyle bool
}

func newCurationPage(d *Dependencies) *curationPage {
	return &curationPage{deps: d, showStyle: true}
}

func (p *curationPage) listQuery() query.Query[[]models.CurationJob] {
	return query.CurationJobs(p.deps.Client, p.deps.Intervals)
}

func (p *curationPage) detailQuery() query.Query[*models.CurationJob] {
	return query.CurationJob(p.deps.Client, p.selected, p.deps.Intervals)
}

func (p *curationPage) activate(selectID string) tea.Cmd {
	if r, ok := query.Peek[[]models.CurationJob](p.deps.Cache, query.CurationJobsKey); ok {
		p.applyList(r)
	}
	cmds := []tea.Cmd{watch(p.deps, p.listQuery())}
	if selectID != "" {
		cmds = append(cmds, p.selectJob(selectID))
	} else if p.selected != "" {
		cmds = append(cmds, watch(p.deps, p.detailQuery()))
	}
	return tea.Batch(cmds...)
}

func (p *curationPage) deactivate() {
	p.deps.Tracker.Disarm(query.CurationJobsKey)
	if p.selected != "" {
		p.deps.Tracker.Disarm(query.CurationJobKey(p.selected))
	}
}

func (p *curationPage) capturing() bool { return false }

func (p *curationPage) key(msg tea.KeyPressMsg) tea.Cmd {
	return p.handleKey(msg.String())
}

func (p *curationPage) handleKey(k string) tea.Cmd {
	switch k {
	case "j", "down":
		if p.cursor < len(p.jobs)-1 {
			p.cursor++
		}
	case "k", "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "enter":
		if p.cursor < len(p.jobs) {
			return p.selectJob(p.jobs[p.cursor].ID)
		}
	case "esc":
		p.deselect()
	case "s":
		p.showStyle = !p.showStyle
	case "r":
		return watch(p.deps, p.listQuery())
	}
	return nil
}

func (p *curationPage) selectJob(id string) tea.Cmd {
	if p.selected != "" && p.selected != id {
		p.deps.Tracker.Disarm(query.CurationJobKey(p.selected))
	}
	p.selected = id
	p.detail, p.detailErr = nil, nil
	if r, ok := query.Peek[*models.CurationJob](p.deps.Cache, query.CurationJobKey(id)); ok && r.OK {
		p.detail = r.Data
	}
	for i, j := range p.jobs {
		if j.ID == id {
			p.cursor = i
		}
	}
	return watch(p.deps, p.detailQuery())
}

func (p *curationPage) deselect() {
	if p.selected == "" {
		return
	}
	p.deps.Tracker.Disarm(query.CurationJobKey(p.selected))
	p.selected = ""
	p.detail, p.detailErr = nil, nil
}

// current returns the selected job, preferring the detail fetch over the
// list entry.
func (p *curationPage) current() *models.CurationJob {
	if p.selected == "" {
		return nil
	}
	if p.detail != nil && p.detail.ID == p.selected {
		return p.detail
	}
	for i := range p.jobs {
		if p.jobs[i].ID == p.selected {
			return &p.jobs[i]
		}
	}
	return nil
}

func (p *curationPage) applyList(r query.Result[[]models.CurationJob]) {
	p.list = r
	if r.OK {
		p.jobs = r.Data
	}
	if p.cursor >= len(p.jobs) {
		p.cursor = max(len(p.jobs)-1, 0)
	}
}

func (p *curationPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fetchedMsg:
		if r, ok, cmd := receive(p.deps, p.listQuery(), msg); ok {
			p.applyList(r)
			return cmd
		}
		if p.selected == "" {
			return nil
		}
		if r, ok, cmd := receive(p.deps, p.detailQuery(), msg); ok {
			p.detailErr = r.Err
			if r.OK {
				p.detail = r.Data
			}
			return cmd
		}

	case pollMsg:
		if cmd := repoll(p.deps, p.listQuery(), msg); cmd != nil {
			return cmd
		}
		if p.selected != "" {
			return repoll(p.deps, p.detailQuery(), msg)
		}
	}
	return nil
}

func (p *curationPage) view(width int) string {
	t := defaultTheme
	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Curation"))
	b.WriteString("\n\n")

	listWidth := 40
	detailWidth := width - listWidth - 4
	if detailWidth < 40 {
		detailWidth = 40
	}
	left := lipgloss.NewStyle().Width(listWidth).Render(p.listView())
	right := lipgloss.NewStyle().Width(detailWidth).Render(p.detailView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))

	b.WriteString("\n\n")
	b.WriteString(t.hintStyle().Render("j/k: move  enter: open  s: style & direction  r: refresh"))
	return b.String()
}

func (p *curationPage) listView() string {
	t := defaultTheme
	var b strings.Builder
	if p.list.Err != nil {
		b.WriteString(refreshLabel(p.list.Err, p.list.UpdatedAt) + "\n")
	}
	if len(p.jobs) == 0 {
		if p.list.OK {
			b.WriteString(t.hintStyle().Render("No curation jobs yet. Start one from a completed research job."))
		} else {
			b.WriteString(t.hintStyle().Render("Loading curation jobs..."))
		}
		return b.String()
	}

	for i, j := range p.jobs {
		marker := "  "
		if i == p.cursor {
			marker = "> "
		}
		label := models.JobLabel(j.ID)
		if j.ID == p.selected {
			label = t.selectedStyle().Render(label)
		}
		title := j.Title()
		if title == "" {
			title = "Initializing Brief..."
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, label, t.curationBadge(j.Status))
		fmt.Fprintf(&b, "    %s\n", title)
		fmt.Fprintf(&b, "    %s\n", t.hintStyle().Render(fmt.Sprintf("%d scenes", j.SceneCount())))
	}
	return b.String()
}

func (p *curationPage) detailView() string {
	t := defaultTheme
	job := p.current()
	if job == nil {
		if p.selected != "" {
			if p.detailErr != nil {
				return refreshError(p.detailErr)
			}
			return t.hintStyle().Render("Loading curation job...")
		}
		return t.hintStyle().Render("Select a curation job to review its creative brief.")
	}

	var b strings.Builder
	if p.detailErr != nil {
		b.WriteString(refreshError(p.detailErr) + "\n")
	}

	switch {
	case job.Status == models.CurationCompleted && job.CreativeBrief != nil:
		b.WriteString(p.briefView(job.CreativeBrief))
	case job.Status.Failed():
		b.WriteString(t.errorStyle().Render("Generation Failed"))
		b.WriteString("\n")
		reason := job.FailureReason()
		if reason == "" {
			reason = "Unknown error occurred."
		}
		b.WriteString(reason)
	default:
		b.WriteString(t.statusStyle().Render("Generating Creative Brief"))
		b.WriteString("\n")
		b.WriteString(t.hintStyle().Render("Analyzing the research and drafting a storyboard..."))
	}
	return b.String()
}

func (p *curationPage) briefView(brief *models.CreativeBrief) string {
	t := defaultTheme
	var b strings.Builder

	b.WriteString(t.titleStyle().Render(brief.Title))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Hook:      %s\n", brief.Hook)
	fmt.Fprintf(&b, "Narrative: %s\n", brief.NarrativeGoal)

	b.WriteString("\n")
	if p.showStyle {
		b.WriteString(t.titleStyle().Render("Style & Direction"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Music mood: %s\n", brief.MusicMood)
		if len(brief.ColorPalette) > 0 {
			swatches := make([]string, len(brief.ColorPalette))
			for i, c := range brief.ColorPalette {
				swatches[i] = t.swatch(c)
			}
			fmt.Fprintf(&b, "Palette:    %s\n", strings.Join(swatches, "  "))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(t.hintStyle().Render("s: show style & direction"))
		b.WriteString("\n\n")
	}

	scenes := brief.Scenes()
	b.WriteString(t.titleStyle().Render(fmt.Sprintf("Storyboard (%d scenes)", len(scenes))))
	b.WriteString("\n")
	for _, s := range scenes {
		b.WriteString(storyboardScene(s))
	}
	return b.String()
}

// storyboardScene renders one scene with its fields verbatim.
func storyboardScene(s models.StoryboardScene) string {
	t := defaultTheme
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s  %s  %s\n",
		t.selectedStyle().Render(fmt.Sprintf("Scene %d", s.SceneIndex)),
		t.statusStyle().Render(formatSeconds(s.Duration)),
		t.hintStyle().Render(s.Pacing))
	fmt.Fprintf(&b, "  Narration: %s\n", s.Narration)
	fmt.Fprintf(&b, "  Visual:    %s\n", s.VisualPrompt)
	return b.String()
}

// formatSeconds renders a duration in seconds as "5s" or "2.5s".
func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64) + "s"
}
