package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

type productionPage struct {
	deps     *Dependencies
	progress progress.Model

	jobs   []models.ProductionJob
	list   query.Result[[]models.ProductionJob]
	cursor int

	selected  string
	detail    *models.ProductionJobDetail
	detailErr error
}

func newProductionPage(d *Dependencies) *productionPage {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return &productionPage{deps: d, progress: prog}
}

func (p *productionPage) listQuery() query.Query[[]models.ProductionJob] {
	return query.ProductionJobs(p.deps.Client, p.deps.Intervals)
}

func (p *productionPage) detailQuery() query.Query[*models.ProductionJobDetail] {
	return query.ProductionJob(p.deps.Client, p.selected, p.deps.Intervals)
}

func (p *productionPage) activate(selectID string) tea.Cmd {
	if r, ok := query.Peek[[]models.ProductionJob](p.deps.Cache, query.ProductionJobsKey); ok {
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

func (p *productionPage) deactivate() {
	p.deps.Tracker.Disarm(query.ProductionJobsKey)
	if p.selected != "" {
		p.deps.Tracker.Disarm(query.ProductionJobKey(p.selected))
	}
}

func (p *productionPage) capturing() bool { return false }

func (p *productionPage) key(msg tea.KeyPressMsg) tea.Cmd {
	return p.handleKey(msg.String())
}

func (p *productionPage) handleKey(k string) tea.Cmd {
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
	case "r":
		return watch(p.deps, p.listQuery())
	}
	return nil
}

func (p *productionPage) selectJob(id string) tea.Cmd {
	if p.selected != "" && p.selected != id {
		p.deps.Tracker.Disarm(query.ProductionJobKey(p.selected))
	}
	p.selected = id
	p.detail, p.detailErr = nil, nil
	if r, ok := query.Peek[*models.ProductionJobDetail](p.deps.Cache, query.ProductionJobKey(id)); ok && r.OK {
		p.detail = r.Data
	}
	for i, j := range p.jobs {
		if j.ID == id {
			p.cursor = i
		}
	}
	return watch(p.deps, p.detailQuery())
}

func (p *productionPage) deselect() {
	if p.selected == "" {
		return
	}
	p.deps.Tracker.Disarm(query.ProductionJobKey(p.selected))
	p.selected = ""
	p.detail, p.detailErr = nil, nil
}

func (p *productionPage) applyList(r query.Result[[]models.ProductionJob]) {
	p.list = r
	if r.OK {
		p.jobs = r.Data
	}
	if p.cursor >= len(p.jobs) {
		p.cursor = max(len(p.jobs)-1, 0)
	}
}

func (p *productionPage) update(msg tea.Msg) tea.Cmd {
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

func (p *productionPage) view(width int) string {
	t := defaultTheme
	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Production"))
	b.WriteString("\n\n")

	listWidth := 36
	detailWidth := width - listWidth - 4
	if detailWidth < 40 {
		detailWidth = 40
	}
	left := lipgloss.NewStyle().Width(listWidth).Render(p.listView())
	right := lipgloss.NewStyle().Width(detailWidth).Render(p.detailView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))

	b.WriteString("\n\n")
	b.WriteString(t.hintStyle().Render("j/k: move  enter: open  esc: close  r: refresh"))
	return b.String()
}

func (p *productionPage) listView() string {
	t := defaultTheme
	var b strings.Builder
	if p.list.Err != nil {
		b.WriteString(refreshLabel(p.list.Err, p.list.UpdatedAt) + "\n")
	}
	if len(p.jobs) == 0 {
		if p.list.OK {
			b.WriteString(t.hintStyle().Render("No production jobs yet."))
		} else {
			b.WriteString(t.hintStyle().Render("Loading production jobs..."))
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
		fmt.Fprintf(&b, "%s%s %s\n", marker, label, t.productionBadge(j.Status))
		fmt.Fprintf(&b, "    %s\n", t.hintStyle().Render(fmt.Sprintf("%d scenes, %d tracks", j.NumScenes, j.NumTracks)))
	}
	return b.String()
}

func (p *productionPage) detailView() string {
	t := defaultTheme
	if p.selected == "" {
		return t.titleStyle().Render("No Active Production Jobs") + "\n" +
			t.hintStyle().Render("Select a production job to follow its assets.")
	}
	if p.detail == nil {
		if p.detailErr != nil {
			return refreshError(p.detailErr)
		}
		return t.hintStyle().Render("Loading production job...")
	}

	d := p.detail
	var b strings.Builder
	if p.detailErr != nil {
		b.WriteString(refreshError(p.detailErr) + "\n")
	}

	fmt.Fprintf(&b, "%s %s  %s\n",
		t.titleStyle().Render(models.JobLabel(d.Job.ID)),
		t.productionBadge(d.Job.Status),
		t.hintStyle().Render(fmt.Sprintf("%d scenes", d.Job.NumScenes)))
	if d.Job.ErrorMessage != nil && *d.Job.ErrorMessage != "" {
		b.WriteString(t.errorStyle().Render("Error: ") + *d.Job.ErrorMessage + "\n")
	}
	fmt.Fprintf(&b, "%s %d/%d scenes\n\n", p.progress.ViewAs(d.Progress()), d.CompletedScenes(), d.Job.NumScenes)

	b.WriteString(t.titleStyle().Render("Soundtrack"))
	b.WriteString("\n")
	if len(d.Tracks) == 0 {
		b.WriteString(t.hintStyle().Render("No tracks yet.") + "\n")
	}
	for _, tr := range d.Tracks {
		b.WriteString(trackLine(tr))
	}

	b.WriteString("\n")
	b.WriteString(t.titleStyle().Render("Visual Assets"))
	b.WriteString("\n")
	if len(d.Scenes) == 0 {
		b.WriteString(t.hintStyle().Render("No scenes yet.") + "\n")
	}
	for _, s := range d.Scenes {
		b.WriteString(sceneLine(s))
	}
	return b.String()
}

func trackLine(tr models.Track) string {
	t := defaultTheme
	var b strings.Builder
	name := fmt.Sprintf("Track %d", tr.TrackNumber)
	if tr.Title != nil && *tr.Title != "" {
		name += ": " + *tr.Title
	}
	fmt.Fprintf(&b, "  %s %s\n", t.assetBadge(tr.SunoStatus), name)
	fmt.Fprintf(&b, "    %s\n", t.hintStyle().Render(tr.SongPrompt))

	switch {
	case tr.AudioURL != nil && *tr.AudioURL != "":
		fmt.Fprintf(&b, "    %s\n", *tr.AudioURL)
	case tr.SunoStatus.InProgress():
		fmt.Fprintf(&b, "    %s\n", t.statusStyle().Render("Generating audio..."))
	case tr.SunoStatus == models.AssetFailed:
		fmt.Fprintf(&b, "    %s\n", t.errorStyle().Render(assetError(tr.ErrorMessage)))
	default:
		fmt.Fprintf(&b, "    %s\n", t.hintStyle().Render("Waiting for generation"))
	}
	return b.String()
}

func sceneLine(s models.Scene) string {
	t := defaultTheme
	var b strings.Builder
	fmt.Fprintf(&b, "  %s Scene %d: %s\n", t.assetBadge(s.Status), s.SceneNumber, s.Description)

	switch {
	case s.ImageURL != nil && *s.ImageURL != "":
		fmt.Fprintf(&b, "    %s\n", *s.ImageURL)
	case s.Status == models.AssetFailed:
		fmt.Fprintf(&b, "    %s\n", t.errorStyle().Render(assetError(s.ErrorMessage)))
	default:
		fmt.Fprintf(&b, "    %s\n", t.statusStyle().Render("Generating Visuals..."))
	}
	return b.String()
}

func assetError(msg *string) string {
	if msg != nil && *msg != "" {
		return *msg
	}
	return "Generation Failed"
}
