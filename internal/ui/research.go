package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

type researchTab int

const (
	tabSummary researchTab = iota
	tabSources
	tabRanking
	researchTabCount
)

func (t researchTab) String() string {
	switch t {
	case tabSources:
		return "Sources"
	case tabRanking:
		return "Ranking"
	default:
		return "Summary"
	}
}

type researchStartedMsg struct {
	job *models.ResearchJob
	err error
}

type researchDeletedMsg struct {
	id  string
	err error
}

type curationStartedMsg struct {
	job *models.CurationJob
	err error
}

type researchPage struct {
	deps  *Dependencies
	input textinput.Model

	jobs      []models.ResearchJob
	listErr   error
	listAt    query.Result[[]models.ResearchJob]
	cursor    int
	submitted bool

	selected      string
	detail        *models.ResearchJobDetail
	detailErr     error
	inDetail      bool
	tab           researchTab
	showReasoning bool
	videoCursor   int
	picked        map[string]bool

	confirmDelete string
	notice        string
}

func newResearchPage(d *Dependencies) *researchPage {
	in := textinput.New()
	in.Placeholder = "Topic to research, e.g. the history of Rome"
	in.Prompt = "Topic: "
	in.CharLimit = 200
	return &researchPage{deps: d, input: in, picked: make(map[string]bool)}
}

func (p *researchPage) listQuery() query.Query[[]models.ResearchJob] {
	return query.ResearchJobs(p.deps.Client, p.deps.Intervals)
}

func (p *researchPage) detailQuery() query.Query[*models.ResearchJobDetail] {
	return query.ResearchJob(p.deps.Client, p.selected, p.deps.Intervals)
}

func (p *researchPage) activate(selectID string) tea.Cmd {
	if r, ok := query.Peek[[]models.ResearchJob](p.deps.Cache, query.ResearchJobsKey); ok {
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

func (p *researchPage) deactivate() {
	p.input.Blur()
	p.confirmDelete = ""
	p.deps.Tracker.Disarm(query.ResearchJobsKey)
	if p.selected != "" {
		p.deps.Tracker.Disarm(query.ResearchJobKey(p.selected))
	}
}

func (p *researchPage) capturing() bool {
	return p.input.Focused() || p.confirmDelete != ""
}

func (p *researchPage) key(msg tea.KeyPressMsg) tea.Cmd {
	k := msg.String()
	if p.input.Focused() {
		switch k {
		case "enter":
			return p.submit()
		case "esc":
			p.input.Blur()
			return nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}
	return p.handleKey(k)
}

func (p *researchPage) handleKey(k string) tea.Cmd {
	if p.confirmDelete != "" {
		id := p.confirmDelete
		p.confirmDelete = ""
		if k == "y" || k == "Y" {
			return p.deleteJob(id)
		}
		p.notice = "Delete cancelled."
		return nil
	}

	switch k {
	case "/", "n":
		p.notice = ""
		return p.input.Focus()
	case "r":
		return watch(p.deps, p.listQuery())
	case "[":
		p.tab = (p.tab + researchTabCount - 1) % researchTabCount
		p.videoCursor = 0
	case "]":
		p.tab = (p.tab + 1) % researchTabCount
		p.videoCursor = 0
	case "e":
		p.showReasoning = !p.showReasoning
	case "d":
		if id := p.focusedJobID(); id != "" {
			p.confirmDelete = id
		}
	case "c":
		return p.startCuration()
	case "esc":
		if p.inDetail {
			p.inDetail = false
		} else if p.selected != "" {
			p.deselect()
		}
	case "enter":
		if p.cursor < len(p.jobs) {
			p.inDetail = true
			return p.selectJob(p.jobs[p.cursor].ID)
		}
	case "space", " ":
		p.toggleVideo()
	case "j", "down":
		if p.inDetail {
			if p.videoCursor < len(p.tabVideos())-1 {
				p.videoCursor++
			}
		} else if p.cursor < len(p.jobs)-1 {
			p.cursor++
		}
	case "k", "up":
		if p.inDetail {
			if p.videoCursor > 0 {
				p.videoCursor--
			}
		} else if p.cursor > 0 {
			p.cursor--
		}
	}
	return nil
}

// focusedJobID is the job d acts on: the selection, or the list cursor.
func (p *researchPage) focusedJobID() string {
	if p.selected != "" {
		return p.selected
	}
	if p.cursor < len(p.jobs) {
		return p.jobs[p.cursor].ID
	}
	return ""
}

// selectJob switches the detail query to id. The previous job's chain
// stops, so a late response for it is dropped.
func (p *researchPage) selectJob(id string) tea.Cmd {
	if p.selected != "" && p.selected != id {
		p.deps.Tracker.Disarm(query.ResearchJobKey(p.selected))
	}
	if p.selected != id {
		p.picked = make(map[string]bool)
		p.videoCursor = 0
	}
	p.selected = id
	p.detail, p.detailErr = nil, nil
	if r, ok := query.Peek[*models.ResearchJobDetail](p.deps.Cache, query.ResearchJobKey(id)); ok && r.OK {
		p.detail = r.Data
	}
	for i, j := range p.jobs {
		if j.ID == id {
			p.cursor = i
		}
	}
	return watch(p.deps, p.detailQuery())
}

func (p *researchPage) deselect() {
	if p.selected == "" {
		return
	}
	p.deps.Tracker.Disarm(query.ResearchJobKey(p.selected))
	p.selected = ""
	p.detail, p.detailErr = nil, nil
	p.inDetail = false
	p.picked = make(map[string]bool)
}

// submit starts a research job for the input topic. Blank topics send nothing.
func (p *researchPage) submit() tea.Cmd {
	topic := strings.TrimSpace(p.input.Value())
	if topic == "" {
		p.notice = "Enter a topic to start research."
		return nil
	}
	if p.submitted {
		return nil
	}
	p.submitted = true
	p.notice = "Starting research..."

	c := p.deps.Client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		job, err := c.Research().StartJob(ctx, client.StartResearchRequest{Topic: topic})
		return researchStartedMsg{job: job, err: err}
	}
}

func (p *researchPage) deleteJob(id string) tea.Cmd {
	p.notice = "Deleting " + models.JobLabel(id) + "..."
	c := p.deps.Client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return researchDeletedMsg{id: id, err: c.Research().DeleteJob(ctx, id)}
	}
}

// startCuration sends the picked videos of a completed job, or all of
// them when none are picked.
func (p *researchPage) startCuration() tea.Cmd {
	if p.detail == nil || p.detail.ID != p.selected {
		p.notice = "Select a research job first."
		return nil
	}
	if p.detail.Status != models.ResearchCompleted {
		p.notice = "Research must complete before curation."
		return nil
	}

	req := client.StartCurationRequest{ResearchJobID: p.selected}
	for _, v := range p.detail.Videos {
		if p.picked[v.VideoID] {
			req.SelectedVideoIDs = append(req.SelectedVideoIDs, v.VideoID)
		}
	}
	if len(req.SelectedVideoIDs) == 0 {
		for _, v := range p.detail.Videos {
			req.SelectedVideoIDs = append(req.SelectedVideoIDs, v.VideoID)
		}
	}
	p.notice = "Starting curation..."

	c := p.deps.Client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		job, err := c.Curation().StartCuration(ctx, req)
		return curationStartedMsg{job: job, err: err}
	}
}

// tabVideos is the video order shown by the active tab.
func (p *researchPage) tabVideos() []models.ResearchVideo {
	if p.detail == nil {
		return nil
	}
	switch p.tab {
	case tabSources:
		return p.detail.Videos
	case tabRanking:
		return models.RankByRelevance(p.detail.Videos)
	}
	return nil
}

func (p *researchPage) toggleVideo() {
	videos := p.tabVideos()
	if p.videoCursor >= len(videos) {
		return
	}
	id := videos[p.videoCursor].VideoID
	if p.picked[id] {
		delete(p.picked, id)
	} else {
		p.picked[id] = true
	}
}

func (p *researchPage) applyList(r query.Result[[]models.ResearchJob]) {
	p.listErr = r.Err
	p.listAt = r
	if r.OK {
		p.jobs = r.Data
	}
	if p.cursor >= len(p.jobs) {
		p.cursor = max(len(p.jobs)-1, 0)
	}
}

func (p *researchPage) update(msg tea.Msg) tea.Cmd {
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

	case researchStartedMsg:
		p.submitted = false
		if msg.err != nil {
			p.notice = "Failed to start research: " + msg.err.Error()
			return nil
		}
		p.input.Reset()
		p.input.Blur()
		p.notice = "Research started: " + models.JobLabel(msg.job.ID)
		p.deps.Logger.Info("research started", "job_id", msg.job.ID, "topic", msg.job.Topic())
		p.deps.Cache.Invalidate(query.ResearchJobsKey)
		return watch(p.deps, p.listQuery())

	case researchDeletedMsg:
		if msg.err != nil {
			p.notice = "Failed to delete: " + msg.err.Error()
			return nil
		}
		p.notice = "Deleted " + models.JobLabel(msg.id)
		p.deps.Logger.Info("research deleted", "job_id", msg.id)
		if p.selected == msg.id {
			p.deselect()
		}
		p.deps.Cache.Remove(query.ResearchJobKey(msg.id))
		p.deps.Cache.Invalidate(query.ResearchJobsKey)
		return watch(p.deps, p.listQuery())

	case curationStartedMsg:
		if msg.err != nil {
			p.notice = "Failed to start curation: " + msg.err.Error()
			return nil
		}
		p.notice = ""
		p.picked = make(map[string]bool)
		p.deps.Logger.Info("curation started", "job_id", msg.job.ID, "research_job_id", msg.job.ResearchJobID)
		p.deps.Cache.Invalidate(query.CurationJobsKey)
		return navigate("/curation", msg.job.ID)
	}
	return nil
}

func (p *researchPage) view(width int) string {
	t := defaultTheme
	var b strings.Builder

	b.WriteString(t.titleStyle().Render("Research"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n")
	if p.confirmDelete != "" {
		b.WriteString(t.warningStyle().Render(fmt.Sprintf("Delete %s? (y/N)", models.JobLabel(p.confirmDelete))))
		b.WriteString("\n")
	} else if p.notice != "" {
		b.WriteString(t.hintStyle().Render(p.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	listWidth := 44
	detailWidth := width - listWidth - 4
	if detailWidth < 40 {
		detailWidth = 40
	}
	left := lipgloss.NewStyle().Width(listWidth).Render(p.listView())
	right := lipgloss.NewStyle().Width(detailWidth).Render(p.detailView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))

	b.WriteString("\n\n")
	b.WriteString(t.hintStyle().Render("/: new topic  enter: open  [ ]: tabs  space: pick video  e: reasoning  c: curate  d: delete"))
	return b.String()
}

func (p *researchPage) listView() string {
	t := defaultTheme
	var b strings.Builder
	if p.listErr != nil {
		b.WriteString(refreshLabel(p.listErr, p.listAt.UpdatedAt) + "\n")
	}
	if len(p.jobs) == 0 {
		if p.listAt.OK {
			b.WriteString(t.hintStyle().Render("No research jobs yet."))
		} else {
			b.WriteString(t.hintStyle().Render("Loading research jobs..."))
		}
		return b.String()
	}

	for i, j := range p.jobs {
		marker := "  "
		if i == p.cursor && !p.inDetail {
			marker = "> "
		}
		topic := j.Topic()
		if j.ID == p.selected {
			topic = t.selectedStyle().Render(topic)
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, t.researchBadge(j.Status), topic)
		fmt.Fprintf(&b, "    %s\n", t.hintStyle().Render(j.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	return b.String()
}

func (p *researchPage) detailView() string {
	t := defaultTheme
	if p.selected == "" {
		return t.hintStyle().Render("Select a research job to see its findings.")
	}
	if p.detail == nil {
		if p.detailErr != nil {
			return refreshError(p.detailErr)
		}
		return t.hintStyle().Render("Loading research details...")
	}

	var b strings.Builder
	d := p.detail
	fmt.Fprintf(&b, "%s %s\n", t.researchBadge(d.Status), t.titleStyle().Render(d.Topic()))
	if p.detailErr != nil {
		b.WriteString(refreshError(p.detailErr) + "\n")
	}

	tabs := make([]string, researchTabCount)
	for i := researchTab(0); i < researchTabCount; i++ {
		tabs[i] = t.tabStyle(i == p.tab).Render(i.String())
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n\n")

	switch p.tab {
	case tabSummary:
		b.WriteString(p.summaryView())
	case tabSources:
		b.WriteString(p.sourcesView())
	case tabRanking:
		b.WriteString(p.rankingView())
	}
	if len(p.picked) > 0 {
		fmt.Fprintf(&b, "\n%s", t.hintStyle().Render(fmt.Sprintf("%d video(s) picked for curation", len(p.picked))))
	}
	return b.String()
}

func (p *researchPage) summaryView() string {
	t := defaultTheme
	d := p.detail
	var b strings.Builder
	switch {
	case d.Status == models.ResearchCompleted && d.Summary() != "":
		b.WriteString(d.Summary())
	case d.Status == models.ResearchCompleted:
		b.WriteString(t.hintStyle().Render("Research completed without a summary."))
	case d.Status == models.ResearchAnalyzing:
		b.WriteString(t.statusStyle().Render("Synthesizing research summary..."))
	case d.Status.Failed():
		b.WriteString(t.errorStyle().Render("Research failed"))
	default:
		b.WriteString(t.hintStyle().Render("The summary appears once research completes."))
	}
	if d.ErrorMessage != nil && *d.ErrorMessage != "" {
		b.WriteString("\n" + t.errorStyle().Render("Error: ") + *d.ErrorMessage)
	}
	return b.String()
}

func (p *researchPage) videoMarker(i int, id string) string {
	cursor := "  "
	if p.inDetail && i == p.videoCursor {
		cursor = "> "
	}
	box := "[ ]"
	if p.picked[id] {
		box = "[x]"
	}
	return cursor + box
}

func (p *researchPage) sourcesView() string {
	t := defaultTheme
	videos := p.detail.Videos
	if len(videos) == 0 {
		return t.hintStyle().Render("No videos discovered yet.")
	}
	var b strings.Builder
	for i, v := range videos {
		fmt.Fprintf(&b, "%s %s\n", p.videoMarker(i, v.VideoID), v.Title)
		var meta []string
		if v.Channel != nil {
			meta = append(meta, *v.Channel)
		}
		meta = append(meta, v.VideoID)
		if v.PublishedAt != nil {
			meta = append(meta, fmt.Sprintf("%d", v.PublishedAt.Year()))
		}
		if v.ViewCount != nil {
			meta = append(meta, formatViews(*v.ViewCount))
		}
		fmt.Fprintf(&b, "      %s\n", t.hintStyle().Render(strings.Join(meta, " · ")))
		fmt.Fprintf(&b, "      %s\n", v.WatchURL())
	}
	return b.String()
}

func (p *researchPage) rankingView() string {
	t := defaultTheme
	ranked := models.RankByRelevance(p.detail.Videos)
	if len(ranked) == 0 {
		return t.hintStyle().Render("No videos to rank yet.")
	}
	var b strings.Builder
	for i, v := range ranked {
		score := "-"
		if v.RelevanceScore != nil {
			score = fmt.Sprintf("%d/10", *v.RelevanceScore)
		}
		fmt.Fprintf(&b, "%s #%d %s %s\n", p.videoMarker(i, v.VideoID), i+1, t.statusStyle().Render(score), v.Title)
		if p.showReasoning && v.Reasoning != nil && *v.Reasoning != "" {
			fmt.Fprintf(&b, "      %s\n", t.hintStyle().Render(*v.Reasoning))
		}
	}
	if !p.showReasoning {
		b.WriteString(t.hintStyle().Render("e: show reasoning"))
	}
	return b.String()
}

// formatViews renders a view count the short way, e.g. 1.2M views.
// Counts that would round up to 1000.0K are shown in millions.
func formatViews(n int64) string {
	switch {
	case n >= 999_950:
		return fmt.Sprintf("%.1fM views", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK views", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d views", n)
	}
}
