package ui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
)

// navEntry is one item of the navigation bar.
type navEntry struct {
	path  string
	label string
	key   string
}

var navEntries = []navEntry{
	{path: "/", label: "Overview", key: "1"},
	{path: "/research", label: "Research", key: "2"},
	{path: "/curation", label: "Curation", key: "3"},
	{path: "/production", label: "Production", key: "4"},
	{path: "/settings", label: "Settings", key: "5"},
}

// activeEntry returns the index of the entry matching path: an exact match,
// or for non-root entries a path prefix. It returns -1 when nothing matches.
func activeEntry(path string) int {
	for i, e := range navEntries {
		if path == e.path {
			return i
		}
		if e.path != "/" && strings.HasPrefix(path, e.path+"/") {
			return i
		}
	}
	return -1
}

// navigateMsg asks the shell to switch pages. selectID, when set, is
// preselected on the target page.
type navigateMsg struct {
	path     string
	selectID string
}

func navigate(path, selectID string) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{path: path, selectID: selectID}
	}
}

// logTickMsg redraws the log panel.
type logTickMsg time.Time

func logTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

// page is one dashboard screen.
type page interface {
	// activate is called when the page becomes visible.
	activate(selectID string) tea.Cmd
	// deactivate stops the page's polling.
	deactivate()
	// update receives every non-key message.
	update(msg tea.Msg) tea.Cmd
	// key receives key presses while the page is visible.
	key(msg tea.KeyPressMsg) tea.Cmd
	// capturing reports whether a text input owns the keyboard.
	capturing() bool
	view(width int) string
}

// Model is the dashboard shell: navigation bar, active page and log panel.
type Model struct {
	deps   *Dependencies
	pages  []page
	path   string
	active int
	logs   logPanel
	width  int
	height int
}

// New creates the dashboard shell.
func New(deps Dependencies) *Model {
	deps.withDefaults()
	d := &deps
	return &Model{
		deps: d,
		pages: []page{
			newOverviewPage(d),
			newResearchPage(d),
			newCurationPage(d),
			newProductionPage(d),
			newSettingsPage(d),
		},
		path:  "/",
		logs:  newLogPanel(d),
		width: 100,
	}
}

// Init activates the overview page.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.pages[m.active].activate(""), logTick())
}

// Navigate switches to the page matching path, falling back to the
// overview for unknown paths.
func (m *Model) Navigate(path, selectID string) tea.Cmd {
	idx := activeEntry(path)
	if idx < 0 {
		idx, path = 0, "/"
	}
	if idx != m.active {
		m.pages[m.active].deactivate()
	}
	m.active = idx
	m.path = path
	m.deps.Logger.Debug("navigate", "path", path)
	return m.pages[idx].activate(selectID)
}

// Path returns the current location.
func (m *Model) Path() string {
	return m.path
}

// Update handles messages and returns the updated model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case navigateMsg:
		return m, m.Navigate(msg.path, msg.selectID)

	case logTickMsg:
		return m, logTick()
	}

	// Everything else is broadcast; pages ignore what they do not own.
	var cmds []tea.Cmd
	for _, p := range m.pages {
		if cmd := p.update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	k := msg.String()
	if k == "ctrl+c" {
		return tea.Quit
	}

	current := m.pages[m.active]
	if current.capturing() {
		return current.key(msg)
	}

	if cmd, ok := m.globalKey(k); ok {
		return cmd
	}
	return current.key(msg)
}

// globalKey handles shell shortcuts. ok is false when k is not one.
func (m *Model) globalKey(k string) (tea.Cmd, bool) {
	switch k {
	case "q":
		return tea.Quit, true
	case "L":
		m.logs.toggle()
		return nil, true
	case "tab":
		next := (m.active + 1) % len(navEntries)
		return m.Navigate(navEntries[next].path, ""), true
	case "shift+tab":
		prev := (m.active - 1 + len(navEntries)) % len(navEntries)
		return m.Navigate(navEntries[prev].path, ""), true
	}
	for _, e := range navEntries {
		if k == e.key {
			return m.Navigate(e.path, ""), true
		}
	}
	return nil, false
}

// View renders the dashboard.
func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	t := defaultTheme
	var b strings.Builder

	b.WriteString(t.titleStyle().Render("YM FACTORY"))
	b.WriteString("  ")
	b.WriteString(m.navBar())
	b.WriteString("\n\n")

	b.WriteString(m.pages[m.active].view(m.width))
	b.WriteString("\n\n")

	b.WriteString(m.logs.view(m.width))
	b.WriteString("\n")
	b.WriteString(t.hintStyle().Render("1-5/tab: switch page  L: logs  q: quit"))
	return b.String()
}

func (m *Model) navBar() string {
	t := defaultTheme
	items := make([]string, len(navEntries))
	for i, e := range navEntries {
		label := fmt.Sprintf("%s %s", e.key, e.label)
		if i == activeEntry(m.path) {
			items[i] = t.selectedStyle().Render("[" + label + "]")
		} else {
			items[i] = t.hintStyle().Render(" " + label + " ")
		}
	}
	return strings.Join(items, " ")
}

// Run starts the dashboard and blocks until the user quits.
func Run(deps Dependencies) error {
	m := New(deps)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	m.pages[m.active].deactivate()
	return nil
}
