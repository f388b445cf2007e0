package ui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/ymfactory/internal/settings"
)

// savedNoticeDuration is how long the save confirmation stays visible.
const savedNoticeDuration = 3 * time.Second

const savedNotice = "Settings saved securely"

type settingsSavedMsg struct {
	seq int
	err error
}

type settingsNoticeExpiredMsg struct {
	seq int
}

type settingsField struct {
	label  string
	secret bool
}

var settingsFields = []settingsField{
	{label: "Database URL", secret: true},
	{label: "CometAPI Key", secret: true},
	{label: "Anthropic API Key", secret: true},
	{label: "YouTube Client ID"},
	{label: "YouTube Client Secret", secret: true},
}

type settingsPage struct {
	deps   *Dependencies
	inputs []textinput.Model
	focus  int
	saving bool
	seq    int
	notice string
	err    error
}

func newSettingsPage(d *Dependencies) *settingsPage {
	inputs := make([]textinput.Model, len(settingsFields))
	for i, f := range settingsFields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.label
		if f.secret {
			in.EchoMode = textinput.EchoPassword
		}
		inputs[i] = in
	}
	return &settingsPage{deps: d, inputs: inputs}
}

// activate leaves the fields blurred so the shell keys keep working;
// enter or i starts editing.
func (p *settingsPage) activate(string) tea.Cmd {
	return nil
}

func (p *settingsPage) deactivate() {
	for i := range p.inputs {
		p.inputs[i].Blur()
	}
}

func (p *settingsPage) capturing() bool {
	for _, in := range p.inputs {
		if in.Focused() {
			return true
		}
	}
	return false
}

func (p *settingsPage) focusField(i int) tea.Cmd {
	for k := range p.inputs {
		p.inputs[k].Blur()
	}
	p.focus = i
	return p.inputs[i].Focus()
}

func (p *settingsPage) key(msg tea.KeyPressMsg) tea.Cmd {
	k := msg.String()
	if !p.capturing() {
		return p.handleKey(k)
	}
	switch k {
	case "ctrl+s", "enter", "esc", "up", "down", "tab", "shift+tab":
		return p.handleKey(k)
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return cmd
}

func (p *settingsPage) handleKey(k string) tea.Cmd {
	if !p.capturing() {
		switch k {
		case "enter", "i", "/":
			return p.focusField(p.focus)
		case "ctrl+s":
			return p.save()
		}
		return nil
	}

	switch k {
	case "ctrl+s":
		return p.save()
	case "esc":
		p.inputs[p.focus].Blur()
	case "enter":
		if p.focus == len(p.inputs)-1 {
			return p.save()
		}
		return p.focusField(p.focus + 1)
	case "down", "tab":
		return p.focusField((p.focus + 1) % len(p.inputs))
	case "up", "shift+tab":
		return p.focusField((p.focus - 1 + len(p.inputs)) % len(p.inputs))
	}
	return nil
}

func (p *settingsPage) credentials() settings.Credentials {
	v := func(i int) string { return strings.TrimSpace(p.inputs[i].Value()) }
	return settings.Credentials{
		DatabaseURL:         v(0),
		CometAPIKey:         v(1),
		AnthropicAPIKey:     v(2),
		YouTubeClientID:     v(3),
		YouTubeClientSecret: v(4),
	}
}

func (p *settingsPage) save() tea.Cmd {
	if p.saving {
		return nil
	}
	p.saving = true
	p.seq++
	seq := p.seq
	creds := p.credentials()
	store := p.deps.Credentials
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return settingsSavedMsg{seq: seq, err: store.Save(ctx, creds)}
	}
}

func (p *settingsPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.seq != p.seq {
			return nil
		}
		p.saving = false
		p.err = msg.err
		if msg.err != nil {
			p.notice = ""
			p.deps.Logger.Error("failed to save settings", "error", msg.err)
			return nil
		}
		p.notice = savedNotice
		seq := msg.seq
		return tea.Tick(savedNoticeDuration, func(time.Time) tea.Msg {
			return settingsNoticeExpiredMsg{seq: seq}
		})

	case settingsNoticeExpiredMsg:
		if msg.seq == p.seq {
			p.notice = ""
		}
	}
	return nil
}

func (p *settingsPage) view(int) string {
	t := defaultTheme
	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Settings"))
	b.WriteString("\n")
	b.WriteString(t.hintStyle().Render("API credentials used by the production pipeline."))
	b.WriteString("\n\n")

	for i, f := range settingsFields {
		label := fmt.Sprintf("%-22s", f.label)
		if i == p.focus && p.capturing() {
			label = t.selectedStyle().Render(label)
		}
		fmt.Fprintf(&b, "%s %s\n", label, p.inputs[i].View())
	}
	b.WriteString("\n")

	switch {
	case p.saving:
		b.WriteString(t.hintStyle().Render("Saving..."))
	case p.err != nil:
		b.WriteString(t.errorStyle().Render("Save failed: ") + p.err.Error())
	case p.notice != "":
		b.WriteString(t.completedStyle().Render("✓ " + p.notice))
	}
	b.WriteString("\n")
	b.WriteString(t.hintStyle().Render("i: edit  enter: next field / save on last  ctrl+s: save  esc: leave fields"))
	return b.String()
}
