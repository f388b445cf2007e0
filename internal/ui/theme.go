package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/ymfactory/internal/models"
)

// Theme holds the color scheme for the dashboard.
type Theme struct {
	Accent     lipgloss.Color
	Status     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	Border     lipgloss.Color
	ProgressBg lipgloss.Color
}

var defaultTheme = Theme{
	Accent:     lipgloss.Color("#D7005F"), // magenta
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Warning:    lipgloss.Color("#FFAF00"), // amber
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	Border:     lipgloss.Color("#3A3A3A"), // dark gray
	ProgressBg: lipgloss.Color("#3A3A3A"),
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
}

func (t Theme) tabStyle(active bool) lipgloss.Style {
	if active {
		return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)
	}
	return lipgloss.NewStyle().Foreground(t.Hint)
}

// badge renders a status with a color for its phase.
func (t Theme) badge(status string, terminal, failed bool) string {
	label := fmt.Sprintf("[%s]", models.StatusLabel(status))
	switch {
	case failed:
		return t.errorStyle().Render(label)
	case terminal:
		return t.completedStyle().Render(label)
	case status == "":
		return t.hintStyle().Render(label)
	default:
		return t.statusStyle().Render(label)
	}
}

func (t Theme) researchBadge(s models.ResearchStatus) string {
	return t.badge(string(s), s.IsTerminal(), s.Failed())
}

func (t Theme) curationBadge(s models.CurationStatus) string {
	return t.badge(string(s), s.IsTerminal(), s.Failed())
}

func (t Theme) productionBadge(s models.ProductionStatus) string {
	return t.badge(string(s), s.IsTerminal(), s.Failed())
}

func (t Theme) assetBadge(s models.AssetStatus) string {
	return t.badge(string(s), s.IsTerminal(), s == models.AssetFailed)
}

// swatch renders a palette color as a colored block followed by its value.
// Values lipgloss cannot parse simply render uncolored.
func (t Theme) swatch(color string) string {
	block := lipgloss.NewStyle().Foreground(lipgloss.Color(strings.TrimSpace(color))).Render("██")
	return block + " " + color
}
