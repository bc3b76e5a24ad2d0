package ui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the visual styling for the grid view. All styles are built
// from a renderer so tests can run against a non-TTY renderer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Selected    lipgloss.Style
	Header      lipgloss.Style
	Placeholder lipgloss.Style
	Widget      lipgloss.Style
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	Overlay     lipgloss.Style
}

// DefaultTheme returns the standard theme for the given renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#9D79F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#0550AE", Dark: "#58A6FF"},
		Muted:     lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"},
		Highlight: lipgloss.AdaptiveColor{Light: "#953800", Dark: "#F0883E"},
		Error:     lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF7B72"},
	}
	t.Selected = r.NewStyle().Reverse(true)
	t.Header = r.NewStyle().Bold(true).Foreground(t.Secondary).Underline(true)
	t.Placeholder = r.NewStyle().Foreground(t.Muted)
	t.Widget = r.NewStyle().Foreground(t.Highlight)
	t.StatusBar = r.NewStyle().Foreground(t.Muted)
	t.StatusError = r.NewStyle().Foreground(t.Error).Bold(true)
	t.Overlay = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)
	return t
}

// KindIcon returns the glyph shown before a row name in overlays and menus.
func (t Theme) KindIcon(kind string) string {
	switch kind {
	case "parent":
		return "▸"
	case "child":
		return "·"
	default:
		return "•"
	}
}
