package ui

import "github.com/charmbracelet/lipgloss"

// Theme carries the color palette for the UI.
type Theme struct {
	Name    string
	Accent  string
	Text    string
	Muted   string
	Danger  string
	Good    string
	Surface string
}

var themes = []Theme{
	{
		Name:    "Dracula",
		Accent:  "#bd93f9",
		Text:    "#f8f8f2",
		Muted:   "#6272a4",
		Danger:  "#ff5555",
		Good:    "#50fa7b",
		Surface: "#44475a",
	},
	{
		Name:    "Plain",
		Accent:  "12",
		Text:    "15",
		Muted:   "8",
		Danger:  "9",
		Good:    "10",
		Surface: "0",
	},
}

// ThemeByName resolves a theme, defaulting to the first.
func ThemeByName(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// Styles are the derived lipgloss styles for a theme.
type Styles struct {
	Accent   lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Danger   lipgloss.Style
	Good     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
}

// Styles derives the style set.
func (t Theme) Styles() Styles {
	return Styles{
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Danger:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)),
		Good:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Good)),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Foreground(lipgloss.Color(t.Text)),
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),
	}
}
