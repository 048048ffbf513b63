package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/WhalePrompt/stiky-note-md/internal/note"
)

// Monokai Pro color palette
const (
	// Base colors
	Background = "#2D2A2E"
	Foreground = "#FCFCFA"

	// Accent colors
	Red     = "#FF6188" // Errors, danger
	Orange  = "#FC9867" // Warnings
	Yellow  = "#FFD866" // Highlights
	Green   = "#A9DC76" // Success
	Cyan    = "#78DCE8" // Info
	Magenta = "#FF6188" // Titles, emphasis

	// UI colors
	Comment = "#727072" // Dim text, help
	Border  = "#5B595C" // Borders, separators

	// Text drawn on top of note colors
	InkDark  = "#1A1A1A"
	InkLight = "#FCFCFA"
)

// Common styles
var (
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	WarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	DimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Magenta))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Yellow)).Bold(true)
	HelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	LabelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	ValueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Foreground))

	// Table/list styles
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(Magenta))

	TableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(Border))

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Background)).
			Background(lipgloss.Color(Yellow))
)

// Pane holds the styles of one note pane derived from its theme
type Pane struct {
	Title  lipgloss.Style
	Body   lipgloss.Style
	Border lipgloss.Color
}

// ForTheme derives pane styles from a note theme. The border is a darker
// shade of the title color and focused panes get a bold title. Colors
// go-colorful cannot parse fall back to the default theme.
func ForTheme(t note.Theme, focused bool) Pane {
	title, err := colorful.Hex(t.Title)
	if err != nil {
		title, _ = colorful.Hex(note.DefaultTitleColor)
	}
	body, err := colorful.Hex(t.Body)
	if err != nil {
		body, _ = colorful.Hex(note.DefaultBodyColor)
	}

	border := title.BlendLab(colorful.Color{}, 0.35)
	if focused {
		border = lipglossToColorful(Yellow)
	}

	return Pane{
		Title: lipgloss.NewStyle().
			Bold(focused).
			Padding(0, 1).
			Foreground(lipgloss.Color(Ink(title))).
			Background(lipgloss.Color(title.Hex())),
		Body: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color(Ink(body))).
			Background(lipgloss.Color(body.Hex())),
		Border: lipgloss.Color(border.Hex()),
	}
}

// Ink picks dark or light text for readability on c
func Ink(c colorful.Color) string {
	l, _, _ := c.Lab()
	if l > 0.6 {
		return InkDark
	}
	return InkLight
}

func lipglossToColorful(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// Swatch renders a small block in the theme colors, used in listings
func Swatch(t note.Theme) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(t.Title)).Render(" ") +
		lipgloss.NewStyle().Background(lipgloss.Color(t.Body)).Render(" ")
}
