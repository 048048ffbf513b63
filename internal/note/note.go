package note

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/WhalePrompt/stiky-note-md/internal/convert"
)

const (
	// DefaultTitleColor is the title bar color of a fresh note
	DefaultTitleColor = "#B3E5FC"
	// DefaultBodyColor is the body background color of a fresh note
	DefaultBodyColor = "#E1F5FE"
)

// Theme is the two-color scheme of a note
type Theme struct {
	Title string `json:"title" yaml:"title" validate:"hexcolor"`
	Body  string `json:"body" yaml:"body" validate:"hexcolor"`
}

// DefaultTheme returns the theme used when none is stored
func DefaultTheme() Theme {
	return Theme{Title: DefaultTitleColor, Body: DefaultBodyColor}
}

// Palette is the fixed set of themes offered by the color picker
var Palette = []Theme{
	{Title: "#FFF59D", Body: "#FFFDE7"}, // yellow
	{Title: "#C8E6C9", Body: "#E8F5E9"}, // green
	{Title: "#F8BBD0", Body: "#FCE4EC"}, // pink
	{Title: "#E1BEE7", Body: "#F3E5F5"}, // purple
	{Title: "#B3E5FC", Body: "#E1F5FE"}, // blue
	{Title: "#E0E0E0", Body: "#F5F5F5"}, // light gray
	{Title: "#9E9E9E", Body: "#BDBDBD"}, // gray
}

// NextInPalette returns the palette entry after t, wrapping around.
// Themes outside the palette advance to the first entry.
func NextInPalette(t Theme) Theme {
	for i, p := range Palette {
		if strings.EqualFold(p.Title, t.Title) && strings.EqualFold(p.Body, t.Body) {
			return Palette[(i+1)%len(Palette)]
		}
	}
	return Palette[0]
}

// Geometry is the position and size of a note window
type Geometry struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// DefaultGeometry returns the geometry used when none is stored
func DefaultGeometry() Geometry {
	return Geometry{Width: 300, Height: 300}
}

// State is everything a single note window owns
type State struct {
	ID       string
	Document convert.Document
	Theme    Theme
	Geometry Geometry
}

// New creates a state for a brand new note with a generated identifier
func New(theme Theme) *State {
	return &State{
		ID:       NewID(),
		Document: convert.NewDocument(),
		Theme:    theme,
		Geometry: DefaultGeometry(),
	}
}

// NewID generates a fresh note identifier
func NewID() string {
	return uuid.New().String()
}

// Markdown returns the serialized note content
func (s *State) Markdown() string {
	return convert.SerializeDocument(s.Document)
}

// Title returns the first non-blank line of the note, style stripped
func (s *State) Title() string {
	for _, line := range convert.SplitLines(s.Document.PlainText()) {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

var validate = validator.New()

// ValidColor reports whether s is a hex color such as #B3E5FC
func ValidColor(s string) bool {
	return validate.Var(s, "required,hexcolor") == nil
}

// Validate checks both theme colors
func (t Theme) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid theme %q,%q: %w", t.Title, t.Body, err)
	}
	return nil
}

// FormatTheme encodes a theme as the single line stored in a .color file
func FormatTheme(t Theme) string {
	return t.Title + "," + t.Body
}

// ParseTheme decodes a .color line. Anything other than exactly two
// valid hex colors is an error.
func ParseTheme(line string) (Theme, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 2 {
		return Theme{}, fmt.Errorf("expected 2 color fields, got %d", len(fields))
	}

	t := Theme{
		Title: strings.TrimSpace(fields[0]),
		Body:  strings.TrimSpace(fields[1]),
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// FormatGeometry encodes a geometry as the single line stored in a .position file
func FormatGeometry(g Geometry) string {
	return strings.Join([]string{
		formatFloat(g.X),
		formatFloat(g.Y),
		formatFloat(g.Width),
		formatFloat(g.Height),
	}, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseGeometry decodes a .position line of four comma separated numbers
func ParseGeometry(line string) (Geometry, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 4 {
		return Geometry{}, fmt.Errorf("expected 4 position fields, got %d", len(fields))
	}

	var values [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Geometry{}, fmt.Errorf("invalid position field %d: %w", i, err)
		}
		values[i] = v
	}

	return Geometry{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
}
