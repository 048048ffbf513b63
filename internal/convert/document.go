package convert

import "strings"

// Style is the set of inline attributes a run of text can carry
type Style struct {
	Bold          bool `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty" yaml:"italic,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty" yaml:"strikethrough,omitempty"`
	Underline     bool `json:"underline,omitempty" yaml:"underline,omitempty"`
}

// Merge returns the union of both styles
func (s Style) Merge(other Style) Style {
	return Style{
		Bold:          s.Bold || other.Bold,
		Italic:        s.Italic || other.Italic,
		Strikethrough: s.Strikethrough || other.Strikethrough,
		Underline:     s.Underline || other.Underline,
	}
}

// IsPlain reports whether no attribute is set
func (s Style) IsPlain() bool {
	return s == Style{}
}

// Inline is a node of a paragraph: either a Run or a Group
type Inline interface {
	inline()
}

// Run is a contiguous span of text with its own style flags
type Run struct {
	Text  string
	Style Style
}

// Group applies its style to every inline it contains.
// Groups may nest; the effective style of a run is the union of the
// run's flags and the flags of all enclosing groups.
type Group struct {
	Style    Style
	Children []Inline
}

func (Run) inline()   {}
func (Group) inline() {}

// Block is one line of a document: either a Paragraph or a ListItem
type Block interface {
	block()
}

// Paragraph is an ordered sequence of inlines
type Paragraph struct {
	Inlines []Inline
}

// ListItem is a paragraph under a single-level unordered list marker
type ListItem struct {
	Paragraph Paragraph
}

func (Paragraph) block() {}
func (ListItem) block()  {}

// Document is the ordered sequence of lines that makes up a note
type Document struct {
	Blocks []Block
}

// NewDocument returns a document holding one empty paragraph
func NewDocument() Document {
	return Document{Blocks: []Block{emptyParagraph()}}
}

func emptyParagraph() Paragraph {
	return Paragraph{Inlines: []Inline{Run{}}}
}

// NewParagraph builds a paragraph from inlines
func NewParagraph(inlines ...Inline) Paragraph {
	return Paragraph{Inlines: inlines}
}

// NewListItem builds a list item from inlines
func NewListItem(inlines ...Inline) ListItem {
	return ListItem{Paragraph: Paragraph{Inlines: inlines}}
}

// Text is shorthand for an unstyled run
func Text(s string) Run {
	return Run{Text: s}
}

// Styled is shorthand for a run with the given style
func Styled(s string, style Style) Run {
	return Run{Text: s, Style: style}
}

// PlainText returns the paragraph text with all styling stripped
func (p Paragraph) PlainText() string {
	return PlainText(p.Inlines)
}

// PlainText concatenates the text of every run, descending into groups
func PlainText(inlines []Inline) string {
	var sb strings.Builder
	writePlain(&sb, inlines)
	return sb.String()
}

func writePlain(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch v := in.(type) {
		case Run:
			sb.WriteString(v.Text)
		case Group:
			writePlain(sb, v.Children)
		}
	}
}

// Runs flattens the paragraph into leaf runs carrying their effective style
func (p Paragraph) Runs() []Run {
	var out []Run
	flatten(&out, p.Inlines, Style{})
	return out
}

func flatten(out *[]Run, inlines []Inline, parent Style) {
	for _, in := range inlines {
		switch v := in.(type) {
		case Run:
			*out = append(*out, Run{Text: v.Text, Style: parent.Merge(v.Style)})
		case Group:
			flatten(out, v.Children, parent.Merge(v.Style))
		}
	}
}

// PlainText returns the style-stripped text of every line joined by LineTerminator
func (d Document) PlainText() string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		switch v := b.(type) {
		case Paragraph:
			lines = append(lines, v.PlainText())
		case ListItem:
			lines = append(lines, v.Paragraph.PlainText())
		}
	}
	return strings.Join(lines, LineTerminator)
}

// IsBlank reports whether the document has no visible text
func (d Document) IsBlank() bool {
	return strings.TrimSpace(d.PlainText()) == ""
}
