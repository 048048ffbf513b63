package convert

import (
	"regexp"
	"strings"
	"unicode"
)

// LineTerminator separates serialized lines
const LineTerminator = "\n"

// ListMarker prefixes every serialized list item
const ListMarker = "- "

// LineKind tells whether a line is emitted literally or with inline styling
type LineKind int

const (
	// StyledLine carries synthesized inline markers
	StyledLine LineKind = iota
	// StructuralLine (headings, lists, quotes, fences, rules) is emitted verbatim
	StructuralLine
)

func (k LineKind) String() string {
	if k == StructuralLine {
		return "structural"
	}
	return "styled"
}

var orderedListPattern = regexp.MustCompile(`^\d+\.\s`)

// structuralPrefixes: heading, bullet list, blockquote, code fence, horizontal rule
var structuralPrefixes = []string{
	"#",
	"- ", "* ", "+ ",
	">",
	"```",
	"---", "***", "___",
}

// ClassifyLine decides whether style-stripped text is a structural Markdown line
func ClassifyLine(plain string) LineKind {
	trimmed := strings.TrimLeftFunc(plain, unicode.IsSpace)

	for _, prefix := range structuralPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return StructuralLine
		}
	}

	if orderedListPattern.MatchString(trimmed) {
		return StructuralLine
	}

	return StyledLine
}

// SerializeDocument converts a document to Markdown text.
// Each block becomes one line; trailing whitespace of the whole result is trimmed.
func SerializeDocument(doc Document) string {
	var sb strings.Builder

	for _, b := range doc.Blocks {
		switch v := b.(type) {
		case Paragraph:
			sb.WriteString(serializeParagraph(v))
		case ListItem:
			sb.WriteString(ListMarker)
			sb.WriteString(serializeParagraph(v.Paragraph))
		default:
			continue
		}
		sb.WriteString(LineTerminator)
	}

	return strings.TrimRightFunc(sb.String(), unicode.IsSpace)
}

// serializeParagraph emits plain text for structural lines so that
// styling never wraps Markdown block syntax (e.g. **# Heading**)
func serializeParagraph(p Paragraph) string {
	plain := p.PlainText()
	if ClassifyLine(plain) == StructuralLine {
		return plain
	}
	return EncodeInlines(p.Inlines)
}

// LoadDocument parses Markdown text into a document of paragraphs,
// one per source line. No block structure is recovered: a line that
// looks like a list item stays a paragraph with the marker as text.
func LoadDocument(markdown string) Document {
	if markdown == "" {
		return NewDocument()
	}

	lines := SplitLines(markdown)
	doc := Document{Blocks: make([]Block, 0, len(lines))}
	for _, line := range lines {
		doc.Blocks = append(doc.Blocks, Paragraph{Inlines: DecodeInlines(line)})
	}

	return doc
}

// SplitLines splits on both "\r\n" and "\n"
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// Normalize runs Markdown through LoadDocument and SerializeDocument
func Normalize(markdown string) string {
	return SerializeDocument(LoadDocument(markdown))
}
