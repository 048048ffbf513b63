package convert

import (
	"regexp"
	"strings"
)

// marker is one inline Markdown delimiter pair
type marker struct {
	open  string
	close string
	set   func(Style) bool
}

// markers in canonical outer-to-inner order. Closing happens in reverse.
var markers = []marker{
	{"**", "**", func(s Style) bool { return s.Bold }},
	{"*", "*", func(s Style) bool { return s.Italic }},
	{"~~", "~~", func(s Style) bool { return s.Strikethrough }},
	{"<u>", "</u>", func(s Style) bool { return s.Underline }},
}

// inlinePattern matches one styled span, non-greedy, in priority order:
// bold (** or __), italic (* or _), strikethrough (~~), underline (<u>).
// Each delimiter pair is spelled out since RE2 has no back-references.
var inlinePattern = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__|\*(.+?)\*|_(.+?)_|~~(.+?)~~|<u>(.+?)</u>`)

// submatch group -> style it decodes to
var groupStyles = []Style{
	1: {Bold: true},
	2: {Bold: true},
	3: {Italic: true},
	4: {Italic: true},
	5: {Strikethrough: true},
	6: {Underline: true},
}

// EncodeInlines converts styled inlines to Markdown inline syntax
func EncodeInlines(inlines []Inline) string {
	var sb strings.Builder
	encodeInlines(&sb, inlines, Style{})
	return sb.String()
}

func encodeInlines(sb *strings.Builder, inlines []Inline, parent Style) {
	for _, in := range inlines {
		switch v := in.(type) {
		case Run:
			// Empty runs never carry markers
			if v.Text == "" {
				continue
			}
			writeRun(sb, v.Text, parent.Merge(v.Style))
		case Group:
			encodeInlines(sb, v.Children, parent.Merge(v.Style))
		}
	}
}

func writeRun(sb *strings.Builder, text string, style Style) {
	for _, m := range markers {
		if m.set(style) {
			sb.WriteString(m.open)
		}
	}
	sb.WriteString(text)
	for i := len(markers) - 1; i >= 0; i-- {
		if markers[i].set(style) {
			sb.WriteString(markers[i].close)
		}
	}
}

// DecodeInlines parses one line of Markdown inline syntax into runs.
// Only one style is recognized per matched span; nested markers are
// kept as literal text inside the outermost match. The result always
// holds at least one run.
func DecodeInlines(text string) []Inline {
	var out []Inline
	last := 0

	for _, loc := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]

		// Literal text before the match
		if start > last {
			out = append(out, Run{Text: text[last:start]})
		}

		for g := 1; g < len(groupStyles); g++ {
			if loc[2*g] >= 0 {
				out = append(out, Run{Text: text[loc[2*g]:loc[2*g+1]], Style: groupStyles[g]})
				break
			}
		}

		last = end
	}

	if last < len(text) {
		out = append(out, Run{Text: text[last:]})
	}

	if len(out) == 0 {
		out = append(out, Run{})
	}

	return out
}
