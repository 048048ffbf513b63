package convert

import (
	"reflect"
	"testing"
)

var (
	bold      = Style{Bold: true}
	italic    = Style{Italic: true}
	strike    = Style{Strikethrough: true}
	underline = Style{Underline: true}
)

func TestEncodeInlines(t *testing.T) {
	tests := []struct {
		name     string
		input    []Inline
		expected string
	}{
		{
			name:     "plain text",
			input:    []Inline{Text("just words")},
			expected: "just words",
		},
		{
			name:     "bold word",
			input:    []Inline{Text("Hello "), Styled("world", bold)},
			expected: "Hello **world**",
		},
		{
			name:     "italic",
			input:    []Inline{Styled("lean", italic)},
			expected: "*lean*",
		},
		{
			name:     "strikethrough and underline",
			input:    []Inline{Styled("gone", strike), Text(" "), Styled("kept", underline)},
			expected: "~~gone~~ <u>kept</u>",
		},
		{
			name:     "all styles nest in canonical order",
			input:    []Inline{Styled("x", Style{Bold: true, Italic: true, Strikethrough: true, Underline: true})},
			expected: "***~~<u>x</u>~~***",
		},
		{
			name:     "italic and underline",
			input:    []Inline{Styled("x", Style{Italic: true, Underline: true})},
			expected: "*<u>x</u>*",
		},
		{
			name:     "empty styled run emits nothing",
			input:    []Inline{Text("a"), Styled("", bold), Text("b")},
			expected: "ab",
		},
		{
			name: "group style is inherited",
			input: []Inline{
				Group{Style: bold, Children: []Inline{Text("a"), Styled("b", italic)}},
			},
			expected: "**a*****b***",
		},
		{
			name: "decorations accumulate through nested groups",
			input: []Inline{
				Group{Style: strike, Children: []Inline{
					Group{Style: underline, Children: []Inline{Text("deep")}},
				}},
			},
			expected: "~~<u>deep</u>~~",
		},
		{
			name:     "no runs",
			input:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := EncodeInlines(tt.input)
			if actual != tt.expected {
				t.Errorf("EncodeInlines() = %q, want %q", actual, tt.expected)
			}
		})
	}
}

func TestDecodeInlines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Inline
	}{
		{
			name:     "empty line yields one empty run",
			input:    "",
			expected: []Inline{Run{}},
		},
		{
			name:     "plain text",
			input:    "nothing special here",
			expected: []Inline{Text("nothing special here")},
		},
		{
			name:  "strikethrough and underline",
			input: "This is ~~gone~~ and <u>kept</u>.",
			expected: []Inline{
				Text("This is "),
				Styled("gone", strike),
				Text(" and "),
				Styled("kept", underline),
				Text("."),
			},
		},
		{
			name:     "double asterisk bold",
			input:    "**loud**",
			expected: []Inline{Styled("loud", bold)},
		},
		{
			name:     "double underscore bold",
			input:    "__loud__",
			expected: []Inline{Styled("loud", bold)},
		},
		{
			name:     "single asterisk italic",
			input:    "a *b* c",
			expected: []Inline{Text("a "), Styled("b", italic), Text(" c")},
		},
		{
			name:     "single underscore italic",
			input:    "_b_",
			expected: []Inline{Styled("b", italic)},
		},
		{
			name:     "matching is non-greedy",
			input:    "**a** and **b**",
			expected: []Inline{Styled("a", bold), Text(" and "), Styled("b", bold)},
		},
		{
			name:     "nested markers decode as outermost only",
			input:    "**<u>x</u>**",
			expected: []Inline{Styled("<u>x</u>", bold)},
		},
		{
			name:     "triple asterisks decode as bold with a stray marker",
			input:    "***x***",
			expected: []Inline{Styled("*x", bold), Text("*")},
		},
		{
			name:     "underscores inside a word mark italic",
			input:    "snake_case_name",
			expected: []Inline{Text("snake"), Styled("case", italic), Text("name")},
		},
		{
			name:     "unclosed marker stays literal",
			input:    "2 ** 3",
			expected: []Inline{Text("2 ** 3")},
		},
		{
			name:     "empty delimiters are not a match",
			input:    "~~~~",
			expected: []Inline{Text("~~~~")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := DecodeInlines(tt.input)
			if !reflect.DeepEqual(actual, tt.expected) {
				t.Errorf("DecodeInlines(%q) = %#v, want %#v", tt.input, actual, tt.expected)
			}
		})
	}
}

func TestInlineRoundtripSingleStyles(t *testing.T) {
	cases := [][]Inline{
		{Text("Hello "), Styled("world", bold)},
		{Styled("lean", italic), Text(" then "), Styled("gone", strike)},
		{Text("a "), Styled("b", underline), Text(" c "), Styled("d", bold), Text(" e")},
		{Styled("only", strike)},
	}

	for _, runs := range cases {
		encoded := EncodeInlines(runs)
		decoded := DecodeInlines(encoded)
		if !reflect.DeepEqual(decoded, runs) {
			t.Errorf("roundtrip of %q = %#v, want %#v", encoded, decoded, runs)
		}
	}
}

func TestPlainTextIsIdentity(t *testing.T) {
	inputs := []string{
		"",
		"shopping list",
		"call mom at 5pm (maybe 6)",
		"émoji ✓ and unicode",
	}

	for _, in := range inputs {
		if got := EncodeInlines([]Inline{Text(in)}); got != in {
			t.Errorf("EncodeInlines(%q) = %q", in, got)
		}
		if got := PlainText(DecodeInlines(in)); got != in {
			t.Errorf("PlainText(DecodeInlines(%q)) = %q", in, got)
		}
	}
}

func TestMultiStyleRunIsLossy(t *testing.T) {
	runs := []Inline{Styled("x", Style{Bold: true, Underline: true})}

	encoded := EncodeInlines(runs)
	if encoded != "**<u>x</u>**" {
		t.Fatalf("EncodeInlines() = %q", encoded)
	}

	decoded := DecodeInlines(encoded)
	expected := []Inline{Styled("<u>x</u>", bold)}
	if !reflect.DeepEqual(decoded, expected) {
		t.Errorf("DecodeInlines(%q) = %#v, want %#v", encoded, decoded, expected)
	}
}

func TestParagraphRuns(t *testing.T) {
	p := NewParagraph(
		Text("a"),
		Group{Style: bold, Children: []Inline{
			Styled("b", italic),
			Group{Style: strike, Children: []Inline{Text("c")}},
		}},
	)

	expected := []Run{
		{Text: "a"},
		{Text: "b", Style: Style{Bold: true, Italic: true}},
		{Text: "c", Style: Style{Bold: true, Strikethrough: true}},
	}

	if got := p.Runs(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Runs() = %#v, want %#v", got, expected)
	}
	if got := p.PlainText(); got != "abc" {
		t.Errorf("PlainText() = %q, want %q", got, "abc")
	}
}
