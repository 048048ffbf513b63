package preview

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/WhalePrompt/stiky-note-md/internal/note"
)

// markdown converts note Markdown to HTML. Raw HTML is passed through so
// <u> underline markers survive.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: 'Segoe UI', sans-serif;
            font-size: 14px;
            padding: 12px;
            margin: 0;
            line-height: 1.5;
            color: #1a1a1a;
            background-color: {{.Background}};
            word-wrap: break-word;
            overflow-wrap: break-word;
        }
        h1, h2, h3, h4, h5, h6 { margin-top: 0.5em; margin-bottom: 0.3em; }
        p { margin: 0.5em 0; }
        code { background: #f0f0f0; padding: 2px 5px; border-radius: 3px; font-family: Consolas, monospace; }
        pre { background: #f0f0f0; padding: 10px; border-radius: 5px; white-space: pre-wrap; word-wrap: break-word; }
        pre code { padding: 0; background: none; }
        blockquote { margin: 0.5em 0; padding-left: 1em; border-left: 3px solid #80D4F7; color: #555; }
        ul, ol { margin: 0.5em 0; padding-left: 1.5em; }
        img { max-width: 100%; height: auto; }
        a { color: #0066cc; }
        table { border-collapse: collapse; margin: 0.5em 0; }
        th, td { border: 1px solid #ddd; padding: 6px 10px; }
        th { background: #f5f5f5; }
    </style>
</head>
<body>
{{.Body}}
{{- if .ReloadURL}}
<script>
    (function () {
        var proto = location.protocol === "https:" ? "wss://" : "ws://";
        var ws = new WebSocket(proto + location.host + {{.ReloadURL}});
        ws.onmessage = function () { location.reload(); };
    })();
</script>
{{- end}}
</body>
</html>
`))

// Page is the data of one rendered preview page
type Page struct {
	Title      string
	Markdown   string
	Background string
	// ReloadURL is a websocket path; when set the page reloads itself on
	// every message received from it
	ReloadURL string
}

// ToHTML converts Markdown to an HTML fragment
func ToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// RenderPreviewHTML converts note Markdown to a complete HTML page whose
// background is the given body color. Anything other than a hex color
// falls back to the default body color.
func RenderPreviewHTML(md, background string) (string, error) {
	return RenderPage(Page{Markdown: md, Background: background})
}

// RenderPage renders a full preview page
func RenderPage(p Page) (string, error) {
	body, err := ToHTML(p.Markdown)
	if err != nil {
		return "", err
	}

	bg := p.Background
	if !note.ValidColor(bg) {
		bg = note.DefaultBodyColor
	}

	data := struct {
		Title      string
		Background template.CSS
		Body       template.HTML
		ReloadURL  string
	}{
		Title:      p.Title,
		Background: template.CSS(bg),
		Body:       template.HTML(body),
		ReloadURL:  p.ReloadURL,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render preview page: %w", err)
	}
	return buf.String(), nil
}
