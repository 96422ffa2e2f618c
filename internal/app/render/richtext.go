package render

import (
	"strings"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

// RichTextMarkdown renders spans to inline Markdown without sanitization.
func RichTextMarkdown(items []notion.RichText) string {
	var out strings.Builder
	for _, item := range items {
		out.WriteString(spanMarkdown(item))
	}
	return out.String()
}

func (v *Visitor) richText(items []notion.RichText) string {
	var out strings.Builder
	for _, item := range items {
		if v.sanitizer != nil {
			item.PlainText = v.sanitizer.Sanitize(item.PlainText)
		}
		out.WriteString(spanMarkdown(item))
	}
	return out.String()
}

func spanMarkdown(item notion.RichText) string {
	if item.Type == notion.RichTextEquation && item.Equation != nil {
		return "$" + item.Equation.Expression + "$"
	}

	text := item.PlainText
	if text == "" && item.Text != nil {
		text = item.Text.Content
	}
	if strings.TrimSpace(text) == "" {
		return text
	}

	// Markers must hug the text, so surrounding whitespace stays outside.
	core := strings.TrimSpace(text)
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]

	a := item.Annotations
	if a.Code {
		core = "`" + core + "`"
	}
	if a.Strikethrough {
		core = "~~" + core + "~~"
	}
	if a.Bold {
		core = "**" + core + "**"
	}
	if a.Italic {
		core = "*" + core + "*"
	}
	if a.Underline {
		core = "<u>" + core + "</u>"
	}
	if url := item.URL(); url != "" {
		core = "[" + core + "](" + url + ")"
	}
	return lead + core + trail
}
