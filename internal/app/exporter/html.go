package exporter

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var htmlEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// toHTML converts rendered Markdown. Raw HTML such as <u> and <br> produced by
// the renderer passes through.
func toHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := htmlEngine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown to html: %w", err)
	}
	return buf.String(), nil
}
