package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

const (
	listChildIndent   = "   "
	toggleChildIndent = "  "
)

func builtinFormatters() map[notion.BlockType]Formatter {
	return map[notion.BlockType]Formatter{
		notion.BlockParagraph:        formatParagraph,
		notion.BlockHeading1:         formatHeading,
		notion.BlockHeading2:         formatHeading,
		notion.BlockHeading3:         formatHeading,
		notion.BlockBulletedListItem: formatBulletedListItem,
		notion.BlockNumberedListItem: formatNumberedListItem,
		notion.BlockToDo:             formatToDo,
		notion.BlockToggle:           formatToggle,
		notion.BlockQuote:            formatQuote,
		notion.BlockCallout:          formatCallout,
		notion.BlockCode:             formatCode,
		notion.BlockDivider:          formatDivider,
		notion.BlockTable:            formatTable,
		notion.BlockTableRow:         formatTableRow,
		notion.BlockBookmark:         formatBookmark,
		notion.BlockEmbed:            formatEmbed,
		notion.BlockEquation:         formatEquation,
		notion.BlockChildPage:        formatChildPage,
		notion.BlockChildDatabase:    formatChildDatabase,
		notion.BlockImage:            formatImage,
		notion.BlockFile:             formatFile,
		notion.BlockPDF:              formatPDF,
		notion.BlockVideo:            formatVideo,
		notion.BlockLinkPreview:      formatLinkPreview,
		notion.BlockLinkToPage:       formatLinkToPage,
		notion.BlockSyncedBlock:      formatSyncedBlock,
		notion.BlockBreadcrumb:       formatBreadcrumb,
		notion.BlockTableOfContents:  formatTableOfContents,
		notion.BlockColumnList:       formatContainer,
		notion.BlockColumn:           formatContainer,
		notion.BlockTemplate:         formatTemplate,
		notion.BlockUnsupported:      formatUnsupported,
	}
}

func missingPayload(b notion.Block) error {
	return fmt.Errorf("missing %s payload", b.Type)
}

// textLine renders prefix+text, or just the prefix for blank text.
func (v *Visitor) textLine(prefix string, rt []notion.RichText) string {
	text := v.richText(rt)
	if strings.TrimSpace(text) == "" {
		return prefix + "\n"
	}
	return prefix + text + "\n"
}

func (v *Visitor) withChildren(head string, b notion.Block, ctx FormatContext, indent string) (string, error) {
	body, err := v.children(b, ctx)
	if err != nil {
		return "", err
	}
	if indent != "" {
		body = prefixLines(body, indent)
	}
	return head + body, nil
}

func formatParagraph(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.Paragraph == nil {
		return "", missingPayload(b)
	}
	text := v.richText(b.Paragraph.RichText)
	head := "\n"
	if strings.TrimSpace(text) != "" {
		head = text + "\n\n"
	}
	return v.withChildren(head, b, ctx, "")
}

func formatHeading(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	h := headingPayload(b)
	if h == nil {
		return "", missingPayload(b)
	}
	return v.withChildren(v.textLine(strings.Repeat("#", b.HeadingLevel())+" ", h.RichText), b, ctx, "")
}

func headingPayload(b notion.Block) *notion.HeadingContent {
	switch b.Type {
	case notion.BlockHeading1:
		return b.Heading1
	case notion.BlockHeading2:
		return b.Heading2
	case notion.BlockHeading3:
		return b.Heading3
	}
	return nil
}

func formatBulletedListItem(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.BulletedListItem == nil {
		return "", missingPayload(b)
	}
	return v.withChildren(v.textLine("- ", b.BulletedListItem.RichText), b, ctx, listChildIndent)
}

func formatNumberedListItem(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.NumberedListItem == nil {
		return "", missingPayload(b)
	}
	prefix := strconv.Itoa(ctx.CurrentListNumber()) + ". "
	return v.withChildren(v.textLine(prefix, b.NumberedListItem.RichText), b, ctx, listChildIndent)
}

func formatToDo(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.ToDo == nil {
		return "", missingPayload(b)
	}
	prefix := "- [ ] "
	if b.ToDo.Checked {
		prefix = "- [x] "
	}
	return v.withChildren(v.textLine(prefix, b.ToDo.RichText), b, ctx, toggleChildIndent)
}

func formatToggle(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.Toggle == nil {
		return "", missingPayload(b)
	}
	return v.withChildren(v.textLine("▸ ", b.Toggle.RichText), b, ctx, toggleChildIndent)
}

func formatQuote(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.Quote == nil {
		return "", missingPayload(b)
	}
	text := strings.TrimRight(v.richText(b.Quote.RichText), "\n")
	head := "> " + strings.ReplaceAll(text, "\n", "\n> ") + "\n"
	return v.withChildren(head, b, ctx, "")
}

func formatCallout(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.Callout == nil {
		return "", missingPayload(b)
	}
	prefix := "> "
	if b.Callout.Icon != nil && b.Callout.Icon.Emoji != "" {
		prefix += b.Callout.Icon.Emoji + " "
	}
	return v.withChildren(v.textLine(prefix, b.Callout.RichText), b, ctx, "")
}

func formatCode(v *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.Code == nil {
		return "", missingPayload(b)
	}
	lang := strings.TrimSpace(b.Code.Language)
	if lang == "plain text" {
		lang = ""
	}
	code := notion.PlainText(b.Code.RichText)
	if v.sanitizer != nil {
		code = v.sanitizer.Sanitize(code)
	}

	var out strings.Builder
	out.WriteString("```" + lang + "\n")
	out.WriteString(strings.TrimRight(code, "\n"))
	out.WriteString("\n```\n")
	if caption := v.richText(b.Code.Caption); strings.TrimSpace(caption) != "" {
		out.WriteString("*" + caption + "*\n")
	}
	return out.String(), nil
}

func formatDivider(_ *Visitor, _ notion.Block, _ FormatContext) (string, error) {
	return "---\n", nil
}

func formatTable(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	width := 0
	if b.Table != nil {
		width = b.Table.TableWidth
	}
	return v.RenderChildren(b.Children, ctx.EnterChildren().EnterTable(width))
}

func formatTableRow(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.TableRow == nil {
		return "", missingPayload(b)
	}
	cells := make([]string, len(b.TableRow.Cells))
	for i, cell := range b.TableRow.Cells {
		cells[i] = v.richText(cell)
	}
	width := len(cells)
	if ctx.TableWidth() > width {
		for len(cells) < ctx.TableWidth() {
			cells = append(cells, "")
		}
		width = ctx.TableWidth()
	}

	var out strings.Builder
	writeMarkdownTableRow(&out, cells)
	if ctx.IsFirstTableRow() {
		sep := make([]string, width)
		for i := range sep {
			sep[i] = "---"
		}
		writeSeparatorRow(&out, sep)
	}
	return out.String(), nil
}

func formatBookmark(v *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.Bookmark == nil {
		return "", missingPayload(b)
	}
	caption := strings.TrimSpace(v.richText(b.Bookmark.Caption))
	if caption == "" {
		return "[🔖 " + b.Bookmark.URL + "]\n", nil
	}
	return "[🔖 " + b.Bookmark.URL + " - " + caption + "]\n", nil
}

func formatEmbed(_ *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.Embed == nil {
		return "", missingPayload(b)
	}
	return "[Embed: " + b.Embed.URL + "]\n", nil
}

func formatEquation(_ *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.Equation == nil {
		return "", missingPayload(b)
	}
	return "$$\n" + b.Equation.Expression + "\n$$\n", nil
}

func formatChildPage(_ *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.ChildPage == nil {
		return "", missingPayload(b)
	}
	return "📄 [[" + b.ChildPage.Title + "]]\n", nil
}

func formatImage(v *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.Image == nil {
		return "", missingPayload(b)
	}
	caption := strings.TrimSpace(v.richText(b.Image.Caption))
	if caption == "" {
		caption = "Image"
	}
	return "![" + caption + "](" + b.Image.URL() + ")\n", nil
}

func formatFile(v *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.File == nil {
		return "", missingPayload(b)
	}
	caption := strings.TrimSpace(v.richText(b.File.Caption))
	if caption == "" {
		caption = "File"
	}
	return "[" + caption + ": " + b.File.URL() + "]\n", nil
}

func formatPDF(_ *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.PDF == nil {
		return "", missingPayload(b)
	}
	return "[PDF: " + b.PDF.URL() + "]\n", nil
}

func formatVideo(_ *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.Video == nil {
		return "", missingPayload(b)
	}
	return "[Video: " + b.Video.URL() + "]\n", nil
}

func formatLinkPreview(_ *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.LinkPreview == nil {
		return "", missingPayload(b)
	}
	return "[Link Preview: " + b.LinkPreview.URL + "]\n", nil
}

func formatLinkToPage(_ *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.LinkToPage == nil {
		return "", missingPayload(b)
	}
	return "[[" + b.LinkToPage.TargetID().String() + "]]\n", nil
}

func formatSyncedBlock(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	head := ""
	if b.SyncedBlock != nil && b.SyncedBlock.SyncedFrom != nil {
		head = "[Synced from: " + b.SyncedBlock.SyncedFrom.BlockID.String() + "]\n"
	}
	return v.withChildren(head, b, ctx, "")
}

func formatBreadcrumb(_ *Visitor, _ notion.Block, _ FormatContext) (string, error) {
	return "[Breadcrumb]\n", nil
}

func formatContainer(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	return v.children(b, ctx)
}

func formatTemplate(v *Visitor, b notion.Block, ctx FormatContext) (string, error) {
	if b.Template == nil {
		return "", missingPayload(b)
	}
	return v.withChildren(v.textLine("[Template] ", b.Template.RichText), b, ctx, "")
}

func formatUnsupported(_ *Visitor, b notion.Block, _ FormatContext) (string, error) {
	return "[Unsupported block type: " + string(b.Type) + "]\n", nil
}

func formatTableOfContents(v *Visitor, _ notion.Block, _ FormatContext) (string, error) {
	if v.document == nil {
		return "[Table of Contents]\n", nil
	}

	type heading struct {
		level int
		text  string
	}
	headings := make([]heading, 0)
	var visit func([]notion.Block)
	visit = func(blocks []notion.Block) {
		for _, b := range blocks {
			if level := b.HeadingLevel(); level > 0 {
				text := strings.TrimSpace(notion.PlainText(b.RichText()))
				if text != "" {
					headings = append(headings, heading{level: level, text: text})
				}
			}
			visit(b.Children)
		}
	}
	visit(v.document)
	if len(headings) == 0 {
		return "[Table of Contents - No headings found]\n", nil
	}

	var out strings.Builder
	out.WriteString("## Table of Contents\n\n")
	for _, h := range headings {
		indent := strings.Repeat("  ", h.level-1)
		out.WriteString(indent + "* [" + escapeBrackets(h.text) + "](#" + headingSlug(h.text) + ")\n")
	}
	out.WriteString("\n")
	return out.String(), nil
}
