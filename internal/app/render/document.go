package render

import (
	"sort"
	"strings"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

// Render renders a page or database root into one Markdown document.
func (v *Visitor) Render(obj notion.Object) (Output, error) {
	switch {
	case obj.Page != nil:
		return v.RenderPage(*obj.Page)
	case obj.Database != nil:
		return v.RenderDatabase(*obj.Database)
	default:
		return Output{}, nil
	}
}

func (v *Visitor) RenderPage(page notion.Page) (Output, error) {
	v.reset(page.Children)
	app := v.app()

	var out strings.Builder
	out.WriteString("# " + page.DisplayTitle() + "\n\n")

	if app.IncludeProperties {
		if props := pageProperties(page); props != "" {
			out.WriteString("## Properties\n\n")
			out.WriteString(props)
			out.WriteString("\n")
		}
	}

	body, err := v.RenderChildren(page.Children, NewFormatContext())
	if err != nil {
		return Output{}, err
	}
	out.WriteString(body)

	if app.IncludeMetadata {
		out.WriteString("\n## Metadata\n\n")
		out.WriteString("- **Page ID**: " + page.ID.String() + "\n")
		if page.URL != "" {
			out.WriteString("- **URL**: " + page.URL + "\n")
		}
	}

	return Output{Markdown: v.sanitizeText(out.String()), Warnings: v.Warnings()}, nil
}

func (v *Visitor) RenderDatabase(db notion.Database) (Output, error) {
	v.reset(nil)
	app := v.app()

	title := strings.TrimSpace(db.PlainTitle())
	if title == "" {
		title = "Untitled"
	}

	var out strings.Builder
	out.WriteString("# " + title + "\n\n")
	if desc := strings.TrimSpace(v.richText(db.Description)); desc != "" {
		out.WriteString(desc + "\n\n")
	}

	if len(db.Properties) > 0 {
		out.WriteString("## Schema\n\n")
		out.WriteString(schemaTable(db))
		out.WriteString("\n")
	}

	out.WriteString("## Data\n\n")
	if len(db.Pages) == 0 {
		out.WriteString("*No data available.*\n")
	} else {
		out.WriteString(databaseTable(db))
	}

	if app.IncludeMetadata {
		out.WriteString("\n## Metadata\n\n")
		out.WriteString("- **Database ID**: " + db.ID.String() + "\n")
		if db.URL != "" {
			out.WriteString("- **URL**: " + db.URL + "\n")
		}
	}

	return Output{Markdown: v.sanitizeText(out.String()), Warnings: v.Warnings()}, nil
}

// pageProperties lists non-empty properties by name, title excluded.
func pageProperties(page notion.Page) string {
	names := make([]string, 0, len(page.Properties))
	for name, value := range page.Properties {
		if value.Type == notion.PropertyTitle {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	for _, name := range names {
		text := PropertyText(page.Properties[name])
		if strings.TrimSpace(text) == "" {
			continue
		}
		out.WriteString("- **" + name + "**: " + text + "\n")
	}
	return out.String()
}
