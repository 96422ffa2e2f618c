package render

import (
	"sort"
	"strings"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

type column struct {
	name  string
	typ   notion.PropertyType
	title bool
}

func formatChildDatabase(v *Visitor, b notion.Block, _ FormatContext) (string, error) {
	if b.ChildDatabase == nil {
		return "", missingPayload(b)
	}
	content := *b.ChildDatabase
	title := strings.TrimSpace(content.Title)

	switch content.State {
	case notion.DatabaseFetched:
		if content.Database != nil {
			return inlineDatabase(*content.Database, title), nil
		}
	case notion.DatabaseLinked:
		return "🗄️ **" + title + "** _(linked database, not retrievable via API)_\n", nil
	case notion.DatabaseNotFetched:
		if db, ok := v.opts.Databases[notion.DatabaseID(b.ID)]; ok {
			return inlineDatabase(db, title), nil
		}
	}
	if content.State == notion.DatabaseInaccessible && content.Reason != "" {
		v.warn("child database %s is inaccessible: %s", b.ID, content.Reason)
	}
	return databasePlaceholder(title), nil
}

func databasePlaceholder(title string) string {
	return "🗄️ [[" + title + "]]\n"
}

func inlineDatabase(db notion.Database, fallbackTitle string) string {
	title := strings.TrimSpace(db.PlainTitle())
	if title == "" {
		title = fallbackTitle
	}
	head := "🗄️ **" + title + "**\n\n"
	if len(db.Pages) == 0 {
		return head + "*No data available.*\n\n"
	}
	return head + databaseTable(db) + "\n"
}

// databaseColumns puts the title column first and the rest in name order.
// Without a schema the columns come from the row properties.
func databaseColumns(db notion.Database) []column {
	byName := make(map[string]notion.PropertyType)
	for name, schema := range db.Properties {
		byName[name] = schema.Type
	}
	if len(byName) == 0 {
		for _, p := range db.Pages {
			for name, value := range p.Properties {
				if _, ok := byName[name]; !ok {
					byName[name] = value.Type
				}
			}
		}
	}

	cols := make([]column, 0, len(byName))
	var titleCol *column
	for name, typ := range byName {
		if typ == notion.PropertyTitle && titleCol == nil {
			titleCol = &column{name: name, typ: typ, title: true}
			continue
		}
		cols = append(cols, column{name: name, typ: typ})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].name < cols[j].name })
	if titleCol == nil {
		titleCol = &column{name: "Title", typ: notion.PropertyTitle, title: true}
	}
	return append([]column{*titleCol}, cols...)
}

func columnAlign(t notion.PropertyType) string {
	switch t {
	case notion.PropertyNumber:
		return "---:"
	case notion.PropertyDate, notion.PropertyCreatedTime, notion.PropertyLastEditedTime:
		return ":---:"
	default:
		return "---"
	}
}

func databaseTable(db notion.Database) string {
	cols := databaseColumns(db)

	var out strings.Builder
	header := make([]string, len(cols))
	aligns := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
		aligns[i] = columnAlign(c.typ)
	}
	writeMarkdownTableRow(&out, header)
	writeSeparatorRow(&out, aligns)

	for _, page := range db.Pages {
		row := make([]string, len(cols))
		for i, c := range cols {
			if c.title {
				row[i] = page.DisplayTitle()
				continue
			}
			if value, ok := page.Properties[c.name]; ok {
				row[i] = PropertyText(value)
			}
		}
		writeMarkdownTableRow(&out, row)
	}
	return out.String()
}

// schemaTable lists the database properties and their types in name order.
func schemaTable(db notion.Database) string {
	names := make([]string, 0, len(db.Properties))
	for name := range db.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	writeMarkdownTableRow(&out, []string{"Property", "Type"})
	writeSeparatorRow(&out, []string{"---", "---"})
	for _, name := range names {
		writeMarkdownTableRow(&out, []string{name, string(db.Properties[name].Type)})
	}
	return out.String()
}
