package exporter

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/adrg/frontmatter"

	"github.com/sleroq/notion2md/internal/app/render"
	"github.com/sleroq/notion2md/internal/domain/notion"
)

// Document is one rendered page or database handed to prompt templates.
type Document struct {
	Path string
	Code string
}

// PromptData is the value a prompt template executes against.
type PromptData struct {
	MainContent  string
	Files        []Document
	SourceTree   string
	Instructions string
}

// Template is a prompt template: a front matter header followed by a
// text/template body.
type Template struct {
	Name        string `yaml:"name" toml:"name" json:"name"`
	Description string `yaml:"description" toml:"description" json:"description"`

	body *template.Template
}

// ParseTemplate reads the optional front matter of source and compiles the rest.
// The template name falls back to fallbackName when the header does not set one.
func ParseTemplate(fallbackName, source string) (Template, error) {
	var tmpl Template
	body, err := frontmatter.Parse(strings.NewReader(source), &tmpl)
	if err != nil {
		return Template{}, fmt.Errorf("parse template front matter: %w", err)
	}
	if strings.TrimSpace(tmpl.Name) == "" {
		tmpl.Name = fallbackName
	}
	compiled, err := template.New(tmpl.Name).Option("missingkey=zero").Parse(strings.TrimPrefix(string(body), "\n"))
	if err != nil {
		return Template{}, fmt.Errorf("parse template %s: %w", tmpl.Name, err)
	}
	tmpl.body = compiled
	return tmpl, nil
}

func (t Template) Execute(data PromptData) (string, error) {
	if t.body == nil {
		return "", fmt.Errorf("template %s is not compiled", t.Name)
	}
	var out strings.Builder
	if err := t.body.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.Name, err)
	}
	return out.String(), nil
}

// documentCollector renders every page and database reachable from a root
// into its own document, in tree order.
type documentCollector struct {
	newVisitor func() *render.Visitor
	pages      map[notion.PageID]notion.Page
	names      uniqueNames
	docs       []Document
}

func collectDocuments(root notion.Object, pages map[notion.PageID]notion.Page, newVisitor func() *render.Visitor) ([]Document, error) {
	c := &documentCollector{newVisitor: newVisitor, pages: pages, names: uniqueNames{}}
	var err error
	switch {
	case root.Page != nil:
		err = c.page(*root.Page)
	case root.Database != nil:
		err = c.database(*root.Database)
	}
	if err != nil {
		return nil, err
	}
	return c.docs, nil
}

func (c *documentCollector) add(title string, id notion.ID, out render.Output) {
	c.docs = append(c.docs, Document{
		Path: c.names.claim(cleanFilename(title, id)),
		Code: out.Markdown,
	})
}

func (c *documentCollector) page(page notion.Page) error {
	out, err := c.newVisitor().RenderPage(page)
	if err != nil {
		return fmt.Errorf("render page %s: %w", page.ID, err)
	}
	c.add(page.DisplayTitle(), notion.ID(page.ID), out)
	return c.blocks(page.Children)
}

func (c *documentCollector) database(db notion.Database) error {
	out, err := c.newVisitor().RenderDatabase(db)
	if err != nil {
		return fmt.Errorf("render database %s: %w", db.ID, err)
	}
	c.add(db.PlainTitle(), notion.ID(db.ID), out)
	for _, row := range db.Pages {
		if err := c.page(row); err != nil {
			return err
		}
	}
	return nil
}

func (c *documentCollector) blocks(blocks []notion.Block) error {
	for _, blk := range blocks {
		switch {
		case blk.Type == notion.BlockChildPage && blk.ChildPage != nil:
			if err := c.page(c.childPage(blk)); err != nil {
				return err
			}
			continue
		case blk.Type == notion.BlockChildDatabase && blk.ChildDatabase != nil && blk.ChildDatabase.Fetched():
			if err := c.database(*blk.ChildDatabase.Database); err != nil {
				return err
			}
		}
		if err := c.blocks(blk.Children); err != nil {
			return err
		}
	}
	return nil
}

// childPage rebuilds a page from a child_page block, keeping the snapshot's
// page record for properties when there is one.
func (c *documentCollector) childPage(blk notion.Block) notion.Page {
	id := notion.PageID(blk.ID)
	page, ok := c.pages[id]
	if !ok {
		page = notion.Page{ID: id, Parent: blk.Parent}
	}
	page.Title = blk.ChildPage.Title
	page.Children = blk.Children
	return page
}

func sourceTree(docs []Document) string {
	var b strings.Builder
	b.WriteString("notion2md/\n")
	for _, doc := range docs {
		b.WriteString("└── " + doc.Path + "\n")
	}
	return b.String()
}
