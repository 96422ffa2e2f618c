package notion

import "time"

type ParentType string

const (
	ParentWorkspace ParentType = "workspace"
	ParentPage      ParentType = "page_id"
	ParentDatabase  ParentType = "database_id"
	ParentBlock     ParentType = "block_id"
)

// Parent tells where a fetched entity attaches. A block parent means the entity
// nests under that block rather than directly under the owning page.
type Parent struct {
	Type       ParentType `json:"type"`
	PageID     PageID     `json:"page_id,omitempty"`
	DatabaseID DatabaseID `json:"database_id,omitempty"`
	BlockID    BlockID    `json:"block_id,omitempty"`
	Workspace  bool       `json:"workspace,omitempty"`
}

func WorkspaceParent() Parent { return Parent{Type: ParentWorkspace, Workspace: true} }
func PageParent(id PageID) Parent { return Parent{Type: ParentPage, PageID: id} }
func DatabaseParent(id DatabaseID) Parent { return Parent{Type: ParentDatabase, DatabaseID: id} }
func BlockParent(id BlockID) Parent { return Parent{Type: ParentBlock, BlockID: id} }

// ID returns the raw id of the parent entity, empty for workspace parents.
func (p Parent) ID() ID {
	switch p.Type {
	case ParentPage:
		return ID(p.PageID)
	case ParentDatabase:
		return ID(p.DatabaseID)
	case ParentBlock:
		return ID(p.BlockID)
	default:
		return ""
	}
}

type Page struct {
	ID             PageID     `json:"id"`
	Title          string     `json:"-"`
	URL            string     `json:"url"`
	Archived       bool       `json:"archived"`
	CreatedTime    time.Time  `json:"created_time"`
	LastEditedTime time.Time  `json:"last_edited_time"`
	Parent         Parent     `json:"parent"`
	Properties     Properties `json:"properties"`
	Children       []Block    `json:"-"`
}

// DisplayTitle falls back to the title property when Title was not set at parse time.
func (p Page) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	if t := p.Properties.Title(); t != "" {
		return t
	}
	return "Untitled"
}

type Database struct {
	ID             DatabaseID                `json:"id"`
	Title          []RichText                `json:"title"`
	Description    []RichText                `json:"description,omitempty"`
	URL            string                    `json:"url"`
	Archived       bool                      `json:"archived"`
	IsInline       bool                      `json:"is_inline"`
	CreatedTime    time.Time                 `json:"created_time"`
	LastEditedTime time.Time                 `json:"last_edited_time"`
	Parent         Parent                    `json:"parent"`
	Properties     map[string]PropertySchema `json:"properties"`
	Pages          []Page                    `json:"-"`
}

func (d Database) PlainTitle() string {
	return PlainText(d.Title)
}

// Object is the root of one export: either a page or a database.
type Object struct {
	Page     *Page
	Database *Database
}

func (o Object) ID() ID {
	if o.Page != nil {
		return ID(o.Page.ID)
	}
	if o.Database != nil {
		return ID(o.Database.ID)
	}
	return ""
}

func (o Object) Title() string {
	if o.Page != nil {
		return o.Page.DisplayTitle()
	}
	if o.Database != nil {
		return o.Database.PlainTitle()
	}
	return ""
}
