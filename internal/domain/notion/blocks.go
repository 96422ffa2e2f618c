package notion

import "time"

type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockToDo             BlockType = "to_do"
	BlockToggle           BlockType = "toggle"
	BlockQuote            BlockType = "quote"
	BlockCallout          BlockType = "callout"
	BlockCode             BlockType = "code"
	BlockDivider          BlockType = "divider"
	BlockTable            BlockType = "table"
	BlockTableRow         BlockType = "table_row"
	BlockBookmark         BlockType = "bookmark"
	BlockEmbed            BlockType = "embed"
	BlockEquation         BlockType = "equation"
	BlockChildPage        BlockType = "child_page"
	BlockChildDatabase    BlockType = "child_database"
	BlockImage            BlockType = "image"
	BlockFile             BlockType = "file"
	BlockPDF              BlockType = "pdf"
	BlockVideo            BlockType = "video"
	BlockLinkPreview      BlockType = "link_preview"
	BlockLinkToPage       BlockType = "link_to_page"
	BlockSyncedBlock      BlockType = "synced_block"
	BlockBreadcrumb       BlockType = "breadcrumb"
	BlockTableOfContents  BlockType = "table_of_contents"
	BlockColumnList       BlockType = "column_list"
	BlockColumn           BlockType = "column"
	BlockTemplate         BlockType = "template"
	BlockUnsupported      BlockType = "unsupported"
)

// KnownBlockTypes lists every block kind the model understands, in declaration order.
var KnownBlockTypes = []BlockType{
	BlockParagraph, BlockHeading1, BlockHeading2, BlockHeading3,
	BlockBulletedListItem, BlockNumberedListItem, BlockToDo, BlockToggle,
	BlockQuote, BlockCallout, BlockCode, BlockDivider, BlockTable, BlockTableRow,
	BlockBookmark, BlockEmbed, BlockEquation, BlockChildPage, BlockChildDatabase,
	BlockImage, BlockFile, BlockPDF, BlockVideo, BlockLinkPreview, BlockLinkToPage,
	BlockSyncedBlock, BlockBreadcrumb, BlockTableOfContents, BlockColumnList,
	BlockColumn, BlockTemplate, BlockUnsupported,
}

func (t BlockType) Known() bool {
	for _, k := range KnownBlockTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Block is one node of page content. Type selects which payload pointer is set,
// mirroring the Notion API object layout. Children is owned by the block and is
// the authoritative render order.
type Block struct {
	ID             BlockID   `json:"id"`
	Type           BlockType `json:"type"`
	Parent         Parent    `json:"parent"`
	HasChildren    bool      `json:"has_children"`
	Archived       bool      `json:"archived"`
	CreatedTime    time.Time `json:"created_time"`
	LastEditedTime time.Time `json:"last_edited_time"`
	Children       []Block   `json:"children,omitempty"`

	Paragraph        *TextContent          `json:"paragraph,omitempty"`
	Heading1         *HeadingContent       `json:"heading_1,omitempty"`
	Heading2         *HeadingContent       `json:"heading_2,omitempty"`
	Heading3         *HeadingContent       `json:"heading_3,omitempty"`
	BulletedListItem *TextContent          `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextContent          `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoContent          `json:"to_do,omitempty"`
	Toggle           *TextContent          `json:"toggle,omitempty"`
	Quote            *TextContent          `json:"quote,omitempty"`
	Callout          *CalloutContent       `json:"callout,omitempty"`
	Code             *CodeContent          `json:"code,omitempty"`
	Table            *TableContent         `json:"table,omitempty"`
	TableRow         *TableRowContent      `json:"table_row,omitempty"`
	Bookmark         *BookmarkContent      `json:"bookmark,omitempty"`
	Embed            *URLContent           `json:"embed,omitempty"`
	Equation         *Equation             `json:"equation,omitempty"`
	ChildPage        *ChildPageContent     `json:"child_page,omitempty"`
	ChildDatabase    *ChildDatabaseContent `json:"child_database,omitempty"`
	Image            *FileContent          `json:"image,omitempty"`
	File             *FileContent          `json:"file,omitempty"`
	PDF              *FileContent          `json:"pdf,omitempty"`
	Video            *FileContent          `json:"video,omitempty"`
	LinkPreview      *URLContent           `json:"link_preview,omitempty"`
	LinkToPage       *LinkToPageContent    `json:"link_to_page,omitempty"`
	SyncedBlock      *SyncedBlockContent   `json:"synced_block,omitempty"`
	Template         *TextContent          `json:"template,omitempty"`
}

type TextContent struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

type HeadingContent struct {
	RichText     []RichText `json:"rich_text"`
	Color        string     `json:"color,omitempty"`
	IsToggleable bool       `json:"is_toggleable,omitempty"`
}

type ToDoContent struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
	Color    string     `json:"color,omitempty"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

type CalloutContent struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
	Color    string     `json:"color,omitempty"`
}

type CodeContent struct {
	RichText []RichText `json:"rich_text"`
	Caption  []RichText `json:"caption,omitempty"`
	Language string     `json:"language"`
}

type TableContent struct {
	TableWidth      int  `json:"table_width"`
	HasColumnHeader bool `json:"has_column_header"`
	HasRowHeader    bool `json:"has_row_header"`
}

type TableRowContent struct {
	Cells [][]RichText `json:"cells"`
}

type BookmarkContent struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

type URLContent struct {
	URL string `json:"url"`
}

type ChildPageContent struct {
	Title string `json:"title"`
}

type FileContent struct {
	Type     string     `json:"type"`
	External *Link      `json:"external,omitempty"`
	File     *Link      `json:"file,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
	Name     string     `json:"name,omitempty"`
}

func (f FileContent) URL() string {
	if f.External != nil && f.External.URL != "" {
		return f.External.URL
	}
	if f.File != nil {
		return f.File.URL
	}
	return ""
}

type LinkToPageContent struct {
	Type       string     `json:"type"`
	PageID     PageID     `json:"page_id,omitempty"`
	DatabaseID DatabaseID `json:"database_id,omitempty"`
}

func (l LinkToPageContent) TargetID() ID {
	if l.PageID != "" {
		return ID(l.PageID)
	}
	return ID(l.DatabaseID)
}

type SyncedFrom struct {
	BlockID BlockID `json:"block_id"`
}

type SyncedBlockContent struct {
	SyncedFrom *SyncedFrom `json:"synced_from"`
}

type ChildDatabaseState int

const (
	DatabaseNotFetched ChildDatabaseState = iota
	DatabaseFetched
	DatabaseLinked
	DatabaseInaccessible
)

func (s ChildDatabaseState) String() string {
	switch s {
	case DatabaseFetched:
		return "fetched"
	case DatabaseLinked:
		return "linked"
	case DatabaseInaccessible:
		return "inaccessible"
	default:
		return "not_fetched"
	}
}

// ChildDatabaseContent carries the database title from the API plus what the
// graph builder managed to resolve for it. Database is set only when State is
// DatabaseFetched.
type ChildDatabaseContent struct {
	Title    string             `json:"title"`
	State    ChildDatabaseState `json:"-"`
	Database *Database          `json:"-"`
	Reason   string             `json:"-"`
}

func (c ChildDatabaseContent) Fetched() bool {
	return c.State == DatabaseFetched && c.Database != nil
}

// RichText returns the main text span of text-bearing blocks.
func (b Block) RichText() []RichText {
	switch b.Type {
	case BlockParagraph:
		return textOf(b.Paragraph)
	case BlockHeading1:
		return headingOf(b.Heading1)
	case BlockHeading2:
		return headingOf(b.Heading2)
	case BlockHeading3:
		return headingOf(b.Heading3)
	case BlockBulletedListItem:
		return textOf(b.BulletedListItem)
	case BlockNumberedListItem:
		return textOf(b.NumberedListItem)
	case BlockToggle:
		return textOf(b.Toggle)
	case BlockQuote:
		return textOf(b.Quote)
	case BlockTemplate:
		return textOf(b.Template)
	case BlockToDo:
		if b.ToDo != nil {
			return b.ToDo.RichText
		}
	case BlockCallout:
		if b.Callout != nil {
			return b.Callout.RichText
		}
	case BlockCode:
		if b.Code != nil {
			return b.Code.RichText
		}
	}
	return nil
}

func textOf(t *TextContent) []RichText {
	if t == nil {
		return nil
	}
	return t.RichText
}

func headingOf(h *HeadingContent) []RichText {
	if h == nil {
		return nil
	}
	return h.RichText
}

func (b Block) HeadingLevel() int {
	switch b.Type {
	case BlockHeading1:
		return 1
	case BlockHeading2:
		return 2
	case BlockHeading3:
		return 3
	default:
		return 0
	}
}
