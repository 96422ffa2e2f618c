package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

const (
	DefaultMaxDepth = 10
	DefaultMaxNodes = 1000
)

// Limits bound one assembly pass. Zero values disable the corresponding check.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

func DefaultLimits() Limits {
	return Limits{MaxDepth: DefaultMaxDepth, MaxNodes: DefaultMaxNodes}
}

type Option func(*Builder)

// WithChildren supplies already-fetched children keyed by the id of the page or
// block they belong to. Order inside each slice is kept.
func WithChildren(children map[notion.ID][]notion.Block) Option {
	return func(b *Builder) {
		for parent, blocks := range children {
			b.children[parent] = append(b.children[parent], blocks...)
		}
	}
}

// WithBlocks indexes a flat list of blocks by their Parent pointer, keeping
// arrival order per parent.
func WithBlocks(blocks ...notion.Block) Option {
	return func(b *Builder) {
		for _, blk := range blocks {
			parent := blk.Parent.ID()
			if parent == "" {
				continue
			}
			b.children[parent] = append(b.children[parent], blk)
		}
	}
}

// WithDatabases supplies out-of-band databases used to resolve child_database
// blocks that carry no embedded content.
func WithDatabases(dbs map[notion.DatabaseID]notion.Database) Option {
	return func(b *Builder) {
		for id, db := range dbs {
			b.databases[id] = db
		}
	}
}

type Builder struct {
	limits    Limits
	children  map[notion.ID][]notion.Block
	databases map[notion.DatabaseID]notion.Database
}

func NewBuilder(limits Limits, opts ...Option) *Builder {
	b := &Builder{
		limits:    limits,
		children:  map[notion.ID][]notion.Block{},
		databases: map[notion.DatabaseID]notion.Database{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type Result struct {
	Root     notion.Object
	Nodes    int
	Upgraded int
	Warnings []string
}

type assembly struct {
	b         *Builder
	ancestors mapset.Set[notion.ID]
	seen      mapset.Set[notion.ID]
	path      []notion.ID
	nodes     int
	upgraded  int
	warnings  []string
}

// Build assembles the tree under root. Assembly is all-or-nothing: any
// structural error discards the partially linked tree.
func (b *Builder) Build(root notion.Object) (Result, error) {
	a := b.newAssembly()
	switch {
	case root.Page != nil:
		page, err := a.page(*root.Page)
		if err != nil {
			return Result{}, err
		}
		return a.result(notion.Object{Page: &page}), nil
	case root.Database != nil:
		db, err := a.database(*root.Database)
		if err != nil {
			return Result{}, err
		}
		return a.result(notion.Object{Database: &db}), nil
	default:
		return Result{}, nil
	}
}

// AssemblePage links the blocks of one page. blocks is used when the page
// carries no nested children of its own.
func (b *Builder) AssemblePage(page notion.Page, blocks []notion.Block) (notion.Page, error) {
	if len(page.Children) == 0 && len(blocks) > 0 {
		page.Children = blocks
	}
	res, err := b.Build(notion.Object{Page: &page})
	if err != nil {
		return notion.Page{}, err
	}
	return *res.Root.Page, nil
}

// AssembleBlocks links a top-level block sequence that belongs to rootID.
func (b *Builder) AssembleBlocks(rootID notion.ID, blocks []notion.Block) ([]notion.Block, error) {
	a := b.newAssembly()
	a.enter(rootID)
	return a.blocks(blocks, 0)
}

func (b *Builder) newAssembly() *assembly {
	return &assembly{
		b:         b,
		ancestors: mapset.NewThreadUnsafeSet[notion.ID](),
		seen:      mapset.NewThreadUnsafeSet[notion.ID](),
	}
}

func (a *assembly) result(root notion.Object) Result {
	return Result{Root: root, Nodes: a.nodes, Upgraded: a.upgraded, Warnings: a.warnings}
}

func (a *assembly) enter(id notion.ID) {
	a.ancestors.Add(id)
	a.path = append(a.path, id)
}

func (a *assembly) leave(id notion.ID) {
	a.ancestors.Remove(id)
	a.path = a.path[:len(a.path)-1]
}

func (a *assembly) page(page notion.Page) (notion.Page, error) {
	id := notion.ID(page.ID)
	if err := a.visit(id); err != nil {
		return notion.Page{}, err
	}
	blocks := page.Children
	if len(blocks) == 0 {
		blocks = a.b.children[id]
	}
	a.enter(id)
	children, err := a.blocks(blocks, 0)
	a.leave(id)
	if err != nil {
		return notion.Page{}, err
	}
	page.Children = children
	if page.Title == "" {
		page.Title = page.Properties.Title()
	}
	return page, nil
}

func (a *assembly) database(db notion.Database) (notion.Database, error) {
	id := notion.ID(db.ID)
	if err := a.visit(id); err != nil {
		return notion.Database{}, err
	}
	a.enter(id)
	defer a.leave(id)
	return a.rows(db)
}

// rows links every live row of db as a page. Archived rows are dropped.
func (a *assembly) rows(db notion.Database) (notion.Database, error) {
	rows := make([]notion.Page, 0, len(db.Pages))
	for _, row := range db.Pages {
		if row.Archived {
			continue
		}
		linked, err := a.page(row)
		if err != nil {
			return notion.Database{}, err
		}
		rows = append(rows, linked)
	}
	db.Pages = rows
	return db, nil
}

// embeddedDatabase links the rows of a fetched child database under its block.
// The block and the database normally share an id, which visit already counted.
func (a *assembly) embeddedDatabase(blk notion.Block) (notion.Block, error) {
	if blk.ChildDatabase == nil || !blk.ChildDatabase.Fetched() {
		return blk, nil
	}
	blockID := notion.ID(blk.ID)
	a.enter(blockID)
	defer a.leave(blockID)

	db := *blk.ChildDatabase.Database
	if dbID := notion.ID(db.ID); dbID != "" && dbID != blockID {
		if err := a.visit(dbID); err != nil {
			return notion.Block{}, err
		}
		a.enter(dbID)
		defer a.leave(dbID)
	}
	linked, err := a.rows(db)
	if err != nil {
		return notion.Block{}, err
	}
	content := *blk.ChildDatabase
	content.Database = &linked
	blk.ChildDatabase = &content
	return blk, nil
}

// visit applies the per-node checks shared by pages and blocks.
func (a *assembly) visit(id notion.ID) error {
	if a.ancestors.Contains(id) {
		return &CircularReferenceError{Chain: a.cycleChain(id)}
	}
	if a.seen.Contains(id) {
		return &DuplicateIDError{ID: id}
	}
	a.seen.Add(id)
	a.nodes++
	if a.b.limits.MaxNodes > 0 && a.nodes > a.b.limits.MaxNodes {
		return &NodeLimitExceededError{MaxNodes: a.b.limits.MaxNodes, At: id}
	}
	return nil
}

func (a *assembly) cycleChain(id notion.ID) []notion.ID {
	start := 0
	for i, p := range a.path {
		if p == id {
			start = i
			break
		}
	}
	chain := make([]notion.ID, 0, len(a.path)-start+1)
	chain = append(chain, a.path[start:]...)
	return append(chain, id)
}

func (a *assembly) blocks(blocks []notion.Block, depth int) ([]notion.Block, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	out := make([]notion.Block, 0, len(blocks))
	for _, blk := range blocks {
		if blk.Archived {
			a.warnings = append(a.warnings, "skipped archived block "+blk.ID.String())
			continue
		}
		id := notion.ID(blk.ID)
		if err := a.visit(id); err != nil {
			return nil, err
		}

		node, err := a.embeddedDatabase(a.resolveChildDatabase(blk))
		if err != nil {
			return nil, err
		}
		kids := a.childrenOf(blk)
		node.Children = nil
		if len(kids) > 0 {
			if a.b.limits.MaxDepth > 0 && depth+1 > a.b.limits.MaxDepth {
				path := append(append([]notion.ID{}, a.path...), id, notion.ID(kids[0].ID))
				return nil, &DepthLimitExceededError{MaxDepth: a.b.limits.MaxDepth, Path: path}
			}
			a.enter(id)
			children, err := a.blocks(kids, depth+1)
			a.leave(id)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		node.HasChildren = len(node.Children) > 0
		out = append(out, node)
	}
	return out, nil
}

func (a *assembly) childrenOf(blk notion.Block) []notion.Block {
	if len(blk.Children) > 0 {
		return blk.Children
	}
	if !blk.HasChildren {
		return nil
	}
	return a.b.children[notion.ID(blk.ID)]
}

// resolveChildDatabase upgrades a NotFetched child database from the external
// map. Embedded content is never replaced.
func (a *assembly) resolveChildDatabase(blk notion.Block) notion.Block {
	if blk.Type != notion.BlockChildDatabase || blk.ChildDatabase == nil {
		return blk
	}
	content := *blk.ChildDatabase
	if content.State == notion.DatabaseNotFetched {
		if db, ok := a.b.databases[notion.DatabaseID(blk.ID)]; ok {
			content.State = notion.DatabaseFetched
			content.Database = &db
			a.upgraded++
			logrus.WithFields(logrus.Fields{
				"block": blk.ID.String(),
				"title": content.Title,
				"rows":  len(db.Pages),
			}).Debug("embedded child database from external map")
		}
	}
	blk.ChildDatabase = &content
	return blk
}

// EmbeddedDatabases collects every fetched child database in the tree, keyed by id.
func EmbeddedDatabases(blocks []notion.Block) map[notion.DatabaseID]notion.Database {
	out := map[notion.DatabaseID]notion.Database{}
	var walk func([]notion.Block)
	walk = func(blocks []notion.Block) {
		for _, blk := range blocks {
			if blk.Type == notion.BlockChildDatabase && blk.ChildDatabase != nil && blk.ChildDatabase.Fetched() {
				out[notion.DatabaseID(blk.ID)] = *blk.ChildDatabase.Database
			}
			walk(blk.Children)
		}
	}
	walk(blocks)
	return out
}
