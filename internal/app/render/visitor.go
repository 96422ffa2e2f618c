package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sleroq/notion2md/internal/app/sanitize"
	"github.com/sleroq/notion2md/internal/domain/notion"
)

type TextSanitizer interface {
	Sanitize(text string) string
}

// AppConfig carries the document-level switches of the surrounding application.
type AppConfig struct {
	IncludeProperties bool
	IncludeMetadata   bool
}

type Options struct {
	EnableSanitization bool
	EnableParallel     bool
	// Concurrency caps parallel sibling rendering per level; zero means unlimited.
	Concurrency int
	// Databases resolves child databases the graph builder left unfetched.
	Databases map[notion.DatabaseID]notion.Database
	App       *AppConfig
	Sanitizer TextSanitizer
}

type Output struct {
	Markdown string
	Warnings []string
}

// Visitor walks a block tree and renders it through a Registry. A Visitor
// renders one document at a time.
type Visitor struct {
	registry  *Registry
	opts      Options
	sanitizer TextSanitizer
	document  []notion.Block

	mu       sync.Mutex
	warnings []string
}

func NewVisitor(registry *Registry, opts Options) *Visitor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	v := &Visitor{registry: registry, opts: opts}
	if opts.EnableSanitization {
		v.sanitizer = opts.Sanitizer
		if v.sanitizer == nil {
			v.sanitizer = sanitize.New()
		}
	}
	return v
}

func (v *Visitor) app() AppConfig {
	if v.opts.App == nil {
		return AppConfig{}
	}
	return *v.opts.App
}

func (v *Visitor) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logrus.Warn(msg)
	v.mu.Lock()
	v.warnings = append(v.warnings, msg)
	v.mu.Unlock()
}

func (v *Visitor) Warnings() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.warnings))
	copy(out, v.warnings)
	return out
}

func (v *Visitor) reset(document []notion.Block) {
	v.mu.Lock()
	v.warnings = nil
	v.mu.Unlock()
	v.document = document
}

func (v *Visitor) sanitizeText(s string) string {
	if v.sanitizer == nil {
		return s
	}
	return v.sanitizer.Sanitize(s)
}

// RenderBlocks renders a top-level block sequence as one document body.
func (v *Visitor) RenderBlocks(blocks []notion.Block) (Output, error) {
	v.reset(blocks)
	md, err := v.RenderChildren(blocks, NewFormatContext())
	if err != nil {
		return Output{}, err
	}
	return Output{Markdown: v.sanitizeText(md), Warnings: v.Warnings()}, nil
}

// Format renders a single block and returns the context for its next sibling.
// Threading the returned context through a run of siblings gives the same
// list frames and ordinals as RenderChildren.
func (v *Visitor) Format(b notion.Block, ctx FormatContext) (string, FormatContext, error) {
	ctx = enterRun(b, ctx)
	text, err := v.formatBlock(b, ctx)
	if err != nil {
		return "", ctx, err
	}
	return text, advance(b, ctx), nil
}

// RenderChildren renders siblings in source order. With parallel rendering
// enabled the blocks are formatted concurrently, but every block still gets the
// context a sequential pass would have given it and output keeps source order.
func (v *Visitor) RenderChildren(blocks []notion.Block, ctx FormatContext) (string, error) {
	if len(blocks) == 0 {
		return "", nil
	}

	contexts := make([]FormatContext, len(blocks))
	cur := ctx
	for i, b := range blocks {
		cur = enterRun(b, cur)
		contexts[i] = cur
		cur = advance(b, cur)
	}

	parts := make([]string, len(blocks))
	if v.opts.EnableParallel && len(blocks) > 1 {
		var g errgroup.Group
		if v.opts.Concurrency > 0 {
			g.SetLimit(v.opts.Concurrency)
		}
		for i := range blocks {
			g.Go(func() error {
				text, err := v.formatBlock(blocks[i], contexts[i])
				if err != nil {
					return err
				}
				parts[i] = text
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}
	} else {
		for i, b := range blocks {
			text, err := v.formatBlock(b, contexts[i])
			if err != nil {
				return "", err
			}
			parts[i] = text
		}
	}
	return strings.Join(parts, ""), nil
}

func (v *Visitor) formatBlock(b notion.Block, ctx FormatContext) (string, error) {
	f, isDefault, err := v.registry.resolve(b)
	if err != nil {
		return "", err
	}
	if isDefault {
		v.warn("block %s of type %s rendered with the default formatter", b.ID, b.Type)
	}

	out, err := f(v, b, ctx)
	if err == nil {
		return out, nil
	}

	var formatErr *BlockFormatError
	if errors.As(err, &formatErr) {
		return "", err
	}
	if isDefault {
		return "", &BlockFormatError{BlockType: b.Type, BlockID: b.ID, Reason: err.Error()}
	}
	fallback := v.registry.Default()
	if fallback == nil {
		return "", &BlockFormatError{BlockType: b.Type, BlockID: b.ID, Reason: err.Error()}
	}
	v.warn("block %s of type %s fell back to the default formatter: %v", b.ID, b.Type, err)
	return fallback(v, b, ctx)
}

// children renders the subtree of b one indent level deeper.
func (v *Visitor) children(b notion.Block, ctx FormatContext) (string, error) {
	return v.RenderChildren(b.Children, ctx.EnterChildren())
}

func listKindOf(t notion.BlockType) ListKind {
	switch t {
	case notion.BlockBulletedListItem, notion.BlockToDo:
		return ListBulleted
	case notion.BlockNumberedListItem:
		return ListNumbered
	default:
		return 0
	}
}

// enterRun opens or closes the list run at the current indent so consecutive
// list items share one list frame.
func enterRun(b notion.Block, ctx FormatContext) FormatContext {
	kind := listKindOf(b.Type)
	if open, ok := ctx.listRunAt(); ok && open != kind {
		ctx = ctx.ExitList()
	}
	if kind != 0 {
		if _, ok := ctx.listRunAt(); !ok {
			ctx = ctx.EnterList(kind)
		}
	}
	return ctx
}

func advance(b notion.Block, ctx FormatContext) FormatContext {
	switch b.Type {
	case notion.BlockNumberedListItem:
		return ctx.IncrementListNumber()
	case notion.BlockTableRow:
		return ctx.ProcessTableRow()
	default:
		return ctx
	}
}
