package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

var (
	ErrNilFormatter       = errors.New("render: nil formatter")
	ErrEmptyBlockType     = errors.New("render: empty block type")
	ErrNoDefaultFormatter = errors.New("render: no default formatter configured")
)

type BlockFormatError struct {
	BlockType notion.BlockType
	BlockID   notion.BlockID
	Reason    string
}

func (e *BlockFormatError) Error() string {
	return fmt.Sprintf("Block formatting failed for %s (id: %s): %s", e.BlockType, e.BlockID, e.Reason)
}

// Formatter renders one block. It may call back into the visitor for children
// and must not perform I/O.
type Formatter func(v *Visitor, b notion.Block, ctx FormatContext) (string, error)

// Registry maps block kinds to formatters with an optional default for
// everything unregistered.
type Registry struct {
	mu         sync.RWMutex
	formatters map[notion.BlockType]Formatter
	fallback   Formatter
}

func NewRegistry() *Registry {
	return &Registry{formatters: make(map[notion.BlockType]Formatter)}
}

// DefaultRegistry returns a registry with every built-in block kind and the
// unsupported-block marker as default.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for kind, f := range builtinFormatters() {
		r.formatters[kind] = f
	}
	r.fallback = formatUnsupported
	return r
}

// Register replaces any formatter already stored for kind.
func (r *Registry) Register(kind notion.BlockType, f Formatter) error {
	if kind == "" {
		return ErrEmptyBlockType
	}
	if f == nil {
		return ErrNilFormatter
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[kind] = f
	return nil
}

func (r *Registry) Remove(kind notion.BlockType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.formatters, kind)
}

// SetDefault sets the fallback formatter. A nil value removes it.
func (r *Registry) SetDefault(f Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = f
}

func (r *Registry) Lookup(kind notion.BlockType) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[kind]
	return f, ok
}

func (r *Registry) Default() Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Kinds lists registered block kinds in name order.
func (r *Registry) Kinds() []notion.BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]notion.BlockType, 0, len(r.formatters))
	for k := range r.formatters {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// resolve returns the formatter for b and whether it is the default.
func (r *Registry) resolve(b notion.Block) (Formatter, bool, error) {
	if f, ok := r.Lookup(b.Type); ok {
		return f, false, nil
	}
	if f := r.Default(); f != nil {
		return f, true, nil
	}
	return nil, false, &BlockFormatError{BlockType: b.Type, BlockID: b.ID, Reason: ErrNoDefaultFormatter.Error()}
}
