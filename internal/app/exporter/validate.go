package exporter

import (
	"context"

	"github.com/sleroq/notion2md/internal/app/graph"
	"github.com/sleroq/notion2md/internal/config"
	"github.com/sleroq/notion2md/internal/domain/notion"
)

// Summary describes a snapshot and the tree assembled from it.
type Summary struct {
	Root      notion.ID
	Title     string
	Pages     int
	Databases int
	Blocks    int
	Nodes     int
	Embedded  int
	Warnings  []string
}

// Validate reads the snapshot and assembles the graph without rendering or
// writing anything. Input, Root and the limits are the only settings used.
func Validate(ctx context.Context, cfg config.Config) (Summary, error) {
	if cfg.Format == "" {
		cfg.Format = config.FormatMarkdown
	}
	if err := cfg.Validate(); err != nil {
		return Summary{}, wrapValidationError(err, "invalid configuration", codeInvalidConfig)
	}
	a, err := assemble(ctx, cfg)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Root:      a.graph.Root.ID(),
		Title:     a.graph.Root.Title(),
		Pages:     len(a.snapshot.Pages),
		Databases: len(a.snapshot.Databases),
		Blocks:    a.snapshot.BlockCount(),
		Nodes:     a.graph.Nodes,
		Embedded:  embeddedCount(a.graph.Root),
		Warnings:  a.graph.Warnings,
	}, nil
}

func embeddedCount(root notion.Object) int {
	switch {
	case root.Page != nil:
		return len(graph.EmbeddedDatabases(root.Page.Children))
	case root.Database != nil:
		n := 0
		for _, row := range root.Database.Pages {
			n += len(graph.EmbeddedDatabases(row.Children))
		}
		return n
	default:
		return 0
	}
}
