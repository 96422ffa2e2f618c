package graph

import (
	"fmt"
	"strings"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

type CircularReferenceError struct {
	Chain []notion.ID
}

func (e *CircularReferenceError) Error() string {
	return "Circular reference detected: " + joinIDs(e.Chain, " -> ")
}

// Repeated returns the id that closed the cycle.
func (e *CircularReferenceError) Repeated() notion.ID {
	if len(e.Chain) == 0 {
		return ""
	}
	return e.Chain[len(e.Chain)-1]
}

type DepthLimitExceededError struct {
	MaxDepth int
	Path     []notion.ID
}

func (e *DepthLimitExceededError) Error() string {
	return fmt.Sprintf("Maximum depth %d exceeded at: %s", e.MaxDepth, joinIDs(e.Path, "/"))
}

type NodeLimitExceededError struct {
	MaxNodes int
	At       notion.ID
}

func (e *NodeLimitExceededError) Error() string {
	return fmt.Sprintf("Maximum node count %d exceeded at: %s", e.MaxNodes, e.At)
}

type DuplicateIDError struct {
	ID notion.ID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("block %s appears more than once in the object graph", e.ID)
}

func joinIDs(ids []notion.ID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, sep)
}
