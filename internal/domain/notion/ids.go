package notion

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const idLength = 32

// ID is a canonical Notion identifier: 32 lowercase hex characters without dashes.
type ID string

type BlockID string
type PageID string
type DatabaseID string

type InvalidIDError struct {
	Input  string
	Reason string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid notion id %q: %s", e.Input, e.Reason)
}

// ParseID accepts a bare 32-hex id, a dashed UUID, or a notion.so URL ending in either.
func ParseID(input string) (ID, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", &InvalidIDError{Input: input, Reason: "empty"}
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		candidate, ok := idFromURL(raw)
		if !ok {
			return "", &InvalidIDError{Input: input, Reason: "no id found in url"}
		}
		raw = candidate
	}

	if len(raw) == 36 {
		u, err := uuid.Parse(raw)
		if err != nil {
			return "", &InvalidIDError{Input: input, Reason: err.Error()}
		}
		return ID(strings.ReplaceAll(u.String(), "-", "")), nil
	}

	clean := strings.ReplaceAll(raw, "-", "")
	if len(clean) != idLength {
		return "", &InvalidIDError{Input: input, Reason: fmt.Sprintf("expected %d hex characters, got %d", idLength, len(clean))}
	}
	if !isHex(clean) {
		return "", &InvalidIDError{Input: input, Reason: "contains non-hex characters"}
	}
	return ID(strings.ToLower(clean)), nil
}

func idFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	path := strings.TrimRight(u.Path, "/")
	segment := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		segment = path[idx+1:]
	}
	if segment == "" {
		return "", false
	}
	if idx := strings.LastIndex(segment, "-"); idx >= 0 && len(segment)-idx-1 == idLength {
		return segment[idx+1:], true
	}
	if len(segment) == idLength || len(segment) == 36 {
		return segment, true
	}
	return "", false
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

// Dashed returns the 8-4-4-4-12 form used by the Notion API.
func (id ID) Dashed() string {
	s := string(id)
	if len(s) != idLength {
		return s
	}
	return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
}

func (id *ID) UnmarshalText(b []byte) error {
	v, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func ParseBlockID(s string) (BlockID, error) {
	id, err := ParseID(s)
	return BlockID(id), err
}

func ParsePageID(s string) (PageID, error) {
	id, err := ParseID(s)
	return PageID(id), err
}

func ParseDatabaseID(s string) (DatabaseID, error) {
	id, err := ParseID(s)
	return DatabaseID(id), err
}

func (id BlockID) String() string { return string(id) }
func (id PageID) String() string { return string(id) }
func (id DatabaseID) String() string { return string(id) }
func (id BlockID) Dashed() string { return ID(id).Dashed() }
func (id PageID) Dashed() string { return ID(id).Dashed() }
func (id DatabaseID) Dashed() string { return ID(id).Dashed() }
func (id BlockID) IsZero() bool { return id == "" }
func (id PageID) IsZero() bool { return id == "" }
func (id DatabaseID) IsZero() bool { return id == "" }

func (id *BlockID) UnmarshalText(b []byte) error {
	v, err := ParseBlockID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id *PageID) UnmarshalText(b []byte) error {
	v, err := ParsePageID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id *DatabaseID) UnmarshalText(b []byte) error {
	v, err := ParseDatabaseID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
