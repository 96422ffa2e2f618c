package exporter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

const maxFilenameTitle = 100

// cleanFilename builds "<title>_<id>.md" with characters that are unsafe on
// any common filesystem replaced by '_'.
func cleanFilename(title string, id notion.ID) string {
	name := sanitizeName(title)
	if name == "" {
		name = "Untitled Page"
	}
	return name + "_" + id.String() + ".md"
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if isForbiddenFileNameRune(r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	out := strings.Trim(strings.TrimSpace(b.String()), ".")
	if len(out) > maxFilenameTitle {
		out = truncateRunes(out, maxFilenameTitle)
	}
	return strings.TrimSpace(out)
}

func isForbiddenFileNameRune(r rune) bool {
	if r == 0 || unicode.IsControl(r) {
		return true
	}
	switch r {
	case '/', '\\', '<', '>', ':', '"', '|', '?', '*':
		return true
	default:
		return false
	}
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := 0
	for i := range s {
		if i > n {
			break
		}
		end = i
	}
	return s[:end]
}

// uniqueNames numbers repeated names "a.md", "a-2.md", "a-3.md".
type uniqueNames map[string]int

func (u uniqueNames) claim(name string) string {
	key := strings.ToLower(name)
	n := u[key]
	u[key] = n + 1
	if n == 0 {
		return name
	}
	ext := ""
	if i := strings.LastIndex(name, "."); i > 0 {
		name, ext = name[:i], name[i:]
	}
	return name + "-" + strconv.Itoa(n+1) + ext
}
