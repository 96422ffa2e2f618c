package render

import (
	"strings"
	"unicode"
)

// prefixLines indents every non-empty line of s. Blank lines stay blank.
func prefixLines(s string, prefix string) string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func headingSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func escapeBrackets(s string) string {
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return strings.TrimSpace(s)
}

func writeMarkdownTableRow(buf *strings.Builder, row []string) {
	buf.WriteString("|")
	for _, c := range row {
		buf.WriteString(" " + escapeTableCell(c) + " |")
	}
	buf.WriteString("\n")
}

// writeSeparatorRow writes the header separator. Cells are written verbatim.
func writeSeparatorRow(buf *strings.Builder, aligns []string) {
	buf.WriteString("|")
	for _, a := range aligns {
		buf.WriteString(" " + a + " |")
	}
	buf.WriteString("\n")
}
