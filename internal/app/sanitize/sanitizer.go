package sanitize

import (
	"regexp"
	"strings"
)

// DefaultTags are stripped together with everything between their opening and
// closing tags.
var DefaultTags = []string{"script", "style", "iframe", "object", "embed", "noscript"}

// Sanitizer removes unsafe markup from rendered text. Sanitize is idempotent.
type Sanitizer struct {
	blocks []*regexp.Regexp
	stray  []*regexp.Regexp
}

type Option func(*Sanitizer)

// WithTags replaces the stripped tag set.
func WithTags(tags ...string) Option {
	return func(s *Sanitizer) {
		s.blocks = nil
		s.stray = nil
		for _, tag := range tags {
			s.addTag(tag)
		}
	}
}

func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{}
	for _, tag := range DefaultTags {
		s.addTag(tag)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sanitizer) addTag(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return
	}
	name := regexp.QuoteMeta(tag)
	s.blocks = append(s.blocks, regexp.MustCompile(`(?is)<`+name+`\b[^>]*>.*?</`+name+`\s*>`))
	s.stray = append(s.stray, regexp.MustCompile(`(?i)</?`+name+`\b[^>]*>`))
}

// Sanitize strips until nothing changes, so fragments that only form a tag
// after an inner removal are caught as well.
func (s *Sanitizer) Sanitize(text string) string {
	if text == "" || !strings.Contains(text, "<") {
		return text
	}
	for {
		next := text
		for _, re := range s.blocks {
			next = re.ReplaceAllString(next, "")
		}
		if next != text {
			text = next
			continue
		}
		for _, re := range s.stray {
			next = re.ReplaceAllString(next, "")
		}
		if next == text {
			return next
		}
		text = next
	}
}

var defaultSanitizer = New()

func Text(text string) string {
	return defaultSanitizer.Sanitize(text)
}

// Apply sanitizes only when enabled; disabled means raw passthrough.
func Apply(enabled bool, text string) string {
	if !enabled {
		return text
	}
	return Text(text)
}
