package notion

import "strings"

type RichTextType string

const (
	RichTextText     RichTextType = "text"
	RichTextMention  RichTextType = "mention"
	RichTextEquation RichTextType = "equation"
)

type RichText struct {
	Type        RichTextType `json:"type"`
	PlainText   string       `json:"plain_text"`
	Href        string       `json:"href,omitempty"`
	Annotations Annotations  `json:"annotations"`
	Text        *TextSpan    `json:"text,omitempty"`
	Mention     *Mention     `json:"mention,omitempty"`
	Equation    *Equation    `json:"equation,omitempty"`
}

type Mention struct {
	Type        string      `json:"type"`
	User        *User       `json:"user,omitempty"`
	Page        *Relation   `json:"page,omitempty"`
	Database    *Relation   `json:"database,omitempty"`
	Date        *DateValue  `json:"date,omitempty"`
	LinkPreview *URLContent `json:"link_preview,omitempty"`
}

type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

type TextSpan struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

type Equation struct {
	Expression string `json:"expression"`
}

// PlainRichText builds an unannotated text span.
func PlainRichText(s string) RichText {
	return RichText{
		Type:        RichTextText,
		PlainText:   s,
		Annotations: Annotations{Color: "default"},
		Text:        &TextSpan{Content: s},
	}
}

func PlainText(items []RichText) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.PlainText)
	}
	return b.String()
}

// URL returns the link target of the span, preferring href over the text link.
func (r RichText) URL() string {
	if r.Href != "" {
		return r.Href
	}
	if r.Text != nil && r.Text.Link != nil {
		return r.Text.Link.URL
	}
	return ""
}
