package service

import (
	"strings"

	"writehub/internal/model"
)

// DeriveExcerpt builds a plain-text preview from post HTML: tags stripped,
// whitespace collapsed, truncated to the excerpt limit. Deterministic, so
// re-deriving from unchanged content is a no-op.
func DeriveExcerpt(content string) string {
	var b strings.Builder
	// Text since the last "<" is held back until the tag closes; a "<"
	// that never closes is ordinary text, not a tag, and is kept.
	var pending strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			if inTag {
				pending.WriteRune(r)
				continue
			}
			inTag = true
			pending.WriteRune(r)
		case r == '>' && inTag:
			inTag = false
			pending.Reset()
			b.WriteByte(' ')
		case inTag:
			pending.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	if inTag {
		b.WriteString(pending.String())
	}

	// Collapse whitespace runs left behind by stripped block tags
	text := strings.Join(strings.Fields(b.String()), " ")

	runes := []rune(text)
	if len(runes) > model.MaxExcerptLength {
		text = strings.TrimSpace(string(runes[:model.MaxExcerptLength]))
	}
	return text
}
