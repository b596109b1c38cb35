package service

import (
	"strings"
	"testing"

	"writehub/internal/model"
)

func TestDeriveExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain text passes through",
			content: "Just a short post.",
			want:    "Just a short post.",
		},
		{
			name:    "tags stripped",
			content: "<p>Hello <strong>world</strong></p>",
			want:    "Hello world",
		},
		{
			name:    "block tags become single spaces",
			content: "<h1>Title</h1><p>First.</p><p>Second.</p>",
			want:    "Title First. Second.",
		},
		{
			name:    "whitespace collapsed",
			content: "<p>a</p>\n\n  <p>b</p>",
			want:    "a b",
		},
		{
			name:    "empty content",
			content: "",
			want:    "",
		},
		{
			name:    "unclosed angle bracket is text",
			content: "a < b",
			want:    "a < b",
		},
		{
			name:    "unclosed trailing bracket kept",
			content: "<p>Read more</p> at x <",
			want:    "Read more at x <",
		},
		{
			name:    "bare greater-than is text",
			content: "a > b",
			want:    "a > b",
		},
		{
			name:    "only markup",
			content: "<div><br/></div>",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveExcerpt(tt.content); got != tt.want {
				t.Errorf("DeriveExcerpt(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestDeriveExcerpt_Truncates(t *testing.T) {
	content := "<p>" + strings.Repeat("a", 500) + "</p>"

	got := DeriveExcerpt(content)
	if len([]rune(got)) > model.MaxExcerptLength {
		t.Errorf("excerpt length = %d, want <= %d", len([]rune(got)), model.MaxExcerptLength)
	}
}

func TestDeriveExcerpt_Deterministic(t *testing.T) {
	// Re-deriving from the same content must be a no-op, otherwise every
	// edit that doesn't touch content would still rewrite the excerpt.
	content := "<p>Same content, <em>every</em> time.</p>"

	first := DeriveExcerpt(content)
	second := DeriveExcerpt(content)
	if first != second {
		t.Errorf("DeriveExcerpt not deterministic: %q != %q", first, second)
	}
}
