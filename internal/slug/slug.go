// Package slug derives URL-safe identifiers from post titles and guarantees
// uniqueness against the store with a bounded suffix-probing loop.
package slug

import (
	"context"
	"fmt"
	"strings"

	"writehub/internal/model"
)

// Checker reports whether a slug is already taken by a non-deleted post.
// excludeID skips the post being re-slugged on edit (0 = exclude nothing).
type Checker interface {
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// Make derives a slug candidate: lowercase, runs of non-alphanumeric
// characters collapsed to "-", leading/trailing "-" trimmed. May be empty
// for titles with no alphanumeric content.
func Make(title string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash && b.Len() > 0 {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Allocator resolves slug collisions against a Checker.
type Allocator struct {
	checker     Checker
	maxAttempts int
}

func NewAllocator(checker Checker) *Allocator {
	return &Allocator{checker: checker, maxAttempts: model.SlugMaxAttempts}
}

// Allocate returns a unique slug for the title. An empty candidate falls back
// to "post-<fallbackID>". Collisions append -1, -2, ... up to the attempt
// bound, past which ErrSlugConflict is returned rather than probing forever.
//
// The store's partial unique index remains the backstop for the window
// between the probe and the insert: callers treat a unique violation on
// insert as "retry with the next suffix", not as a fatal error.
func (a *Allocator) Allocate(ctx context.Context, title string, fallbackID, excludeID int64) (string, error) {
	base := Make(title)
	if base == "" {
		base = fmt.Sprintf("post-%d", fallbackID)
	}

	candidate := base
	for n := 1; n <= a.maxAttempts; n++ {
		taken, err := a.checker.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}

	return "", model.ErrSlugConflict
}

// Next returns the attempt-th follow-up candidate for a base slug after a
// store-level unique violation: "hello-world" -> "hello-world-1",
// "hello-world-2", ... The suffix is appended to the base, never parsed out
// of it, so a slug that legitimately ends in digits ("top-10") keeps its
// identity instead of drifting onto another title's slug.
func Next(base string, attempt int) string {
	return fmt.Sprintf("%s-%d", base, attempt)
}
