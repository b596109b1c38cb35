package slug

import (
	"context"
	"errors"
	"testing"

	"writehub/internal/model"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"already lowercase", "hello world", "hello-world"},
		{"punctuation collapses", "Hello, World!", "hello-world"},
		{"run of separators", "Go -- & --- Redis", "go-redis"},
		{"leading and trailing junk", "  ...Hello...  ", "hello"},
		{"numbers kept", "Top 10 Tips for 2026", "top-10-tips-for-2026"},
		{"unicode stripped", "Caffè ☕ Culture", "caff-culture"},
		{"no alphanumerics", "!!! ???", ""},
		{"empty title", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.title); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

// fakeChecker reports a fixed set of taken slugs.
type fakeChecker struct {
	taken map[string]bool
	err   error
	calls []string
}

func (f *fakeChecker) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	f.calls = append(f.calls, slug)
	if f.err != nil {
		return false, f.err
	}
	return f.taken[slug], nil
}

func TestAllocator_Allocate(t *testing.T) {
	tests := []struct {
		name  string
		title string
		taken map[string]bool
		want  string
	}{
		{
			name:  "no collision",
			title: "Hello World",
			taken: map[string]bool{},
			want:  "hello-world",
		},
		{
			name:  "first collision gets -1",
			title: "Hello World",
			taken: map[string]bool{"hello-world": true},
			want:  "hello-world-1",
		},
		{
			name:  "sequence continues",
			title: "Hello World",
			taken: map[string]bool{"hello-world": true, "hello-world-1": true, "hello-world-2": true},
			want:  "hello-world-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(&fakeChecker{taken: tt.taken})
			got, err := a.Allocate(context.Background(), tt.title, 0, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allocate(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestAllocator_Allocate_EmptyFallback(t *testing.T) {
	a := NewAllocator(&fakeChecker{taken: map[string]bool{}})

	got, err := a.Allocate(context.Background(), "!!!", 42, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "post-42" {
		t.Errorf("Allocate = %q, want %q", got, "post-42")
	}
}

func TestAllocator_Allocate_Bounded(t *testing.T) {
	// Every candidate is taken: the allocator must give up with a conflict
	// error instead of probing forever.
	allTaken := &alwaysTaken{}

	a := NewAllocator(allTaken)
	_, err := a.Allocate(context.Background(), "Hello", 0, 0)
	if !errors.Is(err, model.ErrSlugConflict) {
		t.Fatalf("error = %v, want %v", err, model.ErrSlugConflict)
	}
	if allTaken.calls != model.SlugMaxAttempts {
		t.Errorf("probe count = %d, want %d", allTaken.calls, model.SlugMaxAttempts)
	}
}

type alwaysTaken struct {
	calls int
}

func (a *alwaysTaken) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	a.calls++
	return true, nil
}

func TestAllocator_Allocate_CheckerError(t *testing.T) {
	dbErr := errors.New("connection refused")
	a := NewAllocator(&fakeChecker{err: dbErr})

	_, err := a.Allocate(context.Background(), "Hello", 0, 0)
	if !errors.Is(err, dbErr) {
		t.Errorf("error should wrap checker error, got %v", err)
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		base    string
		attempt int
		want    string
	}{
		{"hello-world", 1, "hello-world-1"},
		{"hello-world", 2, "hello-world-2"},
		{"hello-world", 10, "hello-world-10"},
		{"post-42", 1, "post-42-1"},
		{"hello", 1, "hello-1"},
		// A base that ends in digits keeps its identity: the suffix is
		// appended, the trailing number is never incremented in place.
		{"top-10", 1, "top-10-1"},
		{"top-10", 2, "top-10-2"},
	}

	for _, tt := range tests {
		if got := Next(tt.base, tt.attempt); got != tt.want {
			t.Errorf("Next(%q, %d) = %q, want %q", tt.base, tt.attempt, got, tt.want)
		}
	}
}
