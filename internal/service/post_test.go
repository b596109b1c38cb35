package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"writehub/internal/model"
)

func TestPostService_Create_Success(t *testing.T) {
	postRepo := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			post.ID = 1
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewPostService(postRepo, &mockUserRepository{}, publisher)

	post, err := svc.Create(context.Background(), 10, model.CreatePostRequest{
		Title:   "My First Post",
		Content: "<p>Hello readers</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Slug is allocated at creation, even for a draft
	if post.Slug != "my-first-post" {
		t.Errorf("slug = %q, want %q", post.Slug, "my-first-post")
	}
	if post.Published {
		t.Error("post should default to draft")
	}
	if post.Excerpt != "Hello readers" {
		t.Errorf("excerpt = %q, want %q", post.Excerpt, "Hello readers")
	}
	if len(publisher.events) != 1 {
		t.Errorf("published %d events, want 1", len(publisher.events))
	}
}

func TestPostService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreatePostRequest
		wantErr error
	}{
		{
			name:    "missing title",
			req:     model.CreatePostRequest{Content: "body"},
			wantErr: model.ErrTitleRequired,
		},
		{
			name:    "whitespace title",
			req:     model.CreatePostRequest{Title: "   ", Content: "body"},
			wantErr: model.ErrTitleRequired,
		},
		{
			name:    "missing content",
			req:     model.CreatePostRequest{Title: "Title"},
			wantErr: model.ErrBodyRequired,
		},
		{
			name:    "title too long",
			req:     model.CreatePostRequest{Title: strings.Repeat("a", model.MaxTitleLength+1), Content: "body"},
			wantErr: model.ErrTitleTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := &mockPostRepository{}
			svc := NewPostService(postRepo, &mockUserRepository{}, nil)

			_, err := svc.Create(context.Background(), 10, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(postRepo.createCalls) != 0 {
				t.Error("Create should not reach the repository on validation failure")
			}
		})
	}
}

func TestPostService_Create_CustomExcerptWins(t *testing.T) {
	postRepo := &mockPostRepository{}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	excerpt := "Hand-written summary"
	post, err := svc.Create(context.Background(), 10, model.CreatePostRequest{
		Title:   "Title",
		Content: "<p>Something else entirely</p>",
		Excerpt: &excerpt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Excerpt != excerpt {
		t.Errorf("excerpt = %q, want caller's %q", post.Excerpt, excerpt)
	}
}

func TestPostService_Create_SlugCollisionSuffix(t *testing.T) {
	// "hello" is taken; the allocator should land on "hello-1"
	postRepo := &mockPostRepository{
		slugExistsFn: func(ctx context.Context, slug string, excludeID int64) (bool, error) {
			return slug == "hello", nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	post, err := svc.Create(context.Background(), 10, model.CreatePostRequest{
		Title:   "Hello",
		Content: "body",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Slug != "hello-1" {
		t.Errorf("slug = %q, want %q", post.Slug, "hello-1")
	}
}

func TestPostService_Create_InsertRaceRetries(t *testing.T) {
	// The probe said the slug was free, but a concurrent insert won the
	// race: the first insert hits the unique index, the retry succeeds
	// with the next suffix.
	attempts := 0
	postRepo := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			attempts++
			if attempts == 1 {
				return model.ErrSlugConflict
			}
			post.ID = 7
			return nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	post, err := svc.Create(context.Background(), 10, model.CreatePostRequest{
		Title:   "Hello",
		Content: "body",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Slug != "hello-1" {
		t.Errorf("slug after retry = %q, want %q", post.Slug, "hello-1")
	}
	if attempts != 2 {
		t.Errorf("insert attempts = %d, want 2", attempts)
	}
}

func TestPostService_Create_InsertRaceKeepsDigitTailedSlug(t *testing.T) {
	// The base slug legitimately ends in digits. A lost insert race must
	// append a suffix, not increment the trailing number into another
	// title's slug.
	attempts := 0
	postRepo := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			attempts++
			if attempts == 1 {
				return model.ErrSlugConflict
			}
			post.ID = 8
			return nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	post, err := svc.Create(context.Background(), 10, model.CreatePostRequest{
		Title:   "Top 10",
		Content: "body",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Slug != "top-10-1" {
		t.Errorf("slug after retry = %q, want %q", post.Slug, "top-10-1")
	}
}

func TestPostService_Update_EmptyExcerptRegenerates(t *testing.T) {
	stored := &model.Post{ID: 1, UserID: 10, Title: "T", Content: "old body", Excerpt: "custom excerpt", Slug: "t"}
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			copy := *stored
			return &copy, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	// New content plus an explicitly cleared excerpt: the stale custom
	// excerpt must not survive, the derived one takes over.
	newContent := "<p>fresh body</p>"
	empty := ""
	post, err := svc.Update(context.Background(), 1, 10, model.UpdatePostRequest{
		Content: &newContent,
		Excerpt: &empty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Excerpt != "fresh body" {
		t.Errorf("excerpt = %q, want derived %q", post.Excerpt, "fresh body")
	}

	// Clearing the excerpt without touching content re-derives from the
	// existing content.
	post, err = svc.Update(context.Background(), 1, 10, model.UpdatePostRequest{Excerpt: &empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Excerpt != "old body" {
		t.Errorf("excerpt = %q, want derived %q", post.Excerpt, "old body")
	}
}

func TestPostService_Update_OwnershipAndPublish(t *testing.T) {
	stored := &model.Post{ID: 1, UserID: 10, Title: "Old", Content: "old body", Slug: "old", Published: false}
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			copy := *stored
			return &copy, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	// Not the owner
	_, err := svc.Update(context.Background(), 1, 99, model.UpdatePostRequest{})
	if !errors.Is(err, model.ErrNotPostOwner) {
		t.Fatalf("error = %v, want %v", err, model.ErrNotPostOwner)
	}

	// Publish transition
	published := true
	post, err := svc.Update(context.Background(), 1, 10, model.UpdatePostRequest{Published: &published})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !post.Published {
		t.Error("post should be published")
	}
	// Slug must not change on publish
	if post.Slug != "old" {
		t.Errorf("slug = %q, want unchanged %q", post.Slug, "old")
	}
}

func TestPostService_Update_PublishIdempotent(t *testing.T) {
	stored := &model.Post{ID: 1, UserID: 10, Title: "T", Content: "b", Slug: "t", Published: true}
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			copy := *stored
			return &copy, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	published := true
	post, err := svc.Update(context.Background(), 1, 10, model.UpdatePostRequest{Published: &published})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !post.Published {
		t.Error("publishing an already-published post must stay published")
	}

	// published=false on a published post is ignored: there is no unpublish
	unpublished := false
	post, err = svc.Update(context.Background(), 1, 10, model.UpdatePostRequest{Published: &unpublished})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !post.Published {
		t.Error("published=false must not unpublish")
	}
}

func TestPostService_Update_TitleChangeReslugs(t *testing.T) {
	stored := &model.Post{ID: 1, UserID: 10, Title: "Old Title", Content: "b", Slug: "old-title"}
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			copy := *stored
			return &copy, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	newTitle := "New Title"
	post, err := svc.Update(context.Background(), 1, 10, model.UpdatePostRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Slug != "new-title" {
		t.Errorf("slug = %q, want %q", post.Slug, "new-title")
	}
}

func TestPostService_GetByID_DraftHidden(t *testing.T) {
	draft := &model.Post{ID: 1, UserID: 10, Title: "Draft", Published: false}
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			copy := *draft
			return &copy, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	// Anonymous viewer
	if _, err := svc.GetByID(context.Background(), 1, nil); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("anonymous viewer: error = %v, want %v", err, model.ErrPostNotFound)
	}

	// Different user
	other := int64(99)
	if _, err := svc.GetByID(context.Background(), 1, &other); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("other viewer: error = %v, want %v", err, model.ErrPostNotFound)
	}

	// The author sees their own draft
	owner := int64(10)
	if _, err := svc.GetByID(context.Background(), 1, &owner); err != nil {
		t.Errorf("owner viewer: unexpected error %v", err)
	}
}

func TestPostService_GetBySlug_CountsView(t *testing.T) {
	stored := &model.Post{ID: 1, UserID: 10, Slug: "hello", Published: true, ViewCount: 4}
	bumped := 0
	postRepo := &mockPostRepository{
		getBySlugFn: func(ctx context.Context, slug string) (*model.Post, error) {
			copy := *stored
			return &copy, nil
		},
		incrementViewsFn: func(ctx context.Context, postID int64) (int, error) {
			bumped++
			return stored.ViewCount + bumped, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	post, err := svc.GetBySlug(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bumped != 1 {
		t.Errorf("IncrementViews called %d times, want 1", bumped)
	}
	if post.ViewCount != 5 {
		t.Errorf("view count = %d, want 5", post.ViewCount)
	}
}

func TestPostService_Delete_PropagatesOwnership(t *testing.T) {
	postRepo := &mockPostRepository{
		softDeleteFn: func(ctx context.Context, postID, userID int64) error {
			return model.ErrNotPostOwner
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)

	if err := svc.Delete(context.Background(), 1, 99); !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotPostOwner)
	}
}

// Draft-to-published lifecycle: slug allocated at creation survives publish
// unchanged, and the published post shows up in listings.
func TestPostService_DraftLifecycle(t *testing.T) {
	var stored model.Post
	postRepo := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			post.ID = 1
			stored = *post
			return nil
		},
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			copy := stored
			return &copy, nil
		},
		updateFn: func(ctx context.Context, post *model.Post) error {
			stored = *post
			return nil
		},
		listFn: func(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error) {
			if filter.Published != nil && *filter.Published == stored.Published {
				return []model.Post{stored}, 1, nil
			}
			return nil, 0, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil)
	ctx := context.Background()

	draft, err := svc.Create(ctx, 10, model.CreatePostRequest{Title: "Launch Notes", Content: "soon"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	createdSlug := draft.Slug

	published := true
	post, err := svc.Update(ctx, draft.ID, 10, model.UpdatePostRequest{Published: &published})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if post.Slug != createdSlug {
		t.Errorf("slug changed on publish: %q -> %q", createdSlug, post.Slug)
	}

	list, err := svc.List(ctx, model.PostFilter{}, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("published post missing from listing, total = %d", list.Total)
	}
}
