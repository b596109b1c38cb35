package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"writehub/internal/model"
	"writehub/internal/notify"
	"writehub/internal/repository"
	"writehub/internal/slug"
)

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	slugs     *slug.Allocator
	publisher notify.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	publisher notify.Publisher,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		slugs:     slug.NewAllocator(postRepo),
		publisher: publisher,
	}
}

// Create creates a new post. The slug is allocated now, at draft creation,
// so it never changes on publish; the excerpt is derived from content unless
// the author supplied one.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, model.ErrTitleRequired
	}
	if len([]rune(title)) > model.MaxTitleLength {
		return nil, model.ErrTitleTooLong
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.ErrBodyRequired
	}

	excerpt := DeriveExcerpt(req.Content)
	if req.Excerpt != nil && strings.TrimSpace(*req.Excerpt) != "" {
		excerpt = strings.TrimSpace(*req.Excerpt)
	}

	allocated, err := s.slugs.Allocate(ctx, title, 0, 0)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:    userID,
		Title:     title,
		Content:   req.Content,
		Excerpt:   excerpt,
		Tags:      normalizeTags(req.Tags),
		Published: req.Published,
		Slug:      allocated,
		ImageURL:  req.ImageURL,
	}

	if err := s.createWithSlugRetry(ctx, post); err != nil {
		return nil, err
	}

	s.publishChange(ctx, notify.NewPostChangedEvent(post.ID))

	// Fetch author info
	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		post.Author = summarize(author)
	}

	return post, nil
}

// createWithSlugRetry inserts the post, treating a unique violation on slug
// as a lost race with a concurrent insert: append the next suffix to the
// allocated slug and try again, up to the same bound the allocator uses.
func (s *PostService) createWithSlugRetry(ctx context.Context, post *model.Post) error {
	base := post.Slug
	for n := 0; n < model.SlugMaxAttempts; n++ {
		err := s.postRepo.Create(ctx, post)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrSlugConflict) {
			return fmt.Errorf("create post: %w", err)
		}
		post.Slug = slug.Next(base, n+1)
	}
	return model.ErrSlugConflict
}

// GetByID retrieves a single post. Drafts are visible only to their author.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.Published && (viewerID == nil || *viewerID != post.UserID) {
		return nil, model.ErrPostNotFound
	}

	s.attachViewer(ctx, post, viewerID)
	return post, nil
}

// GetBySlug retrieves a published post by its slug and records the view.
// The counter bump is atomic in the store, so concurrent readers never
// lose increments.
func (s *PostService) GetBySlug(ctx context.Context, slugVal string, viewerID *int64) (*model.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slugVal)
	if err != nil {
		return nil, err
	}
	if !post.Published && (viewerID == nil || *viewerID != post.UserID) {
		return nil, model.ErrPostNotFound
	}

	if post.Published {
		views, err := s.postRepo.IncrementViews(ctx, post.ID)
		if err != nil {
			log.Printf("[PostService] Failed to count view: post=%d err=%v", post.ID, err)
		} else {
			post.ViewCount = views
		}
	}

	s.attachViewer(ctx, post, viewerID)
	return post, nil
}

// Update applies a partial patch to an owned post. A changed title re-slugs
// the post; setting published=true on a draft is the publish transition and
// is idempotent on an already-published post. There is no unpublish.
func (s *PostService) Update(ctx context.Context, postID, userID int64, req model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, model.ErrNotPostOwner
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, model.ErrTitleRequired
		}
		if len([]rune(title)) > model.MaxTitleLength {
			return nil, model.ErrTitleTooLong
		}
		if title != post.Title {
			allocated, err := s.slugs.Allocate(ctx, title, post.ID, post.ID)
			if err != nil {
				return nil, err
			}
			post.Slug = allocated
		}
		post.Title = title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, model.ErrBodyRequired
		}
		post.Content = *req.Content
	}
	if req.Excerpt != nil && strings.TrimSpace(*req.Excerpt) != "" {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
	} else if req.Content != nil || req.Excerpt != nil {
		// New content without a usable custom excerpt, or an excerpt
		// explicitly cleared: fall back to the derived one
		post.Excerpt = DeriveExcerpt(post.Content)
	}
	if req.Tags != nil {
		post.Tags = normalizeTags(req.Tags)
	}
	if req.ImageURL != nil {
		post.ImageURL = req.ImageURL
	}
	if req.Published != nil && *req.Published {
		post.Published = true
	}

	if err := s.updateWithSlugRetry(ctx, post); err != nil {
		return nil, err
	}

	s.publishChange(ctx, notify.NewPostChangedEvent(post.ID))

	author, err := s.userRepo.GetByID(ctx, post.UserID)
	if err == nil {
		post.Author = summarize(author)
	}

	return post, nil
}

func (s *PostService) updateWithSlugRetry(ctx context.Context, post *model.Post) error {
	base := post.Slug
	for n := 0; n < model.SlugMaxAttempts; n++ {
		err := s.postRepo.Update(ctx, post)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrSlugConflict) {
			return fmt.Errorf("update post: %w", err)
		}
		post.Slug = slug.Next(base, n+1)
	}
	return model.ErrSlugConflict
}

// Delete soft-deletes an owned post. The row stays behind with deleted_at
// set; the slug is freed for reuse by the partial unique index.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	if err := s.postRepo.SoftDelete(ctx, postID, userID); err != nil {
		return err
	}

	s.publishChange(ctx, notify.NewPostChangedEvent(postID))

	log.Printf("[PostService] User %d deleted post %d", userID, postID)
	return nil
}

// List returns a page of published posts, optionally narrowed by tag or author.
func (s *PostService) List(ctx context.Context, filter model.PostFilter, viewerID *int64) (*model.PostListResponse, error) {
	normalizePage(&filter)

	if filter.Published == nil {
		published := true
		filter.Published = &published
	}

	posts, total, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	s.attachViewerBatch(ctx, posts, viewerID)
	return paginate(posts, total, filter.Page, filter.Limit), nil
}

// ListDrafts returns the caller's own drafts. Nobody else can see them.
func (s *PostService) ListDrafts(ctx context.Context, userID int64, page, limit int) (*model.PostListResponse, error) {
	published := false
	filter := model.PostFilter{
		AuthorID:  userID,
		Published: &published,
		Page:      page,
		Limit:     limit,
	}
	normalizePage(&filter)

	posts, total, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	return paginate(posts, total, filter.Page, filter.Limit), nil
}

// ListFeed returns published posts authored by users the caller follows.
func (s *PostService) ListFeed(ctx context.Context, userID int64, page, limit int) (*model.PostListResponse, error) {
	published := true
	filter := model.PostFilter{
		FollowedBy: userID,
		Published:  &published,
		Page:       page,
		Limit:      limit,
	}
	normalizePage(&filter)

	posts, total, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}

	s.attachViewerBatch(ctx, posts, &userID)
	return paginate(posts, total, filter.Page, filter.Limit), nil
}

// Search matches published posts against title, content, excerpt and tags.
func (s *PostService) Search(ctx context.Context, query string, page, limit int, viewerID *int64) (*model.PostListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &model.PostListResponse{Posts: []model.Post{}, Page: 1, Limit: 10}, nil
	}

	filter := model.PostFilter{Page: page, Limit: limit}
	normalizePage(&filter)

	posts, total, err := s.postRepo.Search(ctx, query, filter.Page, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	s.attachViewerBatch(ctx, posts, viewerID)
	return paginate(posts, total, filter.Page, filter.Limit), nil
}

func (s *PostService) attachViewer(ctx context.Context, post *model.Post, viewerID *int64) {
	author, err := s.userRepo.GetByID(ctx, post.UserID)
	if err == nil {
		post.Author = summarize(author)
	}

	if viewerID != nil {
		likeStatus, err := s.postRepo.CheckLikes(ctx, *viewerID, []int64{post.ID})
		if err != nil {
			log.Printf("[PostService] Failed to check like status: %v", err)
		} else {
			post.IsLiked = likeStatus[post.ID]
		}
	}
}

func (s *PostService) attachViewerBatch(ctx context.Context, posts []model.Post, viewerID *int64) {
	if viewerID == nil || len(posts) == 0 {
		return
	}
	ids := make([]int64, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	likeStatus, err := s.postRepo.CheckLikes(ctx, *viewerID, ids)
	if err != nil {
		log.Printf("[PostService] Failed to batch check likes: %v", err)
		return
	}
	for i := range posts {
		posts[i].IsLiked = likeStatus[posts[i].ID]
	}
}

func (s *PostService) publishChange(ctx context.Context, event notify.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	// Best-effort: the write is committed, listeners fall back to polling
	if _, err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[PostService] Failed to publish change event: %v", err)
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func normalizePage(filter *model.PostFilter) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 50 {
		filter.Limit = 50
	}
}

func paginate(posts []model.Post, total, page, limit int) *model.PostListResponse {
	if posts == nil {
		posts = []model.Post{}
	}
	totalPages := (total + limit - 1) / limit
	return &model.PostListResponse{
		Posts:      posts,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

func summarize(user *model.User) *model.UserSummary {
	return &model.UserSummary{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
}
