package sync

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	stdsync "sync"
	"time"

	"writehub/internal/model"
	"writehub/internal/notify"
)

// DefaultPollInterval is how often the drafts cache is refreshed in the
// background while polling is running.
const DefaultPollInterval = 5 * time.Second

// Store keeps client-side caches of posts, drafts, comments and social
// state. Reads hit the cache when fresh; writes invalidate what they
// touched so the next read refetches. Optimistic toggles flip local state
// immediately, roll back on failure, and reconcile with the server's
// authoritative counts on success.
type Store struct {
	client *Client

	mu stdsync.Mutex
	// posts by id, shared by feed and detail views
	posts map[int64]*model.Post
	// slug -> post id, so slug lookups reuse the id cache
	slugIndex map[string]int64

	drafts      []model.Post
	draftsFresh bool

	comments      map[int64][]model.Comment
	commentsFresh map[int64]bool

	follows map[int64]model.FollowResult

	pollWG     stdsync.WaitGroup
	pollCancel context.CancelFunc
}

func NewStore(client *Client) *Store {
	return &Store{
		client:        client,
		posts:         make(map[int64]*model.Post),
		slugIndex:     make(map[string]int64),
		comments:      make(map[int64][]model.Comment),
		commentsFresh: make(map[int64]bool),
		follows:       make(map[int64]model.FollowResult),
	}
}

// Post returns the cached post, fetching it when absent. Malformed ids
// short-circuit without a request.
func (s *Store) Post(ctx context.Context, postID int64) (*model.Post, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	if post, ok := s.posts[postID]; ok {
		s.mu.Unlock()
		return post, nil
	}
	s.mu.Unlock()

	post, err := s.client.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cachePostLocked(post)
	s.mu.Unlock()
	return post, nil
}

// PostBySlug resolves a slug through the cache, falling back to the API.
func (s *Store) PostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	s.mu.Lock()
	if id, ok := s.slugIndex[slug]; ok {
		if post, ok := s.posts[id]; ok {
			s.mu.Unlock()
			return post, nil
		}
	}
	s.mu.Unlock()

	post, err := s.client.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cachePostLocked(post)
	s.mu.Unlock()
	return post, nil
}

// Drafts returns the drafts cache, refreshing it when stale.
func (s *Store) Drafts(ctx context.Context) ([]model.Post, error) {
	s.mu.Lock()
	if s.draftsFresh {
		drafts := s.drafts
		s.mu.Unlock()
		return drafts, nil
	}
	s.mu.Unlock()

	return s.refreshDrafts(ctx)
}

func (s *Store) refreshDrafts(ctx context.Context) ([]model.Post, error) {
	list, err := s.client.ListDrafts(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.drafts = list.Posts
	s.draftsFresh = true
	s.mu.Unlock()
	return list.Posts, nil
}

// Comments returns the flat comment cache for a post, refreshing when stale.
func (s *Store) Comments(ctx context.Context, postID int64) ([]model.Comment, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	if s.commentsFresh[postID] {
		comments := s.comments[postID]
		s.mu.Unlock()
		return comments, nil
	}
	s.mu.Unlock()

	comments, err := s.client.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.comments[postID] = comments
	s.commentsFresh[postID] = true
	s.mu.Unlock()
	return comments, nil
}

// CommentTree returns the post's comments assembled into a reply tree.
func (s *Store) CommentTree(ctx context.Context, postID int64) ([]*CommentNode, error) {
	comments, err := s.Comments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}

// CreatePost writes through and invalidates the drafts cache; the created
// post lands in the id cache directly.
func (s *Store) CreatePost(ctx context.Context, req model.CreatePostRequest) (*model.Post, error) {
	post, err := s.client.CreatePost(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cachePostLocked(post)
	s.draftsFresh = false
	s.mu.Unlock()
	return post, nil
}

// UpdatePost writes through and replaces the cached copy. Edits can change
// the slug, so the stale slug entry is dropped.
func (s *Store) UpdatePost(ctx context.Context, postID int64, req model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.client.UpdatePost(ctx, postID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if old, ok := s.posts[postID]; ok && old.Slug != post.Slug {
		delete(s.slugIndex, old.Slug)
	}
	s.cachePostLocked(post)
	s.draftsFresh = false
	s.mu.Unlock()
	return post, nil
}

// DeletePost writes through and evicts every cache the post appeared in.
func (s *Store) DeletePost(ctx context.Context, postID int64) error {
	if err := s.client.DeletePost(ctx, postID); err != nil {
		return err
	}

	s.mu.Lock()
	s.evictPostLocked(postID)
	s.draftsFresh = false
	s.mu.Unlock()
	return nil
}

// CreateComment writes through and invalidates the post's comment cache so
// the next read picks up server-assigned fields.
func (s *Store) CreateComment(ctx context.Context, postID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	comment, err := s.client.CreateComment(ctx, postID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.commentsFresh[postID] = false
	s.mu.Unlock()
	return comment, nil
}

// DeleteComment writes through and invalidates the post's comment cache.
// Replies of the deleted comment stay on the server; the rebuilt tree
// surfaces them at the top level.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID int64) error {
	if err := s.client.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.mu.Lock()
	s.commentsFresh[postID] = false
	s.mu.Unlock()
	return nil
}

// TogglePostLike flips the like optimistically, then reconciles with the
// server's result. On request failure the snapshot is restored, so the UI
// never sticks in a state the server doesn't have.
func (s *Store) TogglePostLike(ctx context.Context, postID int64) (*model.LikeResult, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}

	// Optimistic flip, remembering the previous state for rollback
	s.mu.Lock()
	post, cached := s.posts[postID]
	var prevLiked bool
	var prevCount int
	if cached {
		prevLiked, prevCount = post.IsLiked, post.LikeCount
		post.IsLiked = !post.IsLiked
		if post.IsLiked {
			post.LikeCount++
		} else {
			post.LikeCount--
		}
	}
	s.mu.Unlock()

	result, err := s.client.TogglePostLike(ctx, postID)
	if err != nil {
		// Roll back the optimistic flip. Only a post we actually flipped is
		// restored; a post cached by a concurrent fetch carries fresh server
		// state and must not be clobbered with the zero-valued snapshot.
		s.mu.Lock()
		if post, ok := s.posts[postID]; ok && cached {
			post.IsLiked = prevLiked
			post.LikeCount = prevCount
		}
		s.mu.Unlock()
		return nil, err
	}

	// Reconcile: the server's count wins over the local guess
	s.mu.Lock()
	if post, ok := s.posts[postID]; ok {
		post.IsLiked = result.Liked
		post.LikeCount = result.Count
	}
	s.mu.Unlock()
	return result, nil
}

// ToggleFollow flips the follow edge optimistically against the cached
// counts, then reconciles with the server's derived counts.
func (s *Store) ToggleFollow(ctx context.Context, userID int64) (*model.FollowResult, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	prev, cached := s.follows[userID]
	if cached {
		next := prev
		next.Following = !prev.Following
		if next.Following {
			next.FollowersCount++
		} else {
			next.FollowersCount--
		}
		s.follows[userID] = next
	}
	s.mu.Unlock()

	result, err := s.client.ToggleFollow(ctx, userID)
	if err != nil {
		s.mu.Lock()
		if cached {
			s.follows[userID] = prev
		}
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.follows[userID] = *result
	s.mu.Unlock()
	return result, nil
}

// FollowState returns the cached edge, fetching it when absent.
func (s *Store) FollowState(ctx context.Context, userID int64) (*model.FollowResult, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	if result, ok := s.follows[userID]; ok {
		s.mu.Unlock()
		return &result, nil
	}
	s.mu.Unlock()

	result, err := s.client.FollowStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.follows[userID] = *result
	s.mu.Unlock()
	return result, nil
}

// UploadImage uploads through the API, falling back to an inline data URL
// when the upload endpoint is unavailable. The post still saves either way;
// the image is just heavier.
func (s *Store) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	result, err := s.client.UploadImage(ctx, filename, data)
	if err == nil {
		return result.URL, nil
	}

	log.Printf("[SyncStore] Upload failed, inlining image: %v", err)
	if !model.IsAllowedImageType(contentType) {
		return "", model.ErrInvalidImageType
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

// StartDraftsPolling refreshes the drafts cache every interval until Stop
// is called. Poll failures keep the previous cache and retry next tick.
func (s *Store) StartDraftsPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.pollCancel != nil {
		s.mu.Unlock()
		cancel()
		return // already polling
	}
	s.pollCancel = cancel
	s.mu.Unlock()

	s.pollWG.Add(1)
	go func() {
		defer s.pollWG.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Printf("[SyncStore] Drafts polling started (every %s)", interval)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[SyncStore] Drafts polling stopped")
				return
			case <-ticker.C:
				if _, err := s.refreshDrafts(ctx); err != nil {
					log.Printf("[SyncStore] Drafts poll failed: %v", err)
				}
			}
		}
	}()
}

// StopPolling cancels the polling goroutine and waits for it to exit.
func (s *Store) StopPolling() {
	s.mu.Lock()
	cancel := s.pollCancel
	s.pollCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.pollWG.Wait()
	}
}

// ApplyEvent invalidates the caches a change event touches. Driven by the
// stream listener; polling remains the fallback when no listener runs.
func (s *Store) ApplyEvent(event notify.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Type {
	case notify.EventPostChanged:
		s.evictPostLocked(event.PostID)
		s.draftsFresh = false
	case notify.EventCommentChanged:
		s.commentsFresh[event.PostID] = false
	case notify.EventFollowChanged:
		delete(s.follows, event.FolloweeID)
	}
}

// cachePostLocked stores a post under both its id and slug. Caller holds mu.
func (s *Store) cachePostLocked(post *model.Post) {
	s.posts[post.ID] = post
	if post.Slug != "" {
		s.slugIndex[post.Slug] = post.ID
	}
}

// evictPostLocked drops a post and its slug entry. Caller holds mu.
func (s *Store) evictPostLocked(postID int64) {
	if post, ok := s.posts[postID]; ok {
		delete(s.slugIndex, post.Slug)
		delete(s.posts, postID)
	}
	delete(s.comments, postID)
	delete(s.commentsFresh, postID)
}
