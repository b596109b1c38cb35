package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"writehub/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postColumns is the shared select list. like_count is derived from the
// post_likes set; no counter column exists to fall out of sync.
const postColumns = `
	p.id, p.user_id, p.title, p.content, p.excerpt, p.tags, p.published,
	p.slug, p.image_url, p.view_count, p.created_at, p.updated_at, p.deleted_at,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count
`

// Create inserts a new post. A unique violation on the slug index is
// surfaced as ErrSlugConflict so the caller can retry with the next suffix.
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (user_id, title, content, excerpt, tags, published, slug, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, view_count, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		p.UserID, p.Title, p.Content, p.Excerpt, p.Tags, p.Published, p.Slug, p.ImageURL)

	err := row.Scan(&p.ID, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrSlugConflict
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a single non-deleted post.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p WHERE p.id = $1 AND p.deleted_at IS NULL`, postColumns)

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// GetBySlug retrieves a non-deleted post by its slug.
func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p WHERE p.slug = $1 AND p.deleted_at IS NULL`, postColumns)

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, slug)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return &post, nil
}

// Update writes the mutable fields back. Slug unique violations surface as
// ErrSlugConflict for the caller's retry loop.
func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, excerpt = $3, tags = $4, published = $5,
		    slug = $6, image_url = $7, updated_at = NOW()
		WHERE id = $8 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.Title, p.Content, p.Excerpt, p.Tags, p.Published, p.Slug, p.ImageURL, p.ID).
		Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.ErrPostNotFound
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrSlugConflict
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// SoftDelete marks a post deleted and unpublished. Only the owner may delete.
func (r *postRepository) SoftDelete(ctx context.Context, postID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = NOW(), published = FALSE
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish missing post from wrong owner
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`, postID)
		if exists {
			return model.ErrNotPostOwner
		}
		return model.ErrPostNotFound
	}
	return nil
}

// List returns filtered posts, newest first, with skip/limit pagination and
// a total count for the pager. Deleted posts are always excluded.
func (r *postRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error) {
	where := []string{"p.deleted_at IS NULL"}
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Published != nil {
		where = append(where, "p.published = "+arg(*filter.Published))
	}
	if filter.Tag != "" {
		where = append(where, arg(filter.Tag)+" = ANY(p.tags)")
	}
	if filter.AuthorID != 0 {
		where = append(where, "p.user_id = "+arg(filter.AuthorID))
	}
	if filter.Slug != "" {
		where = append(where, "p.slug = "+arg(filter.Slug))
	}
	if filter.FollowedBy != 0 {
		where = append(where, "p.user_id IN (SELECT followee_id FROM follows WHERE follower_id = "+arg(filter.FollowedBy)+")")
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM posts p WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s FROM posts p
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT %s OFFSET %s
	`, postColumns, whereClause, arg(filter.Limit), arg(offset))

	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	return posts, total, nil
}

// Search matches published posts by text across title, content, excerpt and
// tags.
func (r *postRepository) Search(ctx context.Context, query string, page, limit int) ([]model.Post, int, error) {
	pattern := "%" + query + "%"
	where := `
		p.deleted_at IS NULL AND p.published = TRUE
		AND (p.title ILIKE $1 OR p.content ILIKE $1 OR p.excerpt ILIKE $1
		     OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE $1))
	`

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM posts p WHERE "+where, pattern); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	sqlQuery := fmt.Sprintf(`
		SELECT %s FROM posts p
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`, postColumns, where)

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, sqlQuery, pattern, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("search posts: %w", err)
	}

	return posts, total, nil
}

// Exists checks if a post exists and is not deleted.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE user_id = $1 AND deleted_at IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("count posts by author: %w", err)
	}
	return count, nil
}

// SlugExists probes the slug namespace of non-deleted posts. excludeID skips
// the post being re-slugged on edit.
func (r *postRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id <> $2 AND deleted_at IS NULL)
	`, slug, excludeID)
	if err != nil {
		return false, fmt.Errorf("check slug exists: %w", err)
	}
	return exists, nil
}

// IncrementViews bumps the counter in a single atomic UPDATE. Concurrent
// increments never lose updates.
func (r *postRepository) IncrementViews(ctx context.Context, postID int64) (int, error) {
	var views int
	err := r.db.QueryRowxContext(ctx, `
		UPDATE posts SET view_count = view_count + 1
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING view_count
	`, postID).Scan(&views)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// Like adds the user to the post's like set. ON CONFLICT DO NOTHING makes the
// operation idempotent and commutative: a retried request cannot double-like.
func (r *postRepository) Like(ctx context.Context, postID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Unlike removes the user from the post's like set; a no-op when absent.
func (r *postRepository) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *postRepository) IsLiked(ctx context.Context, postID, userID int64) (bool, error) {
	var liked bool
	err := r.db.GetContext(ctx, &liked, `SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return liked, nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// CheckLikes batch-checks which posts the user has liked (single query, not N+1).
func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}
