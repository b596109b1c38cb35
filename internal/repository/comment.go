package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"writehub/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment. Parent validation (same-post check) happens
// in the service; parent_comment_id carries no FK so deleting a parent later
// leaves replies in place.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.PostID, c.UserID, c.Content, c.ParentCommentID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetByID retrieves a single comment.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, post_id, user_id, content, parent_comment_id, created_at, updated_at,
		       (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = comments.id) AS like_count
		FROM comments
		WHERE id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// Delete hard-deletes a comment. Replies are deliberately not cascaded; they
// keep their dangling parent id and still display. Only the owner can delete.
func (r *commentRepository) Delete(ctx context.Context, commentID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID)
		if exists {
			return model.ErrNotCommentOwner
		}
		return model.ErrCommentNotFound
	}
	return nil
}

// ListByPost returns all comments for a post in creation order with their
// authors joined in. The list is flat; thread assembly is client-side.
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.parent_comment_id,
		       c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS like_count,
		       u.id AS "author.id", u.name AS "author.name",
		       u.email AS "author.email", u.avatar_url AS "author.avatar_url"
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`

	type commentRow struct {
		ID              int64     `db:"id"`
		PostID          int64     `db:"post_id"`
		UserID          int64     `db:"user_id"`
		Content         string    `db:"content"`
		ParentCommentID *int64    `db:"parent_comment_id"`
		CreatedAt       time.Time `db:"created_at"`
		UpdatedAt       time.Time `db:"updated_at"`
		LikeCount       int       `db:"like_count"`
		AuthorID        int64     `db:"author.id"`
		AuthorName      string    `db:"author.name"`
		AuthorEmail     string    `db:"author.email"`
		AuthorAvatar    *string   `db:"author.avatar_url"`
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = model.Comment{
			ID:              row.ID,
			PostID:          row.PostID,
			UserID:          row.UserID,
			Content:         row.Content,
			ParentCommentID: row.ParentCommentID,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
			LikeCount:       row.LikeCount,
			Author: &model.UserSummary{
				ID:        row.AuthorID,
				Name:      row.AuthorName,
				Email:     row.AuthorEmail,
				AvatarURL: row.AuthorAvatar,
			},
		}
	}

	return comments, nil
}

// Like adds the user to the comment's like set; idempotent.
func (r *commentRepository) Like(ctx context.Context, commentID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO comment_likes (comment_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (comment_id, user_id) DO NOTHING
	`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("insert comment like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Unlike removes the user from the comment's like set; a no-op when absent.
func (r *commentRepository) Unlike(ctx context.Context, commentID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("delete comment like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *commentRepository) IsLiked(ctx context.Context, commentID, userID int64) (bool, error) {
	var liked bool
	err := r.db.GetContext(ctx, &liked, `SELECT EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = $1 AND user_id = $2)`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("check comment like: %w", err)
	}
	return liked, nil
}

func (r *commentRepository) LikeCount(ctx context.Context, commentID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, commentID)
	if err != nil {
		return 0, fmt.Errorf("count comment likes: %w", err)
	}
	return count, nil
}

// CheckLikes batch-checks which comments the user has liked.
func (r *commentRepository) CheckLikes(ctx context.Context, userID int64, commentIDs []int64) (map[int64]bool, error) {
	if len(commentIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT comment_id FROM comment_likes WHERE user_id = $1 AND comment_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(commentIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check comment likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range commentIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}
