package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"writehub/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the directed edge. ON CONFLICT DO NOTHING keeps the
// operation idempotent: a retried follow cannot create a duplicate edge, and
// no second document needs updating because counts are derived.
func (r *followRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Delete removes the edge; a no-op when it does not exist.
func (r *followRepository) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// FollowerCount is a reverse query over follows, the single source of truth.
func (r *followRepository) FollowerCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE followee_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *followRepository) FollowingCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}

// GetFollowers retrieves users who follow the specified user, newest first,
// with page/limit pagination and a total for the pager.
func (r *followRepository) GetFollowers(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error) {
	total, err := r.FollowerCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT u.id, u.name, u.email, u.avatar_url
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var users []model.UserSummary
	err = r.db.SelectContext(ctx, &users, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get followers: %w", err)
	}

	return users, total, nil
}

// GetFollowing retrieves users that the specified user follows.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error) {
	total, err := r.FollowingCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT u.id, u.name, u.email, u.avatar_url
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var users []model.UserSummary
	err = r.db.SelectContext(ctx, &users, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get following: %w", err)
	}

	return users, total, nil
}

// CheckFollows batch-checks which of the given users the follower follows
// (single ANY($2) query, not N+1).
func (r *followRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if len(followeeIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT followee_id FROM follows WHERE follower_id = $1 AND followee_id = ANY($2)`
	var followedIDs []int64
	err := r.db.SelectContext(ctx, &followedIDs, query, followerID, pq.Array(followeeIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range followeeIDs {
		result[id] = false
	}
	for _, id := range followedIDs {
		result[id] = true
	}

	return result, nil
}
