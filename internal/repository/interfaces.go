package repository

import (
	"context"

	"writehub/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	SoftDelete(ctx context.Context, postID, userID int64) error
	List(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error)
	Search(ctx context.Context, query string, page, limit int) ([]model.Post, int, error)
	Exists(ctx context.Context, postID int64) (bool, error)
	CountByAuthor(ctx context.Context, userID int64) (int, error)

	// SlugExists reports whether a non-deleted post other than excludeID
	// holds the slug (excludeID 0 excludes nothing).
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)

	// IncrementViews atomically bumps the view counter and returns the new
	// value. Safe under concurrent readers; never read-modify-write.
	IncrementViews(ctx context.Context, postID int64) (int, error)

	// Like/Unlike are idempotent set operations keyed by user id; the bool
	// reports whether membership actually changed.
	Like(ctx context.Context, postID, userID int64) (bool, error)
	Unlike(ctx context.Context, postID, userID int64) (bool, error)
	IsLiked(ctx context.Context, postID, userID int64) (bool, error)
	LikeCount(ctx context.Context, postID int64) (int, error)
	// CheckLikes batch-checks which posts the user has liked.
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	Delete(ctx context.Context, commentID, userID int64) error
	// ListByPost returns the flat comment list ordered by creation time
	// ascending, with author summaries joined in.
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)

	Like(ctx context.Context, commentID, userID int64) (bool, error)
	Unlike(ctx context.Context, commentID, userID int64) (bool, error)
	IsLiked(ctx context.Context, commentID, userID int64) (bool, error)
	LikeCount(ctx context.Context, commentID int64) (int, error)
	CheckLikes(ctx context.Context, userID int64, commentIDs []int64) (map[int64]bool, error)
}

type FollowRepository interface {
	// Create/Delete are idempotent set operations; the bool reports whether
	// the edge actually changed.
	Create(ctx context.Context, followerID, followeeID int64) (bool, error)
	Delete(ctx context.Context, followerID, followeeID int64) (bool, error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)

	// Counts are reverse-query counts over the follows table; no redundant
	// per-user lists exist to drift out of sync.
	FollowerCount(ctx context.Context, userID int64) (int, error)
	FollowingCount(ctx context.Context, userID int64) (int, error)

	GetFollowers(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error)
	GetFollowing(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error)
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
}
