package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post. A nil ParentCommentID marks a root
// comment; replies reference their parent within the same post. Deleting a
// parent leaves its replies in place with a dangling parent id.
type Comment struct {
	ID              int64        `db:"id" json:"id"`
	PostID          int64        `db:"post_id" json:"post_id"`
	UserID          int64        `db:"user_id" json:"-"`
	Content         string       `db:"content" json:"content"`
	ParentCommentID *int64       `db:"parent_comment_id" json:"parent_id,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
	Author          *UserSummary `json:"author,omitempty"` // Joined field
	LikeCount       int          `db:"like_count" json:"like_count"`
	IsLiked         bool         `json:"is_liked"`
}

// CreateCommentRequest is the request body for commenting on a post.
type CreateCommentRequest struct {
	Content         string `json:"content"`
	ParentCommentID *int64 `json:"parent_id,omitempty"`
}

// CommentListResponse holds the flat, creation-ordered comment list for a
// post. Thread/tree construction is the client's job.
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

// Comment constraints
const (
	MaxCommentLength = 5000
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
	ErrParentMismatch  = errors.New("parent comment belongs to a different post")
)
