package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Post represents an article in either draft or published state.
// A draft (published=false) is visible only to its author.
type Post struct {
	ID        int64          `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	Title     string         `db:"title" json:"title"`
	Content   string         `db:"content" json:"content"` // HTML
	Excerpt   string         `db:"excerpt" json:"excerpt"`
	Tags      pq.StringArray `db:"tags" json:"tags"`
	Published bool           `db:"published" json:"published"`
	Slug      string         `db:"slug" json:"slug"`
	ImageURL  *string        `db:"image_url" json:"image_url"`
	ViewCount int            `db:"view_count" json:"view_count"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at" json:"-"`

	// Joined fields (not in posts table)
	Author    *UserSummary `json:"author,omitempty"`
	LikeCount int          `db:"like_count" json:"like_count"`
	IsLiked   bool         `json:"is_liked"`
}

// CreatePostRequest is the request body for creating a draft or publishing directly.
type CreatePostRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Excerpt   *string  `json:"excerpt"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
	ImageURL  *string  `json:"image_url"`
}

// UpdatePostRequest is a partial patch; nil fields are left untouched.
// Setting Published=true on a draft is the publish transition. There is
// no unpublish transition.
type UpdatePostRequest struct {
	Title     *string  `json:"title"`
	Content   *string  `json:"content"`
	Excerpt   *string  `json:"excerpt"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
	ImageURL  *string  `json:"image_url"`
}

// PostFilter narrows List queries. Zero values mean "no filter".
type PostFilter struct {
	Tag        string
	AuthorID   int64
	FollowedBy int64 // posts authored by users this user follows
	Slug       string
	Published  *bool
	Page       int
	Limit      int
}

// PostListResponse is the paginated post list response.
type PostListResponse struct {
	Posts      []Post `json:"posts"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// LikeResult is the authoritative state returned by a like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Post constraints
const (
	MaxTitleLength   = 300
	MaxExcerptLength = 200
	SlugMaxAttempts  = 50
)

// Post errors
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostOwner  = errors.New("not the owner of this post")
	ErrTitleRequired = errors.New("title is required")
	ErrBodyRequired  = errors.New("content is required")
	ErrTitleTooLong  = errors.New("title too long")
	ErrSlugConflict  = errors.New("could not allocate a unique slug")
)
