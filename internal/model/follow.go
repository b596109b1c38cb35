package model

import (
	"errors"
	"time"
)

// Follow is a directed edge: follower -> followee. The follows table is the
// single source of truth; follower/following counts are reverse-query counts,
// never stored redundantly on the user row.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FollowResult is the authoritative state returned by a follow toggle.
type FollowResult struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followers_count"`
	FollowingCount int  `json:"following_count"`
}

// FollowListResponse is the paginated followers/following response.
type FollowListResponse struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

var (
	ErrSelfFollow = errors.New("cannot follow yourself")
)
