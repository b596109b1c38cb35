package model

import (
	"errors"
	"time"
)

// User represents a registered author/reader.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	Bio            *string   `db:"bio" json:"bio"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the author shape embedded in posts, comments and follow
// lists. IsFollowing is filled per viewer on follow lists, never stored.
type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Email       string  `db:"email" json:"email"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
	IsFollowing bool    `db:"-" json:"is_following"`
}

// Profile is a user plus social counts derived from the follows table.
type Profile struct {
	User           *User `json:"user"`
	FollowerCount  int   `json:"follower_count"`
	FollowingCount int   `json:"following_count"`
	PostCount      int   `json:"post_count"`
	IsFollowing    bool  `json:"is_following"`
}

// RegisterRequest represents the data needed to sign up.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse pairs the user with their session token.
type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// UpdateProfileRequest carries optional profile edits.
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to sign up with a taken email
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
