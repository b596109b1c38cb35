// Package notify publishes entity-change events to a Redis stream so that
// sync-layer caches can be invalidated on push instead of waiting for the
// next poll. Publishing is best-effort: the write of record is the database,
// and a lost event only delays convergence until the poll interval.
package notify

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the entity-change stream
const (
	EventPostChanged    = "post_changed"
	EventCommentChanged = "comment_changed"
	EventFollowChanged  = "follow_changed"
)

// Stream and consumer group names
const (
	StreamEntity        = "stream:entity"
	ConsumerGroupEntity = "sync_listeners"
)

// ChangeEvent describes one entity mutation. Listeners use it to decide
// which caches to mark stale; it carries ids only, never payloads.
type ChangeEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	// Post and comment events
	PostID int64 `json:"post_id,omitempty"`

	// Comment events
	CommentID int64 `json:"comment_id,omitempty"`

	// Follow events
	FollowerID int64 `json:"follower_id,omitempty"`
	FolloweeID int64 `json:"followee_id,omitempty"`
}

// NewPostChangedEvent covers create, update, publish and delete of a post.
func NewPostChangedEvent(postID int64) ChangeEvent {
	return ChangeEvent{
		Type:      EventPostChanged,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
	}
}

// NewCommentChangedEvent covers create, delete and like of a comment.
func NewCommentChangedEvent(postID, commentID int64) ChangeEvent {
	return ChangeEvent{
		Type:      EventCommentChanged,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		CommentID: commentID,
	}
}

// NewFollowChangedEvent covers both follow and unfollow.
func NewFollowChangedEvent(followerID, followeeID int64) ChangeEvent {
	return ChangeEvent{
		Type:       EventFollowChanged,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// ToMap converts the event to a map for Redis XADD. Streams store
// field-value pairs, so the body is JSON in a "data" field.
func (e ChangeEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseChangeEvent parses a ChangeEvent from Redis stream message values.
func ParseChangeEvent(values map[string]interface{}) (ChangeEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ChangeEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ChangeEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ChangeEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
