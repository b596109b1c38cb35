package service

import (
	"context"
	"fmt"
	"log"

	"writehub/internal/model"
	"writehub/internal/notify"
	"writehub/internal/repository"
)

// SocialService covers the like and follow edges. Both are set-membership
// toggles: the store enforces idempotence, the response always carries the
// authoritative state so clients can reconcile optimistic updates.
type SocialService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  notify.Publisher
}

func NewSocialService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	publisher notify.Publisher,
) *SocialService {
	return &SocialService{
		postRepo:   postRepo,
		followRepo: followRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// TogglePostLike flips the caller's like on a post. Two rapid calls from
// the same user land on insert-if-absent / delete-if-present set operations,
// so the final state matches the last toggle and the count never drifts.
func (s *SocialService) TogglePostLike(ctx context.Context, postID, userID int64) (*model.LikeResult, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	liked, err := s.postRepo.IsLiked(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("check post like: %w", err)
	}

	if liked {
		if _, err := s.postRepo.Unlike(ctx, postID, userID); err != nil {
			return nil, fmt.Errorf("unlike post: %w", err)
		}
	} else {
		if _, err := s.postRepo.Like(ctx, postID, userID); err != nil {
			return nil, fmt.Errorf("like post: %w", err)
		}
	}

	count, err := s.postRepo.LikeCount(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("count post likes: %w", err)
	}

	log.Printf("[SocialService] User %d toggled like on post %d -> %v", userID, postID, !liked)

	s.publishChange(ctx, notify.NewPostChangedEvent(postID))

	return &model.LikeResult{Liked: !liked, Count: count}, nil
}

// PostLikeStatus returns the caller's like state and the current count
// without changing anything.
func (s *SocialService) PostLikeStatus(ctx context.Context, postID, userID int64) (*model.LikeResult, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	liked, err := s.postRepo.IsLiked(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("check post like: %w", err)
	}
	count, err := s.postRepo.LikeCount(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("count post likes: %w", err)
	}

	return &model.LikeResult{Liked: liked, Count: count}, nil
}

// ToggleFollow flips the follower->followee edge. Following yourself is
// rejected before any write. Counts in the result are derived from the
// follows table, never from stored counters.
func (s *SocialService) ToggleFollow(ctx context.Context, followerID, followeeID int64) (*model.FollowResult, error) {
	if followerID == followeeID {
		return nil, model.ErrSelfFollow
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return nil, err
	}

	following, err := s.followRepo.Exists(ctx, followerID, followeeID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}

	if following {
		if _, err := s.followRepo.Delete(ctx, followerID, followeeID); err != nil {
			return nil, fmt.Errorf("unfollow: %w", err)
		}
	} else {
		if _, err := s.followRepo.Create(ctx, followerID, followeeID); err != nil {
			return nil, fmt.Errorf("follow: %w", err)
		}
	}

	result, err := s.followCounts(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	result.Following = !following

	log.Printf("[SocialService] User %d toggled follow on user %d -> %v", followerID, followeeID, !following)

	s.publishChange(ctx, notify.NewFollowChangedEvent(followerID, followeeID))

	return result, nil
}

// FollowStatus reports whether followerID follows followeeID, with the
// followee's current counts.
func (s *SocialService) FollowStatus(ctx context.Context, followerID, followeeID int64) (*model.FollowResult, error) {
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return nil, err
	}

	following, err := s.followRepo.Exists(ctx, followerID, followeeID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}

	result, err := s.followCounts(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	result.Following = following
	return result, nil
}

// ListFollowers returns a page of users following userID. An authenticated
// viewer gets each row's is_following flag filled in.
func (s *SocialService) ListFollowers(ctx context.Context, userID int64, viewerID *int64, page, limit int) (*model.FollowListResponse, error) {
	page, limit = clampPage(page, limit)

	users, total, err := s.followRepo.GetFollowers(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	if users == nil {
		users = []model.UserSummary{}
	}

	s.attachFollowing(ctx, users, viewerID)
	return &model.FollowListResponse{Users: users, Total: total, Page: page, Limit: limit}, nil
}

// ListFollowing returns a page of users userID follows.
func (s *SocialService) ListFollowing(ctx context.Context, userID int64, viewerID *int64, page, limit int) (*model.FollowListResponse, error) {
	page, limit = clampPage(page, limit)

	users, total, err := s.followRepo.GetFollowing(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	if users == nil {
		users = []model.UserSummary{}
	}

	s.attachFollowing(ctx, users, viewerID)
	return &model.FollowListResponse{Users: users, Total: total, Page: page, Limit: limit}, nil
}

// attachFollowing marks which listed users the viewer follows, one batch
// query for the whole page.
func (s *SocialService) attachFollowing(ctx context.Context, users []model.UserSummary, viewerID *int64) {
	if viewerID == nil || len(users) == 0 {
		return
	}
	ids := make([]int64, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followStatus, err := s.followRepo.CheckFollows(ctx, *viewerID, ids)
	if err != nil {
		log.Printf("[SocialService] Failed to batch check follows: %v", err)
		return
	}
	for i := range users {
		users[i].IsFollowing = followStatus[users[i].ID]
	}
}

func (s *SocialService) followCounts(ctx context.Context, userID int64) (*model.FollowResult, error) {
	followers, err := s.followRepo.FollowerCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	following, err := s.followRepo.FollowingCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}
	return &model.FollowResult{FollowersCount: followers, FollowingCount: following}, nil
}

func (s *SocialService) publishChange(ctx context.Context, event notify.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[SocialService] Failed to publish change event: %v", err)
	}
}

func clampPage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}
