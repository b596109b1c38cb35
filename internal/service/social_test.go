package service

import (
	"context"
	"errors"
	"testing"

	"writehub/internal/model"
)

// A toggle service backed by real set semantics: state lives in maps, like
// the ON CONFLICT / DELETE pairs do in the store.
func newSocialFixture() (*SocialService, *mockPostRepository, *mockFollowRepository) {
	likes := map[int64]bool{}
	postRepo := &mockPostRepository{
		isLikedFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			return likes[userID], nil
		},
		likeFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			changed := !likes[userID]
			likes[userID] = true
			return changed, nil
		},
		unlikeFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			changed := likes[userID]
			delete(likes, userID)
			return changed, nil
		},
		likeCountFn: func(ctx context.Context, postID int64) (int, error) {
			return len(likes), nil
		},
	}

	edges := map[int64]bool{}
	followRepo := &mockFollowRepository{
		existsFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			return edges[followerID], nil
		},
		createFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			changed := !edges[followerID]
			edges[followerID] = true
			return changed, nil
		},
		deleteFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			changed := edges[followerID]
			delete(edges, followerID)
			return changed, nil
		},
		followerCountFn: func(ctx context.Context, userID int64) (int, error) {
			return len(edges), nil
		},
	}

	svc := NewSocialService(postRepo, followRepo, &mockUserRepository{}, nil)
	return svc, postRepo, followRepo
}

func TestSocialService_TogglePostLike_Involution(t *testing.T) {
	svc, _, _ := newSocialFixture()
	ctx := context.Background()

	// First toggle: liked, count 1
	result, err := svc.TogglePostLike(ctx, 1, 10)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !result.Liked || result.Count != 1 {
		t.Errorf("first toggle = {liked:%v count:%d}, want {true 1}", result.Liked, result.Count)
	}

	// Second toggle: back to the original state
	result, err = svc.TogglePostLike(ctx, 1, 10)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if result.Liked || result.Count != 0 {
		t.Errorf("second toggle = {liked:%v count:%d}, want {false 0}", result.Liked, result.Count)
	}
}

func TestSocialService_TogglePostLike_TwoUsers(t *testing.T) {
	svc, _, _ := newSocialFixture()
	ctx := context.Background()

	if _, err := svc.TogglePostLike(ctx, 1, 10); err != nil {
		t.Fatalf("user 10: %v", err)
	}
	result, err := svc.TogglePostLike(ctx, 1, 11)
	if err != nil {
		t.Fatalf("user 11: %v", err)
	}
	if result.Count != 2 {
		t.Errorf("count = %d, want 2 (one per user)", result.Count)
	}

	// User 10 unlikes; user 11's like remains
	result, err = svc.TogglePostLike(ctx, 1, 10)
	if err != nil {
		t.Fatalf("user 10 untoggle: %v", err)
	}
	if result.Count != 1 {
		t.Errorf("count after unlike = %d, want 1", result.Count)
	}
}

func TestSocialService_TogglePostLike_PostMissing(t *testing.T) {
	postRepo := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) {
			return false, nil
		},
	}
	svc := NewSocialService(postRepo, &mockFollowRepository{}, &mockUserRepository{}, nil)

	_, err := svc.TogglePostLike(context.Background(), 404, 10)
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestSocialService_ToggleFollow_SelfFollow(t *testing.T) {
	svc, _, followRepo := newSocialFixture()

	_, err := svc.ToggleFollow(context.Background(), 10, 10)
	if !errors.Is(err, model.ErrSelfFollow) {
		t.Fatalf("error = %v, want %v", err, model.ErrSelfFollow)
	}
	if followRepo.createCalls != 0 || followRepo.deleteCalls != 0 {
		t.Error("self-follow must be rejected before any write")
	}
}

func TestSocialService_ToggleFollow_Involution(t *testing.T) {
	svc, _, _ := newSocialFixture()
	ctx := context.Background()

	result, err := svc.ToggleFollow(ctx, 10, 20)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !result.Following || result.FollowersCount != 1 {
		t.Errorf("follow = {following:%v followers:%d}, want {true 1}", result.Following, result.FollowersCount)
	}

	result, err = svc.ToggleFollow(ctx, 10, 20)
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if result.Following || result.FollowersCount != 0 {
		t.Errorf("unfollow = {following:%v followers:%d}, want {false 0}", result.Following, result.FollowersCount)
	}
}

func TestSocialService_ToggleFollow_FolloweeMissing(t *testing.T) {
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewSocialService(&mockPostRepository{}, &mockFollowRepository{}, userRepo, nil)

	_, err := svc.ToggleFollow(context.Background(), 10, 404)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
}

func TestSocialService_ListFollowers_ViewerEnrichment(t *testing.T) {
	followRepo := &mockFollowRepository{
		getFollowersFn: func(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error) {
			return []model.UserSummary{{ID: 20, Name: "a"}, {ID: 21, Name: "b"}, {ID: 22, Name: "c"}}, 3, nil
		},
		checkFollowsFn: func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
			if followerID != 10 {
				t.Errorf("batch check for viewer %d, want 10", followerID)
			}
			if len(followeeIDs) != 3 {
				t.Errorf("batch check over %d ids, want 3 (one query per page)", len(followeeIDs))
			}
			return map[int64]bool{20: true, 21: false, 22: true}, nil
		},
	}
	svc := NewSocialService(&mockPostRepository{}, followRepo, &mockUserRepository{}, nil)

	viewer := int64(10)
	result, err := svc.ListFollowers(context.Background(), 1, &viewer, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []bool{true, false, true}
	for i, u := range result.Users {
		if u.IsFollowing != want[i] {
			t.Errorf("user %d is_following = %v, want %v", u.ID, u.IsFollowing, want[i])
		}
	}
}

func TestSocialService_ListFollowing_AnonymousSkipsCheck(t *testing.T) {
	followRepo := &mockFollowRepository{
		getFollowingFn: func(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error) {
			return []model.UserSummary{{ID: 20}}, 1, nil
		},
		checkFollowsFn: func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
			t.Error("no batch check should run for an anonymous viewer")
			return nil, nil
		},
	}
	svc := NewSocialService(&mockPostRepository{}, followRepo, &mockUserRepository{}, nil)

	result, err := svc.ListFollowing(context.Background(), 1, nil, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Users[0].IsFollowing {
		t.Error("is_following must stay false without a viewer")
	}
}

func TestSocialService_FollowStatus(t *testing.T) {
	svc, _, _ := newSocialFixture()
	ctx := context.Background()

	status, err := svc.FollowStatus(ctx, 10, 20)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Following {
		t.Error("should not be following initially")
	}

	if _, err := svc.ToggleFollow(ctx, 10, 20); err != nil {
		t.Fatalf("follow: %v", err)
	}

	status, err = svc.FollowStatus(ctx, 10, 20)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Following || status.FollowersCount != 1 {
		t.Errorf("status = {following:%v followers:%d}, want {true 1}", status.Following, status.FollowersCount)
	}
}
