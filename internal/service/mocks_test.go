package service

import (
	"context"

	"writehub/internal/model"
	"writehub/internal/notify"
)

// Function-field mocks: each test plugs in exactly the behavior it needs,
// the rest falls through to a safe default.

type mockUserRepository struct {
	createFn        func(ctx context.Context, user *model.User) error
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	existsByEmailFn func(ctx context.Context, email string) (bool, error)
	updateProfileFn func(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error)
	searchFn        func(ctx context.Context, query string, limit int) ([]model.UserSummary, error)

	createCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.User{ID: id, Name: "user", Email: "user@example.com"}, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, req)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

type mockPostRepository struct {
	createFn         func(ctx context.Context, post *model.Post) error
	getByIDFn        func(ctx context.Context, postID int64) (*model.Post, error)
	getBySlugFn      func(ctx context.Context, slug string) (*model.Post, error)
	updateFn         func(ctx context.Context, post *model.Post) error
	softDeleteFn     func(ctx context.Context, postID, userID int64) error
	listFn           func(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error)
	searchFn         func(ctx context.Context, query string, page, limit int) ([]model.Post, int, error)
	existsFn         func(ctx context.Context, postID int64) (bool, error)
	countByAuthorFn  func(ctx context.Context, userID int64) (int, error)
	slugExistsFn     func(ctx context.Context, slug string, excludeID int64) (bool, error)
	incrementViewsFn func(ctx context.Context, postID int64) (int, error)
	likeFn           func(ctx context.Context, postID, userID int64) (bool, error)
	unlikeFn         func(ctx context.Context, postID, userID int64) (bool, error)
	isLikedFn        func(ctx context.Context, postID, userID int64) (bool, error)
	likeCountFn      func(ctx context.Context, postID int64) (int, error)
	checkLikesFn     func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)

	createCalls []model.Post
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	m.createCalls = append(m.createCalls, *post)
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = int64(len(m.createCalls))
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Update(ctx context.Context, post *model.Post) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) SoftDelete(ctx context.Context, postID, userID int64) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockPostRepository) Search(ctx context.Context, query string, page, limit int) ([]model.Post, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, page, limit)
	}
	return nil, 0, nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) CountByAuthor(ctx context.Context, userID int64) (int, error) {
	if m.countByAuthorFn != nil {
		return m.countByAuthorFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockPostRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	if m.slugExistsFn != nil {
		return m.slugExistsFn(ctx, slug, excludeID)
	}
	return false, nil
}

func (m *mockPostRepository) IncrementViews(ctx context.Context, postID int64) (int, error) {
	if m.incrementViewsFn != nil {
		return m.incrementViewsFn(ctx, postID)
	}
	return 1, nil
}

func (m *mockPostRepository) Like(ctx context.Context, postID, userID int64) (bool, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, userID)
	}
	return true, nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, userID)
	}
	return true, nil
}

func (m *mockPostRepository) IsLiked(ctx context.Context, postID, userID int64) (bool, error) {
	if m.isLikedFn != nil {
		return m.isLikedFn(ctx, postID, userID)
	}
	return false, nil
}

func (m *mockPostRepository) LikeCount(ctx context.Context, postID int64) (int, error) {
	if m.likeCountFn != nil {
		return m.likeCountFn(ctx, postID)
	}
	return 0, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[int64]bool{}, nil
}

type mockCommentRepository struct {
	createFn     func(ctx context.Context, comment *model.Comment) error
	getByIDFn    func(ctx context.Context, commentID int64) (*model.Comment, error)
	deleteFn     func(ctx context.Context, commentID, userID int64) error
	listByPostFn func(ctx context.Context, postID int64) ([]model.Comment, error)
	likeFn       func(ctx context.Context, commentID, userID int64) (bool, error)
	unlikeFn     func(ctx context.Context, commentID, userID int64) (bool, error)
	isLikedFn    func(ctx context.Context, commentID, userID int64) (bool, error)
	likeCountFn  func(ctx context.Context, commentID int64) (int, error)
	checkLikesFn func(ctx context.Context, userID int64, commentIDs []int64) (map[int64]bool, error)

	createCalls int
	deleteCalls int
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	comment.ID = int64(m.createCalls)
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID, userID int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID, userID)
	}
	return nil
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepository) Like(ctx context.Context, commentID, userID int64) (bool, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, commentID, userID)
	}
	return true, nil
}

func (m *mockCommentRepository) Unlike(ctx context.Context, commentID, userID int64) (bool, error) {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, commentID, userID)
	}
	return true, nil
}

func (m *mockCommentRepository) IsLiked(ctx context.Context, commentID, userID int64) (bool, error) {
	if m.isLikedFn != nil {
		return m.isLikedFn(ctx, commentID, userID)
	}
	return false, nil
}

func (m *mockCommentRepository) LikeCount(ctx context.Context, commentID int64) (int, error) {
	if m.likeCountFn != nil {
		return m.likeCountFn(ctx, commentID)
	}
	return 0, nil
}

func (m *mockCommentRepository) CheckLikes(ctx context.Context, userID int64, commentIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, commentIDs)
	}
	return map[int64]bool{}, nil
}

type mockFollowRepository struct {
	createFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	deleteFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	existsFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	followerCountFn  func(ctx context.Context, userID int64) (int, error)
	followingCountFn func(ctx context.Context, userID int64) (int, error)
	getFollowersFn   func(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error)
	getFollowingFn   func(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error)
	checkFollowsFn   func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)

	createCalls int
	deleteCalls int
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) FollowerCount(ctx context.Context, userID int64) (int, error) {
	if m.followerCountFn != nil {
		return m.followerCountFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) FollowingCount(ctx context.Context, userID int64) (int, error) {
	if m.followingCountFn != nil {
		return m.followingCountFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, page, limit)
	}
	return nil, 0, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64, page, limit int) ([]model.UserSummary, int, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, page, limit)
	}
	return nil, 0, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followeeIDs)
	}
	return map[int64]bool{}, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	events []notify.ChangeEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, event notify.ChangeEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.events = append(m.events, event)
	return "1-0", nil
}
