package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"writehub/internal/model"
	"writehub/internal/notify"
	"writehub/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	publisher   notify.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	publisher notify.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create adds a comment to a post. A reply must name a parent that exists
// and belongs to the same post; cross-post parents are rejected outright.
func (s *CommentService) Create(ctx context.Context, postID, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len([]rune(content)) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	if req.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, model.ErrParentMismatch
		}
	}

	comment := &model.Comment{
		PostID:          postID,
		UserID:          userID,
		Content:         content,
		ParentCommentID: req.ParentCommentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.publishChange(ctx, notify.NewCommentChangedEvent(postID, comment.ID))

	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		comment.Author = summarize(author)
	}

	return comment, nil
}

// Delete removes an owned comment. The delete is hard and does not cascade:
// replies keep their dangling parent id and surface at the top level.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, commentID, userID); err != nil {
		return err
	}

	s.publishChange(ctx, notify.NewCommentChangedEvent(comment.PostID, commentID))

	log.Printf("[CommentService] User %d deleted comment %d", userID, commentID)
	return nil
}

// ListByPost returns the post's comments as a flat list in creation order.
// Clients assemble the reply tree themselves.
func (s *CommentService) ListByPost(ctx context.Context, postID int64, viewerID *int64) (*model.CommentListResponse, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	if viewerID != nil && len(comments) > 0 {
		ids := make([]int64, len(comments))
		for i := range comments {
			ids[i] = comments[i].ID
		}
		likeStatus, err := s.commentRepo.CheckLikes(ctx, *viewerID, ids)
		if err != nil {
			log.Printf("[CommentService] Failed to batch check likes: %v", err)
		} else {
			for i := range comments {
				comments[i].IsLiked = likeStatus[comments[i].ID]
			}
		}
	}

	return &model.CommentListResponse{Comments: comments}, nil
}

// ToggleLike flips the caller's like on a comment and returns the resulting
// state with the authoritative count.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID int64) (*model.LikeResult, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	liked, err := s.commentRepo.IsLiked(ctx, commentID, userID)
	if err != nil {
		return nil, fmt.Errorf("check comment like: %w", err)
	}

	if liked {
		if _, err := s.commentRepo.Unlike(ctx, commentID, userID); err != nil {
			return nil, fmt.Errorf("unlike comment: %w", err)
		}
	} else {
		if _, err := s.commentRepo.Like(ctx, commentID, userID); err != nil {
			return nil, fmt.Errorf("like comment: %w", err)
		}
	}

	count, err := s.commentRepo.LikeCount(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("count comment likes: %w", err)
	}

	return &model.LikeResult{Liked: !liked, Count: count}, nil
}

func (s *CommentService) publishChange(ctx context.Context, event notify.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[CommentService] Failed to publish change event: %v", err)
	}
}
