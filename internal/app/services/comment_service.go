package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

// CommentService manages comments on community posts
type CommentService struct {
	commentRepo   repositories.ICommentRepository
	postRepo      repositories.IPostRepository
	userRepo      repositories.IUserRepository
	authorization *authz.AuthorizationService
	logger        zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(
	commentRepo repositories.ICommentRepository,
	postRepo repositories.IPostRepository,
	userRepo repositories.IUserRepository,
	authorization *authz.AuthorizationService,
	logger zerolog.Logger,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		userRepo:      userRepo,
		authorization: authorization,
		logger:        logger,
	}
}

// ListComments returns the comments of a post, oldest first
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]*dto.CommentResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(comments))
	for i, comment := range comments {
		ids[i] = comment.Author
	}
	users, err := resolveUsers(ctx, s.userRepo, ids...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CommentResponse, len(comments))
	for i, comment := range comments {
		items[i] = dto.NewCommentResponse(comment, users)
	}
	return items, nil
}

// AddComment adds a comment by the actor to a post
func (s *CommentService) AddComment(ctx context.Context, actor authz.Actor, postID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content must not be blank")
	}

	comment := &models.Comment{
		Content: content,
		Author:  actor.UserID,
		Post:    postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("commentID", comment.ID).Str("postID", postID).Msg("Comment added")

	users, err := resolveUsers(ctx, s.userRepo, comment.Author)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponse(comment, users), nil
}

// DeleteComment removes a comment. The author or an administrator may delete.
func (s *CommentService) DeleteComment(ctx context.Context, actor authz.Actor, id string) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment == nil {
		return apperrors.ErrCommentNotFound
	}
	if err := s.authorization.RequireOwnerOrAdmin(actor, comment.Author, "only the author can delete this comment"); err != nil {
		return err
	}

	deleted, err := s.commentRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrCommentNotFound
	}
	s.logger.Debug().Str("commentID", id).Str("userID", actor.UserID).Msg("Comment deleted")
	return nil
}
