package services

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/helpers"
	"github.com/yigit/studyhub/internal/recordstore"
)

// PostService manages community posts
type PostService struct {
	postRepo      repositories.IPostRepository
	commentRepo   repositories.ICommentRepository
	userRepo      repositories.IUserRepository
	authorization *authz.AuthorizationService
	logger        zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repositories.IPostRepository,
	commentRepo repositories.ICommentRepository,
	userRepo repositories.IUserRepository,
	authorization *authz.AuthorizationService,
	logger zerolog.Logger,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		userRepo:      userRepo,
		authorization: authorization,
		logger:        logger,
	}
}

func validPostCategory(category models.PostCategory) error {
	if !category.Valid() {
		return apperrors.NewValidationError("category", "category must be one of: question, discussion, share, free")
	}
	return nil
}

// CreatePost publishes a post by the actor. The category defaults to free.
func (s *PostService) CreatePost(ctx context.Context, actor authz.Actor, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	category := models.PostCategory(req.Category)
	if category == "" {
		category = models.PostFree
	}
	if err := validPostCategory(category); err != nil {
		return nil, err
	}

	post := &models.CommunityPost{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Category: category,
		Author:   actor.UserID,
		Likes:    []string{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info().Str("postID", post.ID).Str("author", actor.UserID).Msg("Post created")
	return s.render(ctx, post)
}

// ListPosts lists posts newest first
func (s *PostService) ListPosts(ctx context.Context, filter dto.PostFilter) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	posts, total, err := s.postRepo.List(ctx, repositories.ListOptions{
		Filter: recordstore.And(
			eqIfSet("category", filter.Category),
			searchFilter(filter.Search, "title", "content"),
		),
		Sort:   recordstore.Desc("createdAt"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(posts))
	for i, post := range posts {
		ids[i] = post.Author
	}
	users, err := resolveUsers(ctx, s.userRepo, ids...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PostResponse, len(posts))
	for i, post := range posts {
		items[i] = dto.NewPostResponse(post, users)
	}
	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, limit),
	}, nil
}

// ViewPost returns a post with its comment count and counts the view
func (s *PostService) ViewPost(ctx context.Context, id string) (*dto.PostResponse, error) {
	post, err := s.postRepo.UpdateWith(ctx, id, func(p *models.CommunityPost) error {
		p.Views++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}

	response, err := s.render(ctx, post)
	if err != nil {
		return nil, err
	}
	count, err := s.commentRepo.CountByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	response.CommentCount = &count
	return response, nil
}

// UpdatePost applies the set fields of req. Only the author may edit.
func (s *PostService) UpdatePost(ctx context.Context, actor authz.Actor, id string, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.postRepo.UpdateWith(ctx, id, func(p *models.CommunityPost) error {
		if err := s.authorization.RequireOwner(actor, p.Author, "only the author can edit this post"); err != nil {
			return err
		}
		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			p.Content = *req.Content
		}
		if req.Category != nil {
			p.Category = models.PostCategory(*req.Category)
		}
		return validPostCategory(p.Category)
	})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}

	s.logger.Info().Str("postID", id).Msg("Post updated")
	return s.render(ctx, post)
}

// DeletePost removes a post and all of its comments. The author or an
// administrator may delete.
func (s *PostService) DeletePost(ctx context.Context, actor authz.Actor, id string) (*dto.DeletePostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	if err := s.authorization.RequireOwnerOrAdmin(actor, post.Author, "only the author can delete this post"); err != nil {
		return nil, err
	}

	found, comments, err := s.postRepo.DeleteWithComments(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.ErrPostNotFound
	}

	s.logger.Info().Str("postID", id).Int("comments", comments).Str("userID", actor.UserID).Msg("Post deleted")
	return &dto.DeletePostResponse{
		Message:         "post deleted",
		DeletedComments: comments,
	}, nil
}

// ToggleLike likes the post for the actor, or removes an existing like
func (s *PostService) ToggleLike(ctx context.Context, actor authz.Actor, id string) (*dto.LikeResponse, error) {
	var liked bool
	post, err := s.postRepo.UpdateWith(ctx, id, func(p *models.CommunityPost) error {
		if p.LikedBy(actor.UserID) {
			p.Likes = slices.DeleteFunc(p.Likes, func(userID string) bool { return userID == actor.UserID })
			liked = false
		} else {
			p.Likes = append(p.Likes, actor.UserID)
			liked = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	return &dto.LikeResponse{Liked: liked, LikeCount: len(post.Likes)}, nil
}

func (s *PostService) render(ctx context.Context, post *models.CommunityPost) (*dto.PostResponse, error) {
	users, err := resolveUsers(ctx, s.userRepo, post.Author)
	if err != nil {
		return nil, err
	}
	return dto.NewPostResponse(post, users), nil
}
