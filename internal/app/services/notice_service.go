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
	"github.com/yigit/studyhub/internal/pkg/helpers"
	"github.com/yigit/studyhub/internal/recordstore"
)

// NoticeService manages notices. Writing is reserved to administrators.
type NoticeService struct {
	noticeRepo    repositories.INoticeRepository
	userRepo      repositories.IUserRepository
	authorization *authz.AuthorizationService
	logger        zerolog.Logger
}

// NewNoticeService creates a new NoticeService
func NewNoticeService(
	noticeRepo repositories.INoticeRepository,
	userRepo repositories.IUserRepository,
	authorization *authz.AuthorizationService,
	logger zerolog.Logger,
) *NoticeService {
	return &NoticeService{
		noticeRepo:    noticeRepo,
		userRepo:      userRepo,
		authorization: authorization,
		logger:        logger,
	}
}

// CreateNotice publishes a notice
func (s *NoticeService) CreateNotice(ctx context.Context, actor authz.Actor, req *dto.CreateNoticeRequest) (*dto.NoticeResponse, error) {
	if err := s.authorization.RequireAdmin(actor); err != nil {
		return nil, err
	}

	notice := &models.Notice{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Category: models.NoticeCategory(req.Category),
		Author:   actor.UserID,
		IsPinned: req.IsPinned,
	}
	if !notice.Category.Valid() {
		return nil, apperrors.NewValidationError("category", "category must be one of: important, general, event, maintenance")
	}

	if err := s.noticeRepo.Create(ctx, notice); err != nil {
		return nil, err
	}
	s.logger.Info().Str("noticeID", notice.ID).Bool("pinned", notice.IsPinned).Msg("Notice created")
	return s.render(ctx, notice)
}

// ListNotices lists notices with pinned ones first, then newest first
func (s *NoticeService) ListNotices(ctx context.Context, filter dto.NoticeFilter) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	notices, total, err := s.noticeRepo.List(ctx, recordstore.And(
		eqIfSet("category", filter.Category),
		searchFilter(filter.Search, "title", "content"),
	), offset, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(notices))
	for i, notice := range notices {
		ids[i] = notice.Author
	}
	users, err := resolveUsers(ctx, s.userRepo, ids...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NoticeResponse, len(notices))
	for i, notice := range notices {
		items[i] = dto.NewNoticeResponse(notice, users)
	}
	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, limit),
	}, nil
}

// ViewNotice returns a notice and counts the view
func (s *NoticeService) ViewNotice(ctx context.Context, id string) (*dto.NoticeResponse, error) {
	notice, err := s.noticeRepo.UpdateWith(ctx, id, func(n *models.Notice) error {
		n.Views++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notice == nil {
		return nil, apperrors.ErrNoticeNotFound
	}
	return s.render(ctx, notice)
}

// UpdateNotice applies the set fields of req
func (s *NoticeService) UpdateNotice(ctx context.Context, actor authz.Actor, id string, req *dto.UpdateNoticeRequest) (*dto.NoticeResponse, error) {
	if err := s.authorization.RequireAdmin(actor); err != nil {
		return nil, err
	}

	notice, err := s.noticeRepo.UpdateWith(ctx, id, func(n *models.Notice) error {
		if req.Title != nil {
			n.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			n.Content = *req.Content
		}
		if req.Category != nil {
			n.Category = models.NoticeCategory(*req.Category)
			if !n.Category.Valid() {
				return apperrors.NewValidationError("category", "category must be one of: important, general, event, maintenance")
			}
		}
		if req.IsPinned != nil {
			n.IsPinned = *req.IsPinned
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notice == nil {
		return nil, apperrors.ErrNoticeNotFound
	}

	s.logger.Info().Str("noticeID", id).Msg("Notice updated")
	return s.render(ctx, notice)
}

// DeleteNotice removes a notice
func (s *NoticeService) DeleteNotice(ctx context.Context, actor authz.Actor, id string) error {
	if err := s.authorization.RequireAdmin(actor); err != nil {
		return err
	}
	deleted, err := s.noticeRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrNoticeNotFound
	}
	s.logger.Info().Str("noticeID", id).Msg("Notice deleted")
	return nil
}

func (s *NoticeService) render(ctx context.Context, notice *models.Notice) (*dto.NoticeResponse, error) {
	users, err := resolveUsers(ctx, s.userRepo, notice.Author)
	if err != nil {
		return nil, err
	}
	return dto.NewNoticeResponse(notice, users), nil
}
