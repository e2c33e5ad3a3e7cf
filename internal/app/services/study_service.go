package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/helpers"
	"github.com/yigit/studyhub/internal/pkg/validation"
	"github.com/yigit/studyhub/internal/recordstore"
)

// StudyService manages study groups and their membership
type StudyService struct {
	studyRepo     repositories.IStudyRepository
	userRepo      repositories.IUserRepository
	authorization *authz.AuthorizationService
	logger        zerolog.Logger
}

// NewStudyService creates a new StudyService
func NewStudyService(
	studyRepo repositories.IStudyRepository,
	userRepo repositories.IUserRepository,
	authorization *authz.AuthorizationService,
	logger zerolog.Logger,
) *StudyService {
	return &StudyService{
		studyRepo:     studyRepo,
		userRepo:      userRepo,
		authorization: authorization,
		logger:        logger,
	}
}

func parseDateField(field, value string) (*time.Time, error) {
	t, err := helpers.ParseDate(value)
	if err != nil {
		return nil, apperrors.NewValidationError(field, field+" must be a date (YYYY-MM-DD or RFC 3339)")
	}
	return t, nil
}

// CreateStudy creates a study group led by the actor, who becomes its first member
func (s *StudyService) CreateStudy(ctx context.Context, actor authz.Actor, req *dto.CreateStudyRequest) (*dto.StudyResponse, error) {
	deadline, err := parseDateField("deadline", req.Deadline)
	if err != nil {
		return nil, err
	}
	startDate, err := parseDateField("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}

	status := models.StudyStatus(req.Status)
	if status == "" {
		status = models.StudyStatusRecruiting
	}

	study := &models.StudyGroup{
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Category:       strings.TrimSpace(req.Category),
		MaxMembers:     req.MaxMembers,
		CurrentMembers: []string{actor.UserID},
		Leader:         actor.UserID,
		Deadline:       deadline,
		StartDate:      startDate,
		Duration:       req.Duration,
		MeetingType:    models.MeetingType(req.MeetingType),
		Location:       strings.TrimSpace(req.Location),
		Tags:           cleanTags(req.Tags),
		ImageURL:       strings.TrimSpace(req.ImageURL),
		Status:         status,
	}
	if err := validateStudy(study); err != nil {
		return nil, err
	}

	if err := s.studyRepo.Create(ctx, study); err != nil {
		return nil, err
	}
	s.logger.Info().Str("studyID", study.ID).Str("leader", actor.UserID).Msg("Study group created")

	return s.render(ctx, study)
}

func validateStudy(study *models.StudyGroup) error {
	maxMembers := validation.NewNumericValidation("maxMembers", study.MaxMembers).
		WithMin(models.MinStudyMembers).
		WithMax(models.MaxStudyMembers)
	if err := maxMembers.Err(); err != nil {
		return apperrors.NewValidationError("maxMembers", err.Error())
	}
	if len(study.CurrentMembers) > study.MaxMembers {
		return apperrors.ErrMaxMembersTooSmall
	}
	if study.Duration != 0 {
		duration := validation.NewNumericValidation("duration", study.Duration).
			WithMin(models.MinStudyDuration).
			WithMax(models.MaxStudyDuration)
		if err := duration.Err(); err != nil {
			return apperrors.NewValidationError("duration", err.Error()+" weeks")
		}
	}
	if study.MeetingType != "" && !study.MeetingType.Valid() {
		return apperrors.NewValidationError("meetingType", "meetingType must be one of: online, offline, both")
	}
	if !study.Status.Valid() {
		return apperrors.NewValidationError("status", "status must be one of: recruiting, in_progress, completed")
	}
	return nil
}

// ListStudies lists study groups newest first. search matches title and
// description, or any tag.
func (s *StudyService) ListStudies(ctx context.Context, filter dto.StudyFilter) (*dto.PaginatedResponse, error) {
	var search recordstore.Expr
	if term := strings.TrimSpace(filter.Search); term != "" {
		search = recordstore.Or(
			recordstore.Regex("title", term),
			recordstore.Regex("description", term),
			recordstore.AnyIn("tags", term),
		)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	studies, total, err := s.studyRepo.List(ctx, repositories.ListOptions{
		Filter: recordstore.And(
			eqIfSet("category", filter.Category),
			eqIfSet("status", filter.Status),
			search,
		),
		Sort:   recordstore.Desc("createdAt"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, study := range studies {
		ids = append(ids, study.Leader)
		ids = append(ids, study.CurrentMembers...)
	}
	users, err := resolveUsers(ctx, s.userRepo, ids...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.StudyResponse, len(studies))
	for i, study := range studies {
		items[i] = dto.NewStudyResponse(study, users)
	}
	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, limit),
	}, nil
}

// GetStudy returns one study group
func (s *StudyService) GetStudy(ctx context.Context, id string) (*dto.StudyResponse, error) {
	study, err := s.studyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if study == nil {
		return nil, apperrors.ErrStudyNotFound
	}
	return s.render(ctx, study)
}

// UpdateStudy applies the set fields of req. Only the leader may update,
// and maxMembers can never drop below the current member count.
func (s *StudyService) UpdateStudy(ctx context.Context, actor authz.Actor, id string, req *dto.UpdateStudyRequest) (*dto.StudyResponse, error) {
	var deadline, startDate *time.Time
	var err error
	if req.Deadline != nil {
		if deadline, err = parseDateField("deadline", *req.Deadline); err != nil {
			return nil, err
		}
	}
	if req.StartDate != nil {
		if startDate, err = parseDateField("startDate", *req.StartDate); err != nil {
			return nil, err
		}
	}

	study, err := s.studyRepo.UpdateWith(ctx, id, func(study *models.StudyGroup) error {
		if err := s.authorization.RequireOwner(actor, study.Leader, "only the leader can update this study group"); err != nil {
			return err
		}
		if req.Title != nil {
			study.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			study.Description = strings.TrimSpace(*req.Description)
		}
		if req.Category != nil {
			study.Category = strings.TrimSpace(*req.Category)
		}
		if req.MaxMembers != nil {
			study.MaxMembers = *req.MaxMembers
		}
		if req.Deadline != nil {
			study.Deadline = deadline
		}
		if req.StartDate != nil {
			study.StartDate = startDate
		}
		if req.Duration != nil {
			study.Duration = *req.Duration
		}
		if req.MeetingType != nil {
			study.MeetingType = models.MeetingType(*req.MeetingType)
		}
		if req.Location != nil {
			study.Location = strings.TrimSpace(*req.Location)
		}
		if req.Tags != nil {
			study.Tags = cleanTags(*req.Tags)
		}
		if req.ImageURL != nil {
			study.ImageURL = strings.TrimSpace(*req.ImageURL)
		}
		if req.Status != nil {
			study.Status = models.StudyStatus(*req.Status)
		}
		return validateStudy(study)
	})
	if err != nil {
		return nil, err
	}
	if study == nil {
		return nil, apperrors.ErrStudyNotFound
	}

	s.logger.Info().Str("studyID", id).Str("userID", actor.UserID).Msg("Study group updated")
	return s.render(ctx, study)
}

// DeleteStudy removes a study group. The leader or an administrator may delete.
func (s *StudyService) DeleteStudy(ctx context.Context, actor authz.Actor, id string) error {
	study, err := s.studyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if study == nil {
		return apperrors.ErrStudyNotFound
	}
	if err := s.authorization.RequireOwnerOrAdmin(actor, study.Leader, "only the leader can delete this study group"); err != nil {
		return err
	}

	deleted, err := s.studyRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrStudyNotFound
	}
	s.logger.Info().Str("studyID", id).Str("userID", actor.UserID).Msg("Study group deleted")
	return nil
}

// JoinStudy adds the actor to the member list. The duplicate and capacity
// checks run atomically with the write.
func (s *StudyService) JoinStudy(ctx context.Context, actor authz.Actor, id string) (*dto.StudyResponse, error) {
	study, err := s.studyRepo.UpdateWith(ctx, id, func(study *models.StudyGroup) error {
		if study.IsMember(actor.UserID) {
			return apperrors.ErrAlreadyMember
		}
		if study.IsFull() {
			return apperrors.ErrStudyFull
		}
		study.CurrentMembers = append(study.CurrentMembers, actor.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if study == nil {
		return nil, apperrors.ErrStudyNotFound
	}

	s.logger.Debug().Str("studyID", id).Str("userID", actor.UserID).Int("members", len(study.CurrentMembers)).Msg("Joined study group")
	return s.render(ctx, study)
}

// LeaveStudy removes the actor from the member list. The leader cannot leave.
func (s *StudyService) LeaveStudy(ctx context.Context, actor authz.Actor, id string) (*dto.StudyResponse, error) {
	study, err := s.studyRepo.UpdateWith(ctx, id, func(study *models.StudyGroup) error {
		if !study.IsMember(actor.UserID) {
			return apperrors.ErrNotMember
		}
		if study.Leader == actor.UserID {
			return apperrors.ErrLeaderCannotLeave
		}
		study.CurrentMembers = slices.DeleteFunc(study.CurrentMembers, func(member string) bool {
			return member == actor.UserID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if study == nil {
		return nil, apperrors.ErrStudyNotFound
	}

	s.logger.Debug().Str("studyID", id).Str("userID", actor.UserID).Msg("Left study group")
	return s.render(ctx, study)
}

func (s *StudyService) render(ctx context.Context, study *models.StudyGroup) (*dto.StudyResponse, error) {
	users, err := resolveUsers(ctx, s.userRepo, append([]string{study.Leader}, study.CurrentMembers...)...)
	if err != nil {
		return nil, err
	}
	return dto.NewStudyResponse(study, users), nil
}
