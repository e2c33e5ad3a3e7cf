package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/recordstore"
)

// Services holds all the service instances
type Services struct {
	AuthService    *AuthService
	StudyService   *StudyService
	NoticeService  *NoticeService
	PostService    *PostService
	CommentService *CommentService
	HealthService  *HealthService
}

// NewServices wires every service onto the given repositories
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, logger zerolog.Logger) *Services {
	authorization := authz.NewAuthorizationService(logger.With().Str("component", "authorization").Logger())
	return &Services{
		AuthService:    NewAuthService(repos.UserRepository, jwtService, logger.With().Str("service", "auth").Logger()),
		StudyService:   NewStudyService(repos.StudyRepository, repos.UserRepository, authorization, logger.With().Str("service", "study").Logger()),
		NoticeService:  NewNoticeService(repos.NoticeRepository, repos.UserRepository, authorization, logger.With().Str("service", "notice").Logger()),
		PostService:    NewPostService(repos.PostRepository, repos.CommentRepository, repos.UserRepository, authorization, logger.With().Str("service", "post").Logger()),
		CommentService: NewCommentService(repos.CommentRepository, repos.PostRepository, repos.UserRepository, authorization, logger.With().Str("service", "comment").Logger()),
		HealthService:  NewHealthService(repos),
	}
}

// resolveUsers loads the users referenced by a response in one lookup
func resolveUsers(ctx context.Context, userRepo repositories.IUserRepository, ids ...string) (map[string]*models.User, error) {
	if len(ids) == 0 {
		return map[string]*models.User{}, nil
	}
	return userRepo.GetByIDs(ctx, ids)
}

// searchFilter builds the case-insensitive substring search over fields.
// A blank term yields nil, i.e. no restriction.
func searchFilter(term string, fields ...string) recordstore.Expr {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	branches := make([]recordstore.Expr, len(fields))
	for i, field := range fields {
		branches[i] = recordstore.Regex(field, term)
	}
	return recordstore.Or(branches...)
}

// eqIfSet restricts field to value unless value is blank
func eqIfSet(field, value string) recordstore.Expr {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return recordstore.Eq(field, value)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
