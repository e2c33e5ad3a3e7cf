package auth

import (
	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

// Authorization errors
var (
	ErrAdminOnly = apperrors.NewCustomError(apperrors.ErrPermissionDenied, "only administrators can perform this action").WithCode("ADMIN_ONLY")
)

// Actor is the authenticated user a request acts for
type Actor struct {
	UserID string
	Role   models.Role
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// AuthorizationService handles ownership and role checks
type AuthorizationService struct {
	logger zerolog.Logger
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{logger: logger}
}

// RequireAdmin fails unless the actor is an administrator
func (s *AuthorizationService) RequireAdmin(actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	s.logger.Warn().Str("userID", actor.UserID).Msg("Admin action denied")
	return ErrAdminOnly
}

// RequireOwner fails unless the actor owns the resource. message names who
// may act, e.g. "only the leader can update this study group".
func (s *AuthorizationService) RequireOwner(actor Actor, ownerID, message string) error {
	if actor.UserID != "" && actor.UserID == ownerID {
		return nil
	}
	s.logger.Warn().Str("userID", actor.UserID).Str("ownerID", ownerID).Msg("Owner action denied")
	return apperrors.NewCustomError(apperrors.ErrPermissionDenied, message).WithCode("NOT_OWNER")
}

// RequireOwnerOrAdmin fails unless the actor owns the resource or is an administrator
func (s *AuthorizationService) RequireOwnerOrAdmin(actor Actor, ownerID, message string) error {
	if actor.IsAdmin() {
		return nil
	}
	return s.RequireOwner(actor, ownerID, message)
}
