package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/pkg/validation"
)

// Auth service errors
var (
	ErrInvalidLogin        = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid username or password").WithCode("INVALID_LOGIN")
	ErrCurrentPasswordMiss = apperrors.NewCustomError(apperrors.ErrBadRequest, "current password is required to set a new password").WithCode("CURRENT_PASSWORD_REQUIRED")
)

// AuthService handles registration, login, profiles and password recovery
type AuthService struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.IUserRepository, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

func validatePassword(password string) error {
	if !validation.NewStringValidation("password", password).WithMinLength(validation.PasswordMinLength).Validate() {
		return apperrors.ErrInvalidPassword
	}
	return nil
}

// Register creates a user account and logs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	name := strings.TrimSpace(req.Name)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "username is required")
	}
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrUsernameAlreadyExists
	}
	if existing, err := s.userRepo.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrNameAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: hashedPassword,
		Name:     name,
		Email:    strings.TrimSpace(req.Email),
		Role:     models.RoleUser,
	}
	if err := setSecurityQuestion(user, req.SecurityQuestion, req.SecurityAnswer); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("userID", user.ID).Str("username", user.Username).Msg("User registered")

	return s.authResponse(user)
}

// setSecurityQuestion stores the question with a hash of the answer. Both
// empty clears them; one without the other is rejected.
func setSecurityQuestion(user *models.User, question, answer string) error {
	question = strings.TrimSpace(question)
	if question == "" && strings.TrimSpace(answer) == "" {
		user.SecurityQuestion = ""
		user.SecurityAnswer = ""
		return nil
	}
	if question == "" {
		return apperrors.NewValidationError("securityQuestion", "securityQuestion is required when an answer is given")
	}
	if auth.NormalizeSecurityAnswer(answer) == "" {
		return apperrors.NewValidationError("securityAnswer", "securityAnswer is required when a question is given")
	}
	hashed, err := auth.HashSecurityAnswer(answer)
	if err != nil {
		return err
	}
	user.SecurityQuestion = question
	user.SecurityAnswer = hashed
	return nil
}

// Login checks the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Str("username", req.Username).Msg("Login rejected")
		return nil, ErrInvalidLogin
	}
	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to generate access token")
		return nil, err
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}

// GetCurrentUser returns the profile of the authenticated user
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return dto.NewUserResponse(user), nil
}

// UpdateProfile changes name, email, security question and optionally the password
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if name != user.Name {
		if existing, err := s.userRepo.GetByName(ctx, name); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != user.ID {
			return nil, apperrors.ErrNameAlreadyExists
		}
		user.Name = name
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return nil, ErrCurrentPasswordMiss
		}
		if !auth.CheckPassword(user.Password, req.CurrentPassword) {
			return nil, apperrors.ErrWrongCurrentPassword
		}
		if err := validatePassword(req.NewPassword); err != nil {
			return nil, err
		}
		hashed, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		rule := validation.NewStringValidation("email", email).
			WithRequired(false).
			WithPattern(validation.CompiledPatterns.Email)
		if err := rule.Err(); err != nil {
			return nil, apperrors.NewValidationError("email", err.Error())
		}
		user.Email = email
	}

	if req.SecurityQuestion != nil || req.SecurityAnswer != nil {
		question := user.SecurityQuestion
		if req.SecurityQuestion != nil {
			question = *req.SecurityQuestion
		}
		if req.SecurityAnswer == nil {
			// Changing only the question keeps the stored answer.
			user.SecurityQuestion = strings.TrimSpace(question)
			if user.SecurityQuestion == "" {
				user.SecurityAnswer = ""
			}
		} else if err := setSecurityQuestion(user, question, *req.SecurityAnswer); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("userID", user.ID).Msg("Profile updated")
	return dto.NewUserResponse(user), nil
}

func (s *AuthService) userWithSecurityQuestion(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if user.SecurityQuestion == "" || user.SecurityAnswer == "" {
		return nil, apperrors.ErrSecurityQuestionNotSet
	}
	return user, nil
}

// GetSecurityQuestion returns the security question of username
func (s *AuthService) GetSecurityQuestion(ctx context.Context, username string) (*dto.SecurityQuestionResponse, error) {
	user, err := s.userWithSecurityQuestion(ctx, username)
	if err != nil {
		return nil, err
	}
	return &dto.SecurityQuestionResponse{
		Username:         user.Username,
		SecurityQuestion: user.SecurityQuestion,
	}, nil
}

// VerifySecurityAnswer checks the answer, ignoring case and whitespace, and
// issues a short-lived token that authorizes one password reset.
func (s *AuthService) VerifySecurityAnswer(ctx context.Context, req *dto.VerifySecurityAnswerRequest) (*dto.ResetTokenResponse, error) {
	user, err := s.userWithSecurityQuestion(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if !auth.CheckSecurityAnswer(user.SecurityAnswer, req.Answer) {
		s.logger.Warn().Str("username", user.Username).Msg("Security answer mismatch")
		return nil, apperrors.ErrSecurityAnswerMismatch
	}

	token, err := s.jwtService.GeneratePasswordResetToken(user.Username)
	if err != nil {
		return nil, err
	}
	return &dto.ResetTokenResponse{
		ResetToken: token,
		ExpiresIn:  s.jwtService.ResetTokenTTLSeconds(),
	}, nil
}

// ResetPassword sets a new password for the user the reset token was issued to
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	username := strings.TrimSpace(req.Username)
	if err := s.jwtService.ValidateResetToken(req.ResetToken, username); err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) {
			return apperrors.ErrInvalidPasswordResetToken
		}
		return err
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("userID", user.ID).Msg("Password reset")
	return nil
}
