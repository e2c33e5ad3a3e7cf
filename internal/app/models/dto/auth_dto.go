package dto

import (
	"time"

	"github.com/yigit/studyhub/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username         string `json:"username" binding:"required,notblank,max=50"`
	Password         string `json:"password" binding:"required,min=6"`
	Name             string `json:"name" binding:"required,notblank,max=50"`
	Email            string `json:"email" binding:"omitempty,email"`
	SecurityQuestion string `json:"securityQuestion" binding:"omitempty,max=200"`
	SecurityAnswer   string `json:"securityAnswer" binding:"omitempty,max=200"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}

// UpdateProfileRequest represents profile update data. The password only
// changes when NewPassword is set, and then CurrentPassword is required.
type UpdateProfileRequest struct {
	Name             string  `json:"name" binding:"required,notblank,max=50"`
	Email            *string `json:"email" binding:"omitempty,max=100"`
	SecurityQuestion *string `json:"securityQuestion" binding:"omitempty,max=200"`
	SecurityAnswer   *string `json:"securityAnswer" binding:"omitempty,max=200"`
	CurrentPassword  string  `json:"currentPassword"`
	NewPassword      string  `json:"newPassword" binding:"omitempty,min=6"`
}

// SecurityQuestionRequest asks for the security question of a user
type SecurityQuestionRequest struct {
	Username string `json:"username" binding:"required,notblank"`
}

// SecurityQuestionResponse carries the question, never the answer
type SecurityQuestionResponse struct {
	Username         string `json:"username"`
	SecurityQuestion string `json:"securityQuestion"`
}

// VerifySecurityAnswerRequest checks a security answer
type VerifySecurityAnswerRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Answer   string `json:"answer" binding:"required,notblank"`
}

// ResetTokenResponse carries the token that authorizes one password reset
type ResetTokenResponse struct {
	ResetToken string `json:"resetToken"`
	ExpiresIn  int    `json:"expiresIn"`
}

// ResetPasswordRequest sets a new password after a verified security answer
type ResetPasswordRequest struct {
	Username    string `json:"username" binding:"required,notblank"`
	ResetToken  string `json:"resetToken" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// UserResponse represents user information rendered by the API
type UserResponse struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	Name                string    `json:"name"`
	Email               string    `json:"email,omitempty"`
	Role                string    `json:"role"`
	SecurityQuestion    string    `json:"securityQuestion,omitempty"`
	HasSecurityQuestion bool      `json:"hasSecurityQuestion"`
	RegistrationDate    time.Time `json:"registrationDate"`
	CreatedAt           time.Time `json:"createdAt"`
}

// NewUserResponse renders a user without secrets
func NewUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:                  user.ID,
		Username:            user.Username,
		Name:                user.Name,
		Email:               user.Email,
		Role:                string(user.EffectiveRole()),
		SecurityQuestion:    user.SecurityQuestion,
		HasSecurityQuestion: user.SecurityQuestion != "" && user.SecurityAnswer != "",
		RegistrationDate:    user.RegistrationDate,
		CreatedAt:           user.CreatedAt,
	}
}

// UserSummary is the public view of a user embedded in other resources
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// NewUserSummary renders the user with the given id. A deleted user keeps
// its id with an empty name.
func NewUserSummary(id string, users map[string]*models.User) UserSummary {
	summary := UserSummary{ID: id}
	if user, ok := users[id]; ok && user != nil {
		summary.Name = user.Name
		summary.Username = user.Username
	}
	return summary
}
