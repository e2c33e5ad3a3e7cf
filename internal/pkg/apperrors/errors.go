package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// User errors
var (
	ErrUserNotFound           = NewCustomError(ErrResourceNotFound, "user not found").WithCode("USER_NOT_FOUND")
	ErrUsernameAlreadyExists  = NewCustomError(ErrResourceAlreadyExists, "username is already taken").WithCode("USERNAME_TAKEN")
	ErrNameAlreadyExists      = NewCustomError(ErrResourceAlreadyExists, "name is already taken").WithCode("NAME_TAKEN")
	ErrInvalidPassword        = NewCustomError(ErrValidationFailed, "password must be at least 6 characters").WithCode("WEAK_PASSWORD")
	ErrWrongCurrentPassword   = NewCustomError(ErrInvalidCredentials, "current password does not match").WithCode("WRONG_PASSWORD")
	ErrSecurityQuestionNotSet = NewCustomError(ErrBadRequest, "security question is not set, contact an administrator").WithCode("NO_SECURITY_QUESTION")
	ErrSecurityAnswerMismatch = NewCustomError(ErrInvalidCredentials, "security answer does not match").WithCode("WRONG_ANSWER")
)

// Study group errors
var (
	ErrStudyNotFound      = NewCustomError(ErrResourceNotFound, "study group not found").WithCode("STUDY_NOT_FOUND")
	ErrAlreadyMember      = NewCustomError(ErrConflict, "already a member of this study group").WithCode("ALREADY_MEMBER")
	ErrStudyFull          = NewCustomError(ErrConflict, "study group has reached its member limit").WithCode("STUDY_FULL")
	ErrNotMember          = NewCustomError(ErrBadRequest, "not a member of this study group").WithCode("NOT_MEMBER")
	ErrLeaderCannotLeave  = NewCustomError(ErrBadRequest, "the leader cannot leave the study group").WithCode("LEADER_CANNOT_LEAVE")
	ErrMaxMembersTooSmall = NewCustomError(ErrValidationFailed, "maxMembers is below the current member count").WithCode("MAX_MEMBERS_TOO_SMALL")
)

// Community errors
var (
	ErrNoticeNotFound  = NewCustomError(ErrResourceNotFound, "notice not found").WithCode("NOTICE_NOT_FOUND")
	ErrPostNotFound    = NewCustomError(ErrResourceNotFound, "post not found").WithCode("POST_NOT_FOUND")
	ErrCommentNotFound = NewCustomError(ErrResourceNotFound, "comment not found").WithCode("COMMENT_NOT_FOUND")
)

// Password reset errors
var (
	ErrInvalidPasswordResetToken = errors.New("invalid or expired password reset token")
)

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a new custom error for invalid input on a field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewStorageError wraps a backend failure so handlers report it as unavailable storage
func NewStorageError(err error) error {
	return &CustomError{
		Err:     errors.Join(ErrStorageUnavailable, err),
		Message: "storage is temporarily unavailable",
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
