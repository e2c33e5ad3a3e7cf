package models

import (
	"time"
)

// User defines the user model stored in the 'users' table or users.json
type User struct {
	ID               string    `json:"id" db:"id"`
	Username         string    `json:"username" db:"username"`
	Password         string    `json:"password" db:"password"` // bcrypt hash, never rendered by the API
	Name             string    `json:"name" db:"name"`
	Email            string    `json:"email,omitempty" db:"email"`
	Role             Role      `json:"role,omitempty" db:"role"`
	SecurityQuestion string    `json:"securityQuestion,omitempty" db:"security_question"`
	SecurityAnswer   string    `json:"securityAnswer,omitempty" db:"security_answer"` // bcrypt hash of the normalized answer
	RegistrationDate time.Time `json:"registrationDate" db:"registration_date"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// EffectiveRole returns the role, treating an empty role as RoleUser.
func (u *User) EffectiveRole() Role {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}
