package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringValidation(t *testing.T) {
	tests := []struct {
		name    string
		rule    *StringValidation
		wantErr string
	}{
		{"required and empty", NewStringValidation("username", ""), "username is required"},
		{"optional and empty", NewStringValidation("email", "").WithRequired(false).WithPattern(CompiledPatterns.Email), ""},
		{"too short", NewStringValidation("password", "12345").WithMinLength(PasswordMinLength), "password must be at least 6 characters"},
		{"long enough", NewStringValidation("password", "123456").WithMinLength(PasswordMinLength), ""},
		{"counts characters", NewStringValidation("name", "스터디그룹").WithMaxLength(5), ""},
		{"too long", NewStringValidation("name", "abcdef").WithMaxLength(5), "name must be at most 5 characters"},
		{"bad pattern", NewStringValidation("email", "nope").WithPattern(CompiledPatterns.Email), "email has an invalid format"},
		{"good pattern", NewStringValidation("email", "Kim@Example.com").WithPattern(CompiledPatterns.Email), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Err()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.True(t, tt.rule.Validate())
				return
			}
			assert.EqualError(t, err, tt.wantErr)
			assert.False(t, tt.rule.Validate())
		})
	}
}

func TestNumericValidation(t *testing.T) {
	rule := func(v int) *NumericValidation {
		return NewNumericValidation("maxMembers", v).WithMin(2).WithMax(20)
	}

	assert.EqualError(t, rule(1).Err(), "maxMembers must be at least 2")
	assert.EqualError(t, rule(21).Err(), "maxMembers must be at most 20")
	assert.True(t, rule(2).Validate())
	assert.True(t, rule(20).Validate())
	assert.True(t, NewNumericValidation("any", -5).Validate())
}
