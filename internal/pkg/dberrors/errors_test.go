package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: UsersUsernameKey}

	assert.True(t, IsDuplicateConstraintError(dup, UsersUsernameKey))
	assert.True(t, IsDuplicateConstraintError(fmt.Errorf("insert user: %w", dup), UsersUsernameKey))
	assert.False(t, IsDuplicateConstraintError(dup, UsersNameKey))
	assert.False(t, IsDuplicateConstraintError(errors.New("23505"), UsersUsernameKey))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolation(nil))
}
