package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/db"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/dberrors"
)

var userColumns = []string{
	"id", "username", "password", "name", "email", "role",
	"security_question", "security_answer", "registration_date", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *db.PostgresDB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{db: database}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user models.User
		id   int64
		role string
	)
	err := row.Scan(&id, &user.Username, &user.Password, &user.Name, &user.Email, &role,
		&user.SecurityQuestion, &user.SecurityAnswer, &user.RegistrationDate, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.ID = formatID(id)
	user.Role = models.Role(role)
	return &user, nil
}

// mapUserWriteError translates unique violations into domain errors
func mapUserWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, dberrors.UsersUsernameKey):
		return apperrors.ErrUsernameAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, dberrors.UsersNameKey):
		return apperrors.ErrNameAlreadyExists
	default:
		return err
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	registered := user.RegistrationDate
	if registered.IsZero() {
		registered = time.Now().UTC()
	}

	sql, args, err := squirrel.Insert("users").
		Columns("username", "password", "name", "email", "role", "security_question", "security_answer", "registration_date").
		Values(user.Username, user.Password, user.Name, user.Email, string(user.EffectiveRole()),
			user.SecurityQuestion, user.SecurityAnswer, registered).
		Suffix("RETURNING id, registration_date, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building user insert: %w", err)
	}

	var id int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&id, &user.RegistrationDate, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if mapped := mapUserWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	user.ID = formatID(id)
	user.Role = user.EffectiveRole()
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := squirrel.Select(userColumns...).From("users").Where(where).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building user query: %w", err)
	}

	user, err := scanUser(r.db.Pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return r.getOne(ctx, squirrel.Eq{"id": n})
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// GetByName retrieves a user by display name
func (r *UserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

// GetByIDs retrieves the users with the given ids, keyed by id
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	numeric := parseIDs(ids)
	if len(numeric) == 0 {
		return users, nil
	}

	sql, args, err := squirrel.Select(userColumns...).From("users").Where(squirrel.Eq{"id": numeric}).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building user query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error getting users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

// Update saves the mutable fields of user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	n, ok := parseID(user.ID)
	if !ok {
		return apperrors.ErrUserNotFound
	}

	sql, args, err := squirrel.Update("users").
		Set("password", user.Password).
		Set("name", user.Name).
		Set("email", user.Email).
		Set("role", string(user.EffectiveRole())).
		Set("security_question", user.SecurityQuestion).
		Set("security_answer", user.SecurityAnswer).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": n}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building user update: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrUserNotFound
	}
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}
