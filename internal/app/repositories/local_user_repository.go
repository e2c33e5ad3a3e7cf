package repositories

import (
	"context"

	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/recordstore"
)

// LocalUserRepository keeps users in the record store
type LocalUserRepository struct {
	store *recordstore.Store
}

// NewLocalUserRepository creates a new LocalUserRepository
func NewLocalUserRepository(store *recordstore.Store) *LocalUserRepository {
	return &LocalUserRepository{store: store}
}

func userFields(u *models.User) recordstore.Record {
	rec := recordstore.Record{
		"username":         u.Username,
		"password":         u.Password,
		"name":             u.Name,
		"email":            u.Email,
		"role":             string(u.EffectiveRole()),
		"securityQuestion": u.SecurityQuestion,
		"securityAnswer":   u.SecurityAnswer,
	}
	if !u.RegistrationDate.IsZero() {
		rec["registrationDate"] = recordstore.FormatTime(u.RegistrationDate)
	}
	return rec
}

// Create stores a new user and fills in its id and timestamps. Taken
// usernames and names are rejected like the unique constraints in
// PostgreSQL would.
func (r *LocalUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if existing, err := r.GetByUsername(ctx, user.Username); err != nil {
		return err
	} else if existing != nil {
		return apperrors.ErrUsernameAlreadyExists
	}
	if existing, err := r.GetByName(ctx, user.Name); err != nil {
		return err
	} else if existing != nil {
		return apperrors.ErrNameAlreadyExists
	}

	rec, err := r.store.Users().Create(userFields(user))
	if err != nil {
		return storageError(err)
	}
	return decodeRecord(rec, user)
}

// GetByID retrieves a user by ID
func (r *LocalUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found := r.store.Users().FindByID(id)
	if !found {
		return nil, nil
	}
	return decodeUser(rec)
}

// GetByUsername retrieves a user by username
func (r *LocalUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, recordstore.Eq("username", username))
}

// GetByName retrieves a user by display name
func (r *LocalUserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	return r.findOne(ctx, recordstore.Eq("name", name))
}

func (r *LocalUserRepository) findOne(ctx context.Context, filter recordstore.Expr) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found, err := r.store.Users().FindOne(filter)
	if err != nil || !found {
		return nil, err
	}
	return decodeUser(rec)
}

// GetByIDs retrieves the users with the given ids, keyed by id. Unknown
// ids are left out.
func (r *LocalUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if _, seen := users[id]; seen {
			continue
		}
		rec, found := r.store.Users().FindByID(id)
		if !found {
			continue
		}
		user, err := decodeUser(rec)
		if err != nil {
			return nil, err
		}
		users[id] = user
	}
	return users, nil
}

// Update saves the mutable fields of user
func (r *LocalUserRepository) Update(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, found, err := r.store.Users().Update(user.ID, userFields(user))
	if err != nil {
		return storageError(err)
	}
	if !found {
		return apperrors.ErrUserNotFound
	}
	return decodeRecord(rec, user)
}

func decodeUser(rec recordstore.Record) (*models.User, error) {
	user := &models.User{}
	if err := decodeRecord(rec, user); err != nil {
		return nil, err
	}
	return user, nil
}
