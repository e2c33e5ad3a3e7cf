package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/db"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/recordstore"
)

// Backend names reported by Repositories.Backend.
const (
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

// ListOptions filters, orders and pages a list query. Both backends honour
// the same filter and sort semantics. Limit 0 means no limit.
type ListOptions struct {
	Filter recordstore.Expr
	Sort   *recordstore.SortKey
	Offset int
	Limit  int
}

// IUserRepository defines user persistence. Lookups return (nil, nil) when
// no user matches.
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// IStudyRepository defines study group persistence.
type IStudyRepository interface {
	Create(ctx context.Context, study *models.StudyGroup) error
	GetByID(ctx context.Context, id string) (*models.StudyGroup, error)
	List(ctx context.Context, opts ListOptions) ([]*models.StudyGroup, int, error)
	// UpdateWith loads the study, lets fn change it and saves the result as
	// one atomic step. An error from fn aborts the update and is returned
	// unchanged. A missing study yields (nil, nil).
	UpdateWith(ctx context.Context, id string, fn func(*models.StudyGroup) error) (*models.StudyGroup, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// INoticeRepository defines notice persistence. List orders pinned notices
// first, then newest first.
type INoticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	GetByID(ctx context.Context, id string) (*models.Notice, error)
	List(ctx context.Context, filter recordstore.Expr, offset, limit int) ([]*models.Notice, int, error)
	UpdateWith(ctx context.Context, id string, fn func(*models.Notice) error) (*models.Notice, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// IPostRepository defines community post persistence.
type IPostRepository interface {
	Create(ctx context.Context, post *models.CommunityPost) error
	GetByID(ctx context.Context, id string) (*models.CommunityPost, error)
	List(ctx context.Context, opts ListOptions) ([]*models.CommunityPost, int, error)
	UpdateWith(ctx context.Context, id string, fn func(*models.CommunityPost) error) (*models.CommunityPost, error)
	// DeleteWithComments removes the post and every comment on it.
	DeleteWithComments(ctx context.Context, id string) (found bool, comments int, err error)
}

// ICommentRepository defines comment persistence.
type ICommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByPost returns the comments of a post, oldest first.
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID string) (int, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository    IUserRepository
	StudyRepository   IStudyRepository
	NoticeRepository  INoticeRepository
	PostRepository    IPostRepository
	CommentRepository ICommentRepository

	backend string
	ping    func(ctx context.Context) error
}

// NewPostgresRepositories initializes all repositories on PostgreSQL
func NewPostgresRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(database),
		StudyRepository:   NewStudyRepository(database),
		NoticeRepository:  NewNoticeRepository(database),
		PostRepository:    NewPostRepository(database),
		CommentRepository: NewCommentRepository(database),
		backend:           BackendPostgres,
		ping:              func(ctx context.Context) error { return database.Pool.Ping(ctx) },
	}
}

// NewLocalRepositories initializes all repositories on the local record store
func NewLocalRepositories(store *recordstore.Store) *Repositories {
	return &Repositories{
		UserRepository:    NewLocalUserRepository(store),
		StudyRepository:   NewLocalStudyRepository(store),
		NoticeRepository:  NewLocalNoticeRepository(store),
		PostRepository:    NewLocalPostRepository(store),
		CommentRepository: NewLocalCommentRepository(store),
		backend:           BackendLocal,
		ping:              func(ctx context.Context) error { return ctx.Err() },
	}
}

// Backend names the storage backend in use.
func (r *Repositories) Backend() string { return r.backend }

// Ping reports whether the backend can serve requests.
func (r *Repositories) Ping(ctx context.Context) error { return r.ping(ctx) }

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil && n > 0
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseIDs(ids []string) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if n, ok := parseID(id); ok {
			out = append(out, n)
		}
	}
	return out
}

func formatIDs(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = formatID(id)
	}
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// storageError turns record store write failures into the application's
// storage error and passes everything else through.
func storageError(err error) error {
	if errors.Is(err, recordstore.ErrPersist) {
		return apperrors.NewStorageError(err)
	}
	return err
}

func decodeRecord(rec recordstore.Record, dst any) error {
	if err := rec.Decode(dst); err != nil {
		return fmt.Errorf("error decoding %s record: %w", rec.ID(), err)
	}
	return nil
}

func timeOrNil(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return recordstore.FormatTime(*t)
}
