package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/repositories/sqlfilter"
	"github.com/yigit/studyhub/internal/db"
	"github.com/yigit/studyhub/internal/recordstore"
)

var noticeColumns = []string{
	"id", "title", "content", "category", "author_id", "is_pinned", "views", "created_at", "updated_at",
}

var noticeTable = sqlfilter.Table{
	"id":        {Name: "id", Kind: sqlfilter.ID},
	"title":     {Name: "title", Kind: sqlfilter.Text},
	"content":   {Name: "content", Kind: sqlfilter.Text},
	"category":  {Name: "category", Kind: sqlfilter.Text},
	"author":    {Name: "author_id", Kind: sqlfilter.ID},
	"isPinned":  {Name: "is_pinned", Kind: sqlfilter.Bool},
	"views":     {Name: "views", Kind: sqlfilter.Int},
	"createdAt": {Name: "created_at", Kind: sqlfilter.Time},
	"updatedAt": {Name: "updated_at", Kind: sqlfilter.Time},
}

// NoticeRepository handles notice database operations
type NoticeRepository struct {
	db *db.PostgresDB
}

// NewNoticeRepository creates a new NoticeRepository
func NewNoticeRepository(database *db.PostgresDB) *NoticeRepository {
	return &NoticeRepository{db: database}
}

func scanNotice(row pgx.Row) (*models.Notice, error) {
	var (
		notice   models.Notice
		id       int64
		author   int64
		category string
	)
	err := row.Scan(&id, &notice.Title, &notice.Content, &category, &author,
		&notice.IsPinned, &notice.Views, &notice.CreatedAt, &notice.UpdatedAt)
	if err != nil {
		return nil, err
	}
	notice.ID = formatID(id)
	notice.Author = formatID(author)
	notice.Category = models.NoticeCategory(category)
	return &notice, nil
}

// Create inserts a new notice
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	author, ok := parseID(notice.Author)
	if !ok {
		return fmt.Errorf("invalid author id %q", notice.Author)
	}

	sql, args, err := squirrel.Insert("notices").
		Columns("title", "content", "category", "author_id", "is_pinned", "views").
		Values(notice.Title, notice.Content, string(notice.Category), author, notice.IsPinned, notice.Views).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building notice insert: %w", err)
	}

	var id int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&id, &notice.CreatedAt, &notice.UpdatedAt); err != nil {
		return fmt.Errorf("error creating notice: %w", err)
	}
	notice.ID = formatID(id)
	return nil
}

// GetByID retrieves a notice by ID
func (r *NoticeRepository) GetByID(ctx context.Context, id string) (*models.Notice, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	sql, args, err := squirrel.Select(noticeColumns...).From("notices").Where(squirrel.Eq{"id": n}).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building notice query: %w", err)
	}

	notice, err := scanNotice(r.db.Pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting notice: %w", err)
	}
	return notice, nil
}

// List retrieves matching notices, pinned first, then newest first
func (r *NoticeRepository) List(ctx context.Context, filter recordstore.Expr, offset, limit int) ([]*models.Notice, int, error) {
	where, err := sqlfilter.Compile(noticeTable, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, r.db, "notices", where)
	if err != nil {
		return nil, 0, err
	}

	query := squirrel.Select(noticeColumns...).From("notices").Where(where).
		OrderBy("is_pinned DESC", "created_at DESC", "id ASC")
	sql, args, err := paginateQuery(query, offset, limit).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building notice list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notices: %w", err)
	}
	defer rows.Close()

	notices := make([]*models.Notice, 0)
	for rows.Next() {
		notice, err := scanNotice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notice: %w", err)
		}
		notices = append(notices, notice)
	}
	return notices, total, rows.Err()
}

// UpdateWith locks the row, applies fn and writes the result back in one transaction
func (r *NoticeRepository) UpdateWith(ctx context.Context, id string, fn func(*models.Notice) error) (*models.Notice, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var updated *models.Notice
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := squirrel.Select(noticeColumns...).From("notices").Where(squirrel.Eq{"id": n}).
			Suffix("FOR UPDATE").PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("error building notice query: %w", err)
		}
		notice, err := scanNotice(tx.QueryRow(ctx, sql, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error locking notice: %w", err)
		}

		if err := fn(notice); err != nil {
			return err
		}

		sql, args, err = squirrel.Update("notices").
			Set("title", notice.Title).
			Set("content", notice.Content).
			Set("category", string(notice.Category)).
			Set("is_pinned", notice.IsPinned).
			Set("views", notice.Views).
			Set("updated_at", time.Now().UTC()).
			Where(squirrel.Eq{"id": n}).
			Suffix("RETURNING updated_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building notice update: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&notice.UpdatedAt); err != nil {
			return fmt.Errorf("error updating notice: %w", err)
		}
		updated = notice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a notice
func (r *NoticeRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "notices", id)
}
