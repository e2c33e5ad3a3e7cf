package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/db"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/dberrors"
)

var commentColumns = []string{"id", "content", "author_id", "post_id", "created_at", "updated_at"}

// CommentRepository handles comment database operations
type CommentRepository struct {
	db *db.PostgresDB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(database *db.PostgresDB) *CommentRepository {
	return &CommentRepository{db: database}
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var (
		comment          models.Comment
		id, author, post int64
	)
	if err := row.Scan(&id, &comment.Content, &author, &post, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
		return nil, err
	}
	comment.ID = formatID(id)
	comment.Author = formatID(author)
	comment.Post = formatID(post)
	return &comment, nil
}

// Create inserts a new comment. The post must exist.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	post, ok := parseID(comment.Post)
	if !ok {
		return apperrors.ErrPostNotFound
	}
	author, ok := parseID(comment.Author)
	if !ok {
		return fmt.Errorf("invalid author id %q", comment.Author)
	}

	sql, args, err := squirrel.Insert("comments").
		Columns("content", "author_id", "post_id").
		Values(comment.Content, author, post).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building comment insert: %w", err)
	}

	var id int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&id, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("error creating comment: %w", err)
	}
	comment.ID = formatID(id)
	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	sql, args, err := squirrel.Select(commentColumns...).From("comments").Where(squirrel.Eq{"id": n}).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building comment query: %w", err)
	}

	comment, err := scanComment(r.db.Pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting comment: %w", err)
	}
	return comment, nil
}

// ListByPost returns the comments of a post, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	post, ok := parseID(postID)
	if !ok {
		return comments, nil
	}

	sql, args, err := squirrel.Select(commentColumns...).From("comments").
		Where(squirrel.Eq{"post_id": post}).
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building comment query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// CountByPost counts the comments of a post
func (r *CommentRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	post, ok := parseID(postID)
	if !ok {
		return 0, nil
	}
	return countRows(ctx, r.db, "comments", squirrel.Eq{"post_id": post})
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "comments", id)
}
