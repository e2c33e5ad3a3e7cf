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
)

var postColumns = []string{
	"id", "title", "content", "category", "author_id", "views", "likes", "created_at", "updated_at",
}

var postTable = sqlfilter.Table{
	"id":        {Name: "id", Kind: sqlfilter.ID},
	"title":     {Name: "title", Kind: sqlfilter.Text},
	"content":   {Name: "content", Kind: sqlfilter.Text},
	"category":  {Name: "category", Kind: sqlfilter.Text},
	"author":    {Name: "author_id", Kind: sqlfilter.ID},
	"views":     {Name: "views", Kind: sqlfilter.Int},
	"likes":     {Name: "likes", Kind: sqlfilter.IDArray},
	"createdAt": {Name: "created_at", Kind: sqlfilter.Time},
	"updatedAt": {Name: "updated_at", Kind: sqlfilter.Time},
}

// PostRepository handles community post database operations
type PostRepository struct {
	db *db.PostgresDB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(database *db.PostgresDB) *PostRepository {
	return &PostRepository{db: database}
}

func scanPost(row pgx.Row) (*models.CommunityPost, error) {
	var (
		post     models.CommunityPost
		id       int64
		author   int64
		likes    []int64
		category string
	)
	err := row.Scan(&id, &post.Title, &post.Content, &category, &author,
		&post.Views, &likes, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	post.ID = formatID(id)
	post.Author = formatID(author)
	post.Likes = formatIDs(likes)
	post.Category = models.PostCategory(category)
	return &post, nil
}

// Create inserts a new post
func (r *PostRepository) Create(ctx context.Context, post *models.CommunityPost) error {
	author, ok := parseID(post.Author)
	if !ok {
		return fmt.Errorf("invalid author id %q", post.Author)
	}

	sql, args, err := squirrel.Insert("community_posts").
		Columns("title", "content", "category", "author_id", "views", "likes").
		Values(post.Title, post.Content, string(post.Category), author, post.Views, parseIDs(post.Likes)).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building post insert: %w", err)
	}

	var id int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&id, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	post.ID = formatID(id)
	post.Likes = nonNilStrings(post.Likes)
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.CommunityPost, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	sql, args, err := squirrel.Select(postColumns...).From("community_posts").Where(squirrel.Eq{"id": n}).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building post query: %w", err)
	}

	post, err := scanPost(r.db.Pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	return post, nil
}

// List retrieves matching posts and the total number of matches
func (r *PostRepository) List(ctx context.Context, opts ListOptions) ([]*models.CommunityPost, int, error) {
	where, err := sqlfilter.Compile(postTable, opts.Filter)
	if err != nil {
		return nil, 0, err
	}
	order, err := sqlfilter.OrderBy(postTable, opts.Sort)
	if err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, r.db, "community_posts", where)
	if err != nil {
		return nil, 0, err
	}

	query := squirrel.Select(postColumns...).From("community_posts").Where(where).OrderBy(order...)
	sql, args, err := paginateQuery(query, opts.Offset, opts.Limit).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building post list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.CommunityPost, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, total, rows.Err()
}

// UpdateWith locks the row, applies fn and writes the result back in one transaction
func (r *PostRepository) UpdateWith(ctx context.Context, id string, fn func(*models.CommunityPost) error) (*models.CommunityPost, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var updated *models.CommunityPost
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := squirrel.Select(postColumns...).From("community_posts").Where(squirrel.Eq{"id": n}).
			Suffix("FOR UPDATE").PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("error building post query: %w", err)
		}
		post, err := scanPost(tx.QueryRow(ctx, sql, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error locking post: %w", err)
		}

		if err := fn(post); err != nil {
			return err
		}

		sql, args, err = squirrel.Update("community_posts").
			Set("title", post.Title).
			Set("content", post.Content).
			Set("category", string(post.Category)).
			Set("views", post.Views).
			Set("likes", parseIDs(post.Likes)).
			Set("updated_at", time.Now().UTC()).
			Where(squirrel.Eq{"id": n}).
			Suffix("RETURNING updated_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building post update: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&post.UpdatedAt); err != nil {
			return fmt.Errorf("error updating post: %w", err)
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteWithComments removes the comments and then the post in one transaction
func (r *PostRepository) DeleteWithComments(ctx context.Context, id string) (bool, int, error) {
	n, ok := parseID(id)
	if !ok {
		return false, 0, nil
	}

	var (
		found    bool
		comments int
	)
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, n)
		if err != nil {
			return fmt.Errorf("error deleting comments: %w", err)
		}
		comments = int(tag.RowsAffected())

		tag, err = tx.Exec(ctx, `DELETE FROM community_posts WHERE id = $1`, n)
		if err != nil {
			return fmt.Errorf("error deleting post: %w", err)
		}
		found = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return found, comments, nil
}
