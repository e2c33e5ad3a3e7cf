package repositories

import (
	"context"

	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/recordstore"
)

// LocalCommentRepository keeps comments in the record store
type LocalCommentRepository struct {
	store *recordstore.Store
}

// NewLocalCommentRepository creates a new LocalCommentRepository
func NewLocalCommentRepository(store *recordstore.Store) *LocalCommentRepository {
	return &LocalCommentRepository{store: store}
}

func decodeComment(rec recordstore.Record) (*models.Comment, error) {
	comment := &models.Comment{}
	if err := decodeRecord(rec, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Create stores a new comment. The post must exist.
func (r *LocalCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, found := r.store.Posts().FindByID(comment.Post); !found {
		return apperrors.ErrPostNotFound
	}
	rec, err := r.store.Comments().Create(map[string]any{
		"content": comment.Content,
		"author":  comment.Author,
		"post":    comment.Post,
	})
	if err != nil {
		return storageError(err)
	}
	return decodeRecord(rec, comment)
}

// GetByID retrieves a comment by ID
func (r *LocalCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found := r.store.Comments().FindByID(id)
	if !found {
		return nil, nil
	}
	return decodeComment(rec)
}

// ListByPost returns the comments of a post, oldest first
func (r *LocalCommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := r.store.Comments().FindByPost(postID, 1)
	if err != nil {
		return nil, err
	}
	comments := make([]*models.Comment, 0, len(records))
	for _, rec := range records {
		comment, err := decodeComment(rec)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// CountByPost counts the comments of a post
func (r *LocalCommentRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.store.Comments().Count(recordstore.Eq("post", postID))
}

// Delete removes a comment
func (r *LocalCommentRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found, err := r.store.Comments().Delete(id)
	return found, storageError(err)
}
