package repositories

import (
	"context"

	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/recordstore"
)

// LocalPostRepository keeps community posts in the record store
type LocalPostRepository struct {
	store *recordstore.Store
}

// NewLocalPostRepository creates a new LocalPostRepository
func NewLocalPostRepository(store *recordstore.Store) *LocalPostRepository {
	return &LocalPostRepository{store: store}
}

func postFields(p *models.CommunityPost) recordstore.Record {
	return recordstore.Record{
		"title":    p.Title,
		"content":  p.Content,
		"category": string(p.Category),
		"author":   p.Author,
		"views":    p.Views,
		"likes":    nonNilStrings(p.Likes),
	}
}

func decodePost(rec recordstore.Record) (*models.CommunityPost, error) {
	post := &models.CommunityPost{}
	if err := decodeRecord(rec, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Create stores a new post
func (r *LocalPostRepository) Create(ctx context.Context, post *models.CommunityPost) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := r.store.Posts().Create(postFields(post))
	if err != nil {
		return storageError(err)
	}
	return decodeRecord(rec, post)
}

// GetByID retrieves a post by ID
func (r *LocalPostRepository) GetByID(ctx context.Context, id string) (*models.CommunityPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found := r.store.Posts().FindByID(id)
	if !found {
		return nil, nil
	}
	return decodePost(rec)
}

// List retrieves matching posts and the total number of matches
func (r *LocalPostRepository) List(ctx context.Context, opts ListOptions) ([]*models.CommunityPost, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	total, err := r.store.Posts().Count(opts.Filter)
	if err != nil {
		return nil, 0, err
	}
	records, err := r.store.Posts().Find(opts.Filter, recordstore.FindOptions{
		Sort:  opts.Sort,
		Skip:  opts.Offset,
		Limit: opts.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	posts := make([]*models.CommunityPost, 0, len(records))
	for _, rec := range records {
		post, err := decodePost(rec)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	return posts, total, nil
}

// UpdateWith applies fn to the stored post under the store lock
func (r *LocalPostRepository) UpdateWith(ctx context.Context, id string, fn func(*models.CommunityPost) error) (*models.CommunityPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found, err := r.store.Posts().Modify(id, func(current recordstore.Record) (recordstore.Record, error) {
		post, err := decodePost(current)
		if err != nil {
			return nil, err
		}
		if err := fn(post); err != nil {
			return nil, err
		}
		return postFields(post), nil
	})
	if !found {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err)
	}
	return decodePost(rec)
}

// DeleteWithComments removes the post after all of its comments
func (r *LocalPostRepository) DeleteWithComments(ctx context.Context, id string) (bool, int, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}
	found, comments, err := r.store.DeletePostCascade(id)
	return found, comments, storageError(err)
}
