package repositories

import (
	"context"
	"sort"

	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/recordstore"
)

// LocalNoticeRepository keeps notices in the record store
type LocalNoticeRepository struct {
	store *recordstore.Store
}

// NewLocalNoticeRepository creates a new LocalNoticeRepository
func NewLocalNoticeRepository(store *recordstore.Store) *LocalNoticeRepository {
	return &LocalNoticeRepository{store: store}
}

func noticeFields(n *models.Notice) recordstore.Record {
	return recordstore.Record{
		"title":    n.Title,
		"content":  n.Content,
		"category": string(n.Category),
		"author":   n.Author,
		"isPinned": n.IsPinned,
		"views":    n.Views,
	}
}

func decodeNotice(rec recordstore.Record) (*models.Notice, error) {
	notice := &models.Notice{}
	if err := decodeRecord(rec, notice); err != nil {
		return nil, err
	}
	return notice, nil
}

// Create stores a new notice
func (r *LocalNoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := r.store.Notices().Create(noticeFields(notice))
	if err != nil {
		return storageError(err)
	}
	return decodeRecord(rec, notice)
}

// GetByID retrieves a notice by ID
func (r *LocalNoticeRepository) GetByID(ctx context.Context, id string) (*models.Notice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found := r.store.Notices().FindByID(id)
	if !found {
		return nil, nil
	}
	return decodeNotice(rec)
}

// List returns pinned notices first, each group newest first. The store
// sorts by one key only, so the pinned split and the page cut happen here.
func (r *LocalNoticeRepository) List(ctx context.Context, filter recordstore.Expr, offset, limit int) ([]*models.Notice, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	records, err := r.store.Notices().Find(filter, recordstore.FindOptions{Sort: recordstore.Desc("createdAt")})
	if err != nil {
		return nil, 0, err
	}

	notices := make([]*models.Notice, 0, len(records))
	for _, rec := range records {
		notice, err := decodeNotice(rec)
		if err != nil {
			return nil, 0, err
		}
		notices = append(notices, notice)
	}
	sort.SliceStable(notices, func(i, j int) bool {
		return notices[i].IsPinned && !notices[j].IsPinned
	})

	total := len(notices)
	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	return notices[start:end], total, nil
}

// UpdateWith applies fn to the stored notice under the store lock
func (r *LocalNoticeRepository) UpdateWith(ctx context.Context, id string, fn func(*models.Notice) error) (*models.Notice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found, err := r.store.Notices().Modify(id, func(current recordstore.Record) (recordstore.Record, error) {
		notice, err := decodeNotice(current)
		if err != nil {
			return nil, err
		}
		if err := fn(notice); err != nil {
			return nil, err
		}
		return noticeFields(notice), nil
	})
	if !found {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err)
	}
	return decodeNotice(rec)
}

// Delete removes a notice
func (r *LocalNoticeRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found, err := r.store.Notices().Delete(id)
	return found, storageError(err)
}
