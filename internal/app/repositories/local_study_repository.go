package repositories

import (
	"context"

	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/recordstore"
)

// LocalStudyRepository keeps study groups in the record store
type LocalStudyRepository struct {
	store *recordstore.Store
}

// NewLocalStudyRepository creates a new LocalStudyRepository
func NewLocalStudyRepository(store *recordstore.Store) *LocalStudyRepository {
	return &LocalStudyRepository{store: store}
}

func studyFields(s *models.StudyGroup) recordstore.Record {
	return recordstore.Record{
		"title":          s.Title,
		"description":    s.Description,
		"category":       s.Category,
		"maxMembers":     s.MaxMembers,
		"currentMembers": nonNilStrings(s.CurrentMembers),
		"leader":         s.Leader,
		"deadline":       timeOrNil(s.Deadline),
		"startDate":      timeOrNil(s.StartDate),
		"duration":       s.Duration,
		"meetingType":    string(s.MeetingType),
		"location":       s.Location,
		"tags":           nonNilStrings(s.Tags),
		"imageUrl":       s.ImageURL,
		"status":         string(s.Status),
	}
}

func decodeStudy(rec recordstore.Record) (*models.StudyGroup, error) {
	study := &models.StudyGroup{}
	if err := decodeRecord(rec, study); err != nil {
		return nil, err
	}
	return study, nil
}

// Create stores a new study group
func (r *LocalStudyRepository) Create(ctx context.Context, study *models.StudyGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := r.store.Studies().Create(studyFields(study))
	if err != nil {
		return storageError(err)
	}
	return decodeRecord(rec, study)
}

// GetByID retrieves a study group by ID
func (r *LocalStudyRepository) GetByID(ctx context.Context, id string) (*models.StudyGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found := r.store.Studies().FindByID(id)
	if !found {
		return nil, nil
	}
	return decodeStudy(rec)
}

// List retrieves matching study groups and the total number of matches
func (r *LocalStudyRepository) List(ctx context.Context, opts ListOptions) ([]*models.StudyGroup, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	total, err := r.store.Studies().Count(opts.Filter)
	if err != nil {
		return nil, 0, err
	}
	records, err := r.store.Studies().Find(opts.Filter, recordstore.FindOptions{
		Sort:  opts.Sort,
		Skip:  opts.Offset,
		Limit: opts.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	studies := make([]*models.StudyGroup, 0, len(records))
	for _, rec := range records {
		study, err := decodeStudy(rec)
		if err != nil {
			return nil, 0, err
		}
		studies = append(studies, study)
	}
	return studies, total, nil
}

// UpdateWith applies fn to the stored study group under the store lock
func (r *LocalStudyRepository) UpdateWith(ctx context.Context, id string, fn func(*models.StudyGroup) error) (*models.StudyGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, found, err := r.store.Studies().Modify(id, func(current recordstore.Record) (recordstore.Record, error) {
		study, err := decodeStudy(current)
		if err != nil {
			return nil, err
		}
		if err := fn(study); err != nil {
			return nil, err
		}
		return studyFields(study), nil
	})
	if !found {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err)
	}
	return decodeStudy(rec)
}

// Delete removes a study group
func (r *LocalStudyRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found, err := r.store.Studies().Delete(id)
	return found, storageError(err)
}
