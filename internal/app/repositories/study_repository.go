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

var studyColumns = []string{
	"id", "title", "description", "category", "max_members", "current_members", "leader_id",
	"deadline", "start_date", "duration", "meeting_type", "location", "tags", "image_url",
	"status", "created_at", "updated_at",
}

var studyTable = sqlfilter.Table{
	"id":             {Name: "id", Kind: sqlfilter.ID},
	"title":          {Name: "title", Kind: sqlfilter.Text},
	"description":    {Name: "description", Kind: sqlfilter.Text},
	"category":       {Name: "category", Kind: sqlfilter.Text},
	"maxMembers":     {Name: "max_members", Kind: sqlfilter.Int},
	"currentMembers": {Name: "current_members", Kind: sqlfilter.IDArray},
	"leader":         {Name: "leader_id", Kind: sqlfilter.ID},
	"deadline":       {Name: "deadline", Kind: sqlfilter.Time},
	"startDate":      {Name: "start_date", Kind: sqlfilter.Time},
	"duration":       {Name: "duration", Kind: sqlfilter.Int},
	"meetingType":    {Name: "meeting_type", Kind: sqlfilter.Text},
	"location":       {Name: "location", Kind: sqlfilter.Text},
	"tags":           {Name: "tags", Kind: sqlfilter.TextArray},
	"imageUrl":       {Name: "image_url", Kind: sqlfilter.Text},
	"status":         {Name: "status", Kind: sqlfilter.Text},
	"createdAt":      {Name: "created_at", Kind: sqlfilter.Time},
	"updatedAt":      {Name: "updated_at", Kind: sqlfilter.Time},
}

// StudyRepository handles study group database operations
type StudyRepository struct {
	db *db.PostgresDB
}

// NewStudyRepository creates a new StudyRepository
func NewStudyRepository(database *db.PostgresDB) *StudyRepository {
	return &StudyRepository{db: database}
}

func scanStudy(row pgx.Row) (*models.StudyGroup, error) {
	var (
		study       models.StudyGroup
		id, leader  int64
		members     []int64
		meetingType string
		status      string
	)
	err := row.Scan(&id, &study.Title, &study.Description, &study.Category, &study.MaxMembers,
		&members, &leader, &study.Deadline, &study.StartDate, &study.Duration, &meetingType,
		&study.Location, &study.Tags, &study.ImageURL, &status, &study.CreatedAt, &study.UpdatedAt)
	if err != nil {
		return nil, err
	}
	study.ID = formatID(id)
	study.Leader = formatID(leader)
	study.CurrentMembers = formatIDs(members)
	study.Tags = nonNilStrings(study.Tags)
	study.MeetingType = models.MeetingType(meetingType)
	study.Status = models.StudyStatus(status)
	return &study, nil
}

// Create inserts a new study group
func (r *StudyRepository) Create(ctx context.Context, study *models.StudyGroup) error {
	leader, ok := parseID(study.Leader)
	if !ok {
		return fmt.Errorf("invalid leader id %q", study.Leader)
	}

	sql, args, err := squirrel.Insert("study_groups").
		Columns("title", "description", "category", "max_members", "current_members", "leader_id",
			"deadline", "start_date", "duration", "meeting_type", "location", "tags", "image_url", "status").
		Values(study.Title, study.Description, study.Category, study.MaxMembers, parseIDs(study.CurrentMembers), leader,
			study.Deadline, study.StartDate, study.Duration, string(study.MeetingType), study.Location,
			nonNilStrings(study.Tags), study.ImageURL, string(study.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building study insert: %w", err)
	}

	var id int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&id, &study.CreatedAt, &study.UpdatedAt); err != nil {
		return fmt.Errorf("error creating study group: %w", err)
	}
	study.ID = formatID(id)
	return nil
}

// GetByID retrieves a study group by ID
func (r *StudyRepository) GetByID(ctx context.Context, id string) (*models.StudyGroup, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	sql, args, err := squirrel.Select(studyColumns...).From("study_groups").Where(squirrel.Eq{"id": n}).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building study query: %w", err)
	}

	study, err := scanStudy(r.db.Pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting study group: %w", err)
	}
	return study, nil
}

// List retrieves matching study groups and the total number of matches
func (r *StudyRepository) List(ctx context.Context, opts ListOptions) ([]*models.StudyGroup, int, error) {
	where, err := sqlfilter.Compile(studyTable, opts.Filter)
	if err != nil {
		return nil, 0, err
	}
	order, err := sqlfilter.OrderBy(studyTable, opts.Sort)
	if err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, r.db, "study_groups", where)
	if err != nil {
		return nil, 0, err
	}

	query := squirrel.Select(studyColumns...).From("study_groups").Where(where).OrderBy(order...)
	sql, args, err := paginateQuery(query, opts.Offset, opts.Limit).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building study list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing study groups: %w", err)
	}
	defer rows.Close()

	studies := make([]*models.StudyGroup, 0)
	for rows.Next() {
		study, err := scanStudy(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning study group: %w", err)
		}
		studies = append(studies, study)
	}
	return studies, total, rows.Err()
}

// UpdateWith locks the row, applies fn and writes the result back in one transaction
func (r *StudyRepository) UpdateWith(ctx context.Context, id string, fn func(*models.StudyGroup) error) (*models.StudyGroup, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var updated *models.StudyGroup
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := squirrel.Select(studyColumns...).From("study_groups").Where(squirrel.Eq{"id": n}).
			Suffix("FOR UPDATE").PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("error building study query: %w", err)
		}
		study, err := scanStudy(tx.QueryRow(ctx, sql, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error locking study group: %w", err)
		}

		if err := fn(study); err != nil {
			return err
		}

		sql, args, err = squirrel.Update("study_groups").
			Set("title", study.Title).
			Set("description", study.Description).
			Set("category", study.Category).
			Set("max_members", study.MaxMembers).
			Set("current_members", parseIDs(study.CurrentMembers)).
			Set("deadline", study.Deadline).
			Set("start_date", study.StartDate).
			Set("duration", study.Duration).
			Set("meeting_type", string(study.MeetingType)).
			Set("location", study.Location).
			Set("tags", nonNilStrings(study.Tags)).
			Set("image_url", study.ImageURL).
			Set("status", string(study.Status)).
			Set("updated_at", time.Now().UTC()).
			Where(squirrel.Eq{"id": n}).
			Suffix("RETURNING updated_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building study update: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&study.UpdatedAt); err != nil {
			return fmt.Errorf("error updating study group: %w", err)
		}
		updated = study
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a study group
func (r *StudyRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "study_groups", id)
}
