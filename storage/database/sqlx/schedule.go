package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/schedule"
)

type scheduleRow struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	Text      string         `db:"text"`
	Slug      string         `db:"slug"`
	Price     float64        `db:"price"`
	Status    string         `db:"status"`
	Images    pq.StringArray `db:"images"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r scheduleRow) toSchedule() schedule.Schedule {
	return schedule.Schedule{
		ID:        r.ID,
		Title:     r.Title,
		Text:      r.Text,
		Slug:      r.Slug,
		Price:     r.Price,
		Status:    r.Status,
		Images:    r.Images,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type sessionRow struct {
	ID         string    `db:"id"`
	ScheduleID string    `db:"schedule_id"`
	StartDate  time.Time `db:"start_date"`
	EndDate    time.Time `db:"end_date"`
	TimeOfDay  string    `db:"time_of_day"`
	Period     string    `db:"period"`
	Capacity   int       `db:"capacity"`
	TutorID    string    `db:"tutor_id"`
}

func (r sessionRow) toSession() schedule.Session {
	return schedule.Session{
		ID:        r.ID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Time:      r.TimeOfDay,
		Period:    r.Period,
		Capacity:  r.Capacity,
		TutorID:   r.TutorID,
	}
}

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (repo scheduleRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedSchedules ...schedule.Schedule) error {
	query := `SELECT EXISTS (SELECT 1 FROM schedules WHERE slug = $1 AND NOT (id = ANY($2)))`
	ids := make([]string, 0, len(excludedSchedules))
	for _, s := range excludedSchedules {
		ids = append(ids, s.ID)
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, slug, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if exists {
		return schedule.ErrSlugExists
	}
	return nil
}

func (repo scheduleRepository) CreateSchedule(ctx context.Context, s schedule.Schedule) (schedule.Schedule, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO schedules (id, title, text, slug, price, status, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err = tx.ExecContext(ctx, query,
		s.ID, s.Title, s.Text, s.Slug, s.Price, s.Status, pq.Array(s.Images), s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "inserting schedule")
	}
	if err = insertSessions(ctx, tx, s.ID, s.Sessions); err != nil {
		return schedule.Schedule{}, err
	}

	if err = tx.Commit(); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "committing schedule")
	}
	return s, nil
}

func insertSessions(ctx context.Context, tx *sqlx.Tx, scheduleID string, sessions []schedule.Session) error {
	query := `
		INSERT INTO sessions (id, schedule_id, start_date, end_date, time_of_day, period, capacity, tutor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			time_of_day = EXCLUDED.time_of_day,
			period = EXCLUDED.period,
			capacity = EXCLUDED.capacity,
			tutor_id = EXCLUDED.tutor_id`
	for _, sess := range sessions {
		if _, err := tx.ExecContext(ctx, query,
			sess.ID, scheduleID, sess.StartDate.UTC(), sess.EndDate.UTC(), sess.Time, sess.Period, sess.Capacity, sess.TutorID,
		); err != nil {
			return errors.Wrap(err, "inserting session")
		}
	}
	return nil
}

func (repo scheduleRepository) loadSessions(ctx context.Context, scheduleIDs ...string) (map[string][]schedule.Session, error) {
	var rows []sessionRow
	query := `SELECT * FROM sessions WHERE schedule_id = ANY($1) ORDER BY start_date, time_of_day`
	if err := repo.db.SelectContext(ctx, &rows, query, pq.Array(scheduleIDs)); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make(map[string][]schedule.Session, len(scheduleIDs))
	for _, r := range rows {
		sessions[r.ScheduleID] = append(sessions[r.ScheduleID], r.toSession())
	}
	return sessions, nil
}

func (repo scheduleRepository) querySchedules(ctx context.Context, query string, args ...interface{}) ([]schedule.Schedule, error) {
	var rows []scheduleRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}
	if len(rows) == 0 {
		return []schedule.Schedule{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	sessions, err := repo.loadSessions(ctx, ids...)
	if err != nil {
		return nil, err
	}

	schedules := make([]schedule.Schedule, 0, len(rows))
	for _, r := range rows {
		s := r.toSchedule()
		s.Sessions = sessions[s.ID]
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func (repo scheduleRepository) QueryAllSchedules(ctx context.Context, includeDrafts bool) ([]schedule.Schedule, error) {
	query := `SELECT * FROM schedules WHERE ($1 OR status = 'published') ORDER BY created_at DESC`
	return repo.querySchedules(ctx, query, includeDrafts)
}

func (repo scheduleRepository) QuerySchedulesByTutor(ctx context.Context, tutorID string) ([]schedule.Schedule, error) {
	query := `
		SELECT DISTINCT s.* FROM schedules s
		JOIN sessions sess ON sess.schedule_id = s.id
		WHERE sess.tutor_id = $1
		ORDER BY s.created_at DESC`
	return repo.querySchedules(ctx, query, tutorID)
}

func (repo scheduleRepository) GetSchedule(ctx context.Context, filter schedule.GetFilter) (schedule.Schedule, error) {
	query := `SELECT * FROM schedules WHERE ($1 OR status = 'published') AND `

	var row scheduleRow
	var err error
	switch {
	case filter.ID != "":
		if _, perr := uuid.Parse(filter.ID); perr != nil {
			return schedule.Schedule{}, schedule.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &row, query+`id = $2`, filter.IncludeDrafts, filter.ID)
	case filter.Slug != "":
		err = repo.db.GetContext(ctx, &row, query+`slug = $2`, filter.IncludeDrafts, filter.Slug)
	default:
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return schedule.Schedule{}, schedule.ErrNotFound
		}
		return schedule.Schedule{}, errors.Wrap(err, "finding schedule")
	}

	sessions, err := repo.loadSessions(ctx, row.ID)
	if err != nil {
		return schedule.Schedule{}, err
	}
	s := row.toSchedule()
	s.Sessions = sessions[s.ID]
	return s, nil
}

func (repo scheduleRepository) UpdateSchedule(ctx context.Context, s schedule.Schedule) (schedule.Schedule, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE schedules SET
			title = $2, text = $3, price = $4, status = $5, images = $6, updated_at = $7
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, query,
		s.ID, s.Title, s.Text, s.Price, s.Status, pq.Array(s.Images), s.UpdatedAt.UTC())
	if err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "updating schedule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.Schedule{}, schedule.ErrNotFound
	}

	// wholesale session replacement: upsert the supplied list, drop the rest
	kept := make([]string, 0, len(s.Sessions))
	for _, sess := range s.Sessions {
		kept = append(kept, sess.ID)
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE schedule_id = $1 AND NOT (id = ANY($2))`,
		s.ID, pq.Array(kept),
	); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "pruning sessions")
	}
	if err = insertSessions(ctx, tx, s.ID, s.Sessions); err != nil {
		return schedule.Schedule{}, err
	}

	if err = tx.Commit(); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "committing schedule")
	}
	return s, nil
}

func (repo scheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	return nil
}
