package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/event"
)

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo eventRepository) CheckSlugUniqueness(ctx context.Context, slug string) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug,
	); err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if exists {
		return event.ErrSlugExists
	}
	return nil
}

func (repo eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	query := `
		INSERT INTO events (id, title, text, slug, image, created_at, updated_at)
		VALUES (:id, :title, :text, :slug, :image, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, e); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return event.Event{}, event.ErrSlugExists
		}
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return e, nil
}

func (repo eventRepository) QueryAllEvents(ctx context.Context) ([]event.Event, error) {
	var events []event.Event
	if err := repo.db.SelectContext(ctx, &events, `SELECT * FROM events ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return events, nil
}

func (repo eventRepository) GetEvent(ctx context.Context, idOrSlug string) (event.Event, error) {
	var e event.Event
	query := `SELECT * FROM events WHERE slug = $1`
	if _, err := uuid.Parse(idOrSlug); err == nil {
		query = `SELECT * FROM events WHERE id = $1`
	}
	if err := repo.db.GetContext(ctx, &e, query, idOrSlug); err != nil {
		if err == sql.ErrNoRows {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, errors.Wrap(err, "finding event")
	}
	return e, nil
}

func (repo eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	query := `
		UPDATE events SET title = :title, text = :text, image = :image, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, e)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return e, nil
}

func (repo eventRepository) DeleteEvent(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return nil
}
