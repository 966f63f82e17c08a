package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/tutor"
)

type tutorRow struct {
	ID           string    `db:"id"`
	FullName     string    `db:"full_name"`
	Email        string    `db:"email"`
	PhoneNumber  string    `db:"phone_number"`
	Bio          string    `db:"bio"`
	Avatar       string    `db:"avatar"`
	PasswordHash []byte    `db:"password_hash"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r tutorRow) toTutor() tutor.Tutor {
	return tutor.Tutor{
		ID:           r.ID,
		FullName:     r.FullName,
		Email:        r.Email,
		PhoneNumber:  r.PhoneNumber,
		Bio:          r.Bio,
		Avatar:       r.Avatar,
		PasswordHash: r.PasswordHash,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromTutor(t tutor.Tutor) tutorRow {
	return tutorRow{
		ID:           t.ID,
		FullName:     t.FullName,
		Email:        t.Email,
		PhoneNumber:  t.PhoneNumber,
		Bio:          t.Bio,
		Avatar:       t.Avatar,
		PasswordHash: t.PasswordHash,
		Active:       t.Active,
		CreatedAt:    t.CreatedAt.UTC(),
		UpdatedAt:    t.UpdatedAt.UTC(),
	}
}

type tutorRepository struct {
	db *sqlx.DB
}

var _ tutor.Repository = (*tutorRepository)(nil) // interface compliance check

func NewTutorRepository(db *sqlx.DB) *tutorRepository {
	return &tutorRepository{db: db}
}

func (repo tutorRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedTutors ...tutor.Tutor) error {
	query := `SELECT EXISTS (SELECT 1 FROM tutors WHERE email = $1 AND NOT (id = ANY($2)))`
	ids := make([]string, 0, len(excludedTutors))
	for _, t := range excludedTutors {
		ids = append(ids, t.ID)
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, email, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking tutor uniqueness")
	}
	if exists {
		return tutor.ErrEmailExists
	}
	return nil
}

func (repo tutorRepository) CreateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	t.ID = uuid.NewString()
	query := `
		INSERT INTO tutors (
			id, full_name, email, phone_number, bio, avatar, password_hash, active,
			created_at, updated_at
		) VALUES (
			:id, :full_name, :email, :phone_number, :bio, :avatar, :password_hash, :active,
			:created_at, :updated_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, fromTutor(t)); err != nil {
		return tutor.Tutor{}, errors.Wrap(err, "inserting tutor")
	}
	return t, nil
}

func (repo tutorRepository) QueryAllTutors(ctx context.Context) ([]tutor.Tutor, error) {
	var rows []tutorRow
	query := `SELECT id, full_name, email, phone_number, bio, avatar, password_hash, active, created_at, updated_at
		FROM tutors ORDER BY full_name`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying tutors")
	}
	tutors := make([]tutor.Tutor, 0, len(rows))
	for _, r := range rows {
		tutors = append(tutors, r.toTutor())
	}
	return tutors, nil
}

func (repo tutorRepository) GetTutor(ctx context.Context, filter tutor.GetFilter) (tutor.Tutor, error) {
	query := `SELECT id, full_name, email, phone_number, bio, avatar, password_hash, active, created_at, updated_at
		FROM tutors WHERE `

	var row tutorRow
	var err error
	switch {
	case filter.ID != "":
		if _, perr := uuid.Parse(filter.ID); perr != nil {
			return tutor.Tutor{}, tutor.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &row, query+`id = $1`, filter.ID)
	case filter.Email != "":
		err = repo.db.GetContext(ctx, &row, query+`email = $1`, filter.Email)
	default:
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return tutor.Tutor{}, tutor.ErrNotFound
		}
		return tutor.Tutor{}, errors.Wrap(err, "finding tutor")
	}
	return row.toTutor(), nil
}

func (repo tutorRepository) UpdateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	query := `
		UPDATE tutors SET
			full_name = :full_name,
			email = :email,
			phone_number = :phone_number,
			bio = :bio,
			avatar = :avatar,
			password_hash = :password_hash,
			active = :active,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, fromTutor(t))
	if err != nil {
		return tutor.Tutor{}, errors.Wrap(err, "updating tutor")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	return t, nil
}

func (repo tutorRepository) DeleteTutor(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM tutors WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting tutor")
	}
	return nil
}
