package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/admin"
)

type adminRow struct {
	ID           string       `db:"id"`
	FullName     string       `db:"full_name"`
	Email        string       `db:"email"`
	PhoneNumber  string       `db:"phone_number"`
	Role         string       `db:"role"`
	PasswordHash []byte       `db:"password_hash"`
	Active       bool         `db:"active"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (r adminRow) toAdmin() admin.Admin {
	return admin.Admin{
		ID:           r.ID,
		FullName:     r.FullName,
		Email:        r.Email,
		PhoneNumber:  r.PhoneNumber,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

func fromAdmin(adm admin.Admin) adminRow {
	return adminRow{
		ID:           adm.ID,
		FullName:     adm.FullName,
		Email:        adm.Email,
		PhoneNumber:  adm.PhoneNumber,
		Role:         adm.Role,
		PasswordHash: adm.PasswordHash,
		Active:       adm.Active,
		CreatedAt:    adm.CreatedAt.UTC(),
		UpdatedAt:    adm.UpdatedAt.UTC(),
		LastLogin:    nullTime(adm.LastLogin),
	}
}

type adminRepository struct {
	db *sqlx.DB
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(db *sqlx.DB) *adminRepository {
	return &adminRepository{db: db}
}

func (repo adminRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedAdmins ...admin.Admin) error {
	query := `SELECT EXISTS (SELECT 1 FROM admins WHERE email = $1 AND NOT (id = ANY($2)))`
	ids := make([]string, 0, len(excludedAdmins))
	for _, a := range excludedAdmins {
		ids = append(ids, a.ID)
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, email, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking admin uniqueness")
	}
	if exists {
		return admin.ErrEmailExists
	}
	return nil
}

func (repo adminRepository) CreateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	adm.ID = uuid.NewString()
	query := `
		INSERT INTO admins (
			id, full_name, email, phone_number, role, password_hash, active,
			created_at, updated_at, last_login
		) VALUES (
			:id, :full_name, :email, :phone_number, :role, :password_hash, :active,
			:created_at, :updated_at, :last_login
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, fromAdmin(adm)); err != nil {
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}

func (repo adminRepository) QueryAllAdmins(ctx context.Context) ([]admin.Admin, error) {
	var rows []adminRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM admins ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying admins")
	}
	admins := make([]admin.Admin, 0, len(rows))
	for _, r := range rows {
		admins = append(admins, r.toAdmin())
	}
	return admins, nil
}

func (repo adminRepository) GetAdmin(ctx context.Context, filter admin.GetFilter) (admin.Admin, error) {
	var row adminRow
	var err error
	switch {
	case filter.ID != "":
		if _, perr := uuid.Parse(filter.ID); perr != nil {
			return admin.Admin{}, admin.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &row, `SELECT * FROM admins WHERE id = $1`, filter.ID)
	case filter.Email != "":
		err = repo.db.GetContext(ctx, &row, `SELECT * FROM admins WHERE email = $1`, filter.Email)
	default:
		return admin.Admin{}, admin.ErrNotFound
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return admin.Admin{}, admin.ErrNotFound
		}
		return admin.Admin{}, errors.Wrap(err, "finding admin")
	}
	return row.toAdmin(), nil
}

func (repo adminRepository) UpdateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	query := `
		UPDATE admins SET
			full_name = :full_name,
			email = :email,
			phone_number = :phone_number,
			role = :role,
			password_hash = :password_hash,
			active = :active,
			updated_at = :updated_at,
			last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, fromAdmin(adm))
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "updating admin")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return admin.Admin{}, admin.ErrNotFound
	}
	return adm, nil
}

func (repo adminRepository) DeleteAdmin(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting admin")
	}
	return nil
}
