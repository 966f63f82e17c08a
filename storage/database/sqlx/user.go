package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/user"
)

type userRow struct {
	ID                     string         `db:"id"`
	FullName               string         `db:"full_name"`
	Email                  string         `db:"email"`
	PhoneNumber            string         `db:"phone_number"`
	Verified               bool           `db:"verified"`
	PasswordHash           []byte         `db:"password_hash"`
	VerificationCodeHash   []byte         `db:"verification_code_hash"`
	VerificationCodeExpiry sql.NullTime   `db:"verification_code_expiry"`
	ResetCodeHash          []byte         `db:"reset_code_hash"`
	ResetCodeExpiry        sql.NullTime   `db:"reset_code_expiry"`
	CreatedAt              time.Time      `db:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at"`
	LastLogin              sql.NullTime   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:                     r.ID,
		FullName:               r.FullName,
		Email:                  r.Email,
		PhoneNumber:            r.PhoneNumber,
		Verified:               r.Verified,
		PasswordHash:           r.PasswordHash,
		VerificationCodeHash:   r.VerificationCodeHash,
		VerificationCodeExpiry: r.VerificationCodeExpiry.Time,
		ResetCodeHash:          r.ResetCodeHash,
		ResetCodeExpiry:        r.ResetCodeExpiry.Time,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
		LastLogin:              r.LastLogin.Time,
	}
}

func fromUser(usr user.User) userRow {
	return userRow{
		ID:                     usr.ID,
		FullName:               usr.FullName,
		Email:                  usr.Email,
		PhoneNumber:            usr.PhoneNumber,
		Verified:               usr.Verified,
		PasswordHash:           usr.PasswordHash,
		VerificationCodeHash:   usr.VerificationCodeHash,
		VerificationCodeExpiry: nullTime(usr.VerificationCodeExpiry),
		ResetCodeHash:          usr.ResetCodeHash,
		ResetCodeExpiry:        nullTime(usr.ResetCodeExpiry),
		CreatedAt:              usr.CreatedAt.UTC(),
		UpdatedAt:              usr.UpdatedAt.UTC(),
		LastLogin:              nullTime(usr.LastLogin),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND NOT (id = ANY($2)))`
	ids := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, email, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	query := `
		INSERT INTO users (
			id, full_name, email, phone_number, verified, password_hash,
			verification_code_hash, verification_code_expiry,
			reset_code_hash, reset_code_expiry,
			created_at, updated_at, last_login
		) VALUES (
			:id, :full_name, :email, :phone_number, :verified, :password_hash,
			:verification_code_hash, :verification_code_expiry,
			:reset_code_hash, :reset_code_expiry,
			:created_at, :updated_at, :last_login
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, fromUser(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM users ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var row userRow
	var err error
	switch {
	case filter.ID != "":
		if _, perr := uuid.Parse(filter.ID); perr != nil {
			return user.User{}, user.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, filter.ID)
	case filter.Email != "":
		err = repo.db.GetContext(ctx, &row, `SELECT * FROM users WHERE email = $1`, filter.Email)
	default:
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return row.toUser(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		UPDATE users SET
			full_name = :full_name,
			email = :email,
			phone_number = :phone_number,
			verified = :verified,
			password_hash = :password_hash,
			verification_code_hash = :verification_code_hash,
			verification_code_expiry = :verification_code_expiry,
			reset_code_hash = :reset_code_hash,
			reset_code_expiry = :reset_code_expiry,
			updated_at = :updated_at,
			last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, fromUser(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
