package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/registration"
	"github.com/wayteam/way-backend/core/schedule"
)

const (
	uniqueViolation = "23505"

	tripleIndexName = "registrations_user_schedule_session_key"
	legacyIndexName = "registrations_user_schedule_key"
)

type registrationRepository struct {
	db *sqlx.DB
}

var (
	_ registration.Repository    = (*registrationRepository)(nil) // interface compliance check
	_ schedule.RegistrationStore = (*registrationRepository)(nil)
)

func NewRegistrationRepository(db *sqlx.DB) *registrationRepository {
	return &registrationRepository{db: db}
}

// classifyUniqueViolation maps a unique-violation error to the engine's
// sentinels by inspecting which constraint was hit. Anything else that
// violates uniqueness still surfaces as a conflict.
func classifyUniqueViolation(err error) error {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok || string(pqErr.Code) != uniqueViolation {
		return nil
	}
	switch {
	case pqErr.Constraint == tripleIndexName:
		return registration.ErrDuplicate
	case pqErr.Constraint == legacyIndexName,
		strings.Contains(pqErr.Constraint, "user") &&
			strings.Contains(pqErr.Constraint, "schedule") &&
			!strings.Contains(pqErr.Constraint, "session"):
		return errors.Wrap(registration.ErrLegacyIndexConflict, pqErr.Constraint)
	default:
		return core.NewConflictError("registration_conflict", "conflicting registration")
	}
}

func (repo registrationRepository) CreateRegistration(ctx context.Context, r registration.Registration) (registration.Registration, error) {
	query := `
		INSERT INTO registrations (
			id, user_id, schedule_id, session_id, status, payment_status,
			notes, rejection_reason, payment_link, payment_sent, is_full_class_request,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :schedule_id, :session_id, :status, :payment_status,
			:notes, :rejection_reason, :payment_link, :payment_sent, :is_full_class_request,
			:created_at, :updated_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, r); err != nil {
		if clsErr := classifyUniqueViolation(err); clsErr != nil {
			return registration.Registration{}, clsErr
		}
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return r, nil
}

func (repo registrationRepository) GetRegistration(ctx context.Context, id string) (registration.Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return registration.Registration{}, registration.ErrNotFound
	}
	var r registration.Registration
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM registrations WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, errors.Wrap(err, "finding registration")
	}
	return r, nil
}

func (repo registrationRepository) GetByTriple(ctx context.Context, userID, scheduleID, sessionID string) (registration.Registration, error) {
	var r registration.Registration
	query := `SELECT * FROM registrations WHERE user_id = $1 AND schedule_id = $2 AND session_id = $3`
	if err := repo.db.GetContext(ctx, &r, query, userID, scheduleID, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, errors.Wrap(err, "finding registration")
	}
	return r, nil
}

func (repo registrationRepository) SessionCounts(ctx context.Context, sessionID string) (registration.Counts, error) {
	var counts registration.Counts
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE payment_status IN ('paid', 'free')) AS paid
		FROM registrations
		WHERE session_id = $1`
	if err := repo.db.GetContext(ctx, &counts, query, sessionID); err != nil {
		return registration.Counts{}, errors.Wrap(err, "counting registrations")
	}
	return counts, nil
}

const detailSelect = `
	SELECT
		r.*,
		u.full_name AS user_full_name,
		u.email AS user_email,
		u.phone_number AS user_phone_number,
		s.title AS schedule_title,
		s.slug AS schedule_slug
	FROM registrations r
	JOIN users u ON u.id = r.user_id
	JOIN schedules s ON s.id = r.schedule_id`

func (repo registrationRepository) QueryBySchedule(ctx context.Context, scheduleID string, filter registration.QueryFilter) ([]registration.Detail, error) {
	query := detailSelect + `
	WHERE r.schedule_id = $1
		AND ($2 = '' OR r.session_id::text = $2)
		AND ($3 = '' OR r.status = $3)
	ORDER BY r.created_at DESC`

	var details []registration.Detail
	if err := repo.db.SelectContext(ctx, &details, query, scheduleID, filter.SessionID, filter.Status); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	return details, nil
}

func (repo registrationRepository) QueryByUser(ctx context.Context, userID string) ([]registration.Detail, error) {
	query := detailSelect + `
	WHERE r.user_id = $1
	ORDER BY r.created_at DESC`

	var details []registration.Detail
	if err := repo.db.SelectContext(ctx, &details, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	return details, nil
}

// orderableColumns whitelists the ORDER BY terms accepted from the API.
var orderableColumns = map[string]string{
	"created_at":     "r.created_at",
	"updated_at":     "r.updated_at",
	"status":         "r.status",
	"payment_status": "r.payment_status",
}

func orderBy(ordering []core.DBOrdering) string {
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := orderableColumns[ord.Field]
		if !ok {
			continue
		}
		terms = append(terms, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(terms) == 0 {
		return "r.created_at DESC"
	}
	return strings.Join(terms, ", ")
}

func (repo registrationRepository) QueryAll(ctx context.Context, filter registration.QueryFilter) ([]registration.Detail, int, error) {
	var total int
	countQuery := `
	SELECT COUNT(*) FROM registrations
	WHERE ($1 = '' OR status = $1)
		AND ($2 = '' OR session_id::text = $2)`
	if err := repo.db.GetContext(ctx, &total, countQuery, filter.Status, filter.SessionID); err != nil {
		return nil, 0, errors.Wrap(err, "counting registrations")
	}

	query := detailSelect + fmt.Sprintf(`
	WHERE ($1 = '' OR r.status = $1)
		AND ($2 = '' OR r.session_id::text = $2)
	ORDER BY %s
	LIMIT %d OFFSET %d`, orderBy(filter.Ordering), filter.PageSize, (filter.Page-1)*filter.PageSize)

	var details []registration.Detail
	if err := repo.db.SelectContext(ctx, &details, query, filter.Status, filter.SessionID); err != nil {
		return nil, 0, errors.Wrap(err, "querying registrations")
	}
	return details, total, nil
}

func (repo registrationRepository) UpdateRegistration(ctx context.Context, r registration.Registration) (registration.Registration, error) {
	query := `
		UPDATE registrations SET
			status = :status,
			payment_status = :payment_status,
			notes = :notes,
			rejection_reason = :rejection_reason,
			payment_link = :payment_link,
			payment_sent = :payment_sent,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, r)
	if err != nil {
		return registration.Registration{}, errors.Wrap(err, "updating registration")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return registration.Registration{}, registration.ErrNotFound
	}
	return r, nil
}

func (repo registrationRepository) DropLegacyUserScheduleIndex(ctx context.Context) error {
	if _, err := repo.db.ExecContext(ctx, fmt.Sprintf(`DROP INDEX IF EXISTS %s`, legacyIndexName)); err != nil {
		return errors.Wrap(err, "dropping legacy index")
	}
	return nil
}

// schedule.RegistrationStore

func (repo registrationRepository) CountByScheduleID(ctx context.Context, scheduleID string) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM registrations WHERE schedule_id = $1`, scheduleID,
	); err != nil {
		return 0, errors.Wrap(err, "counting registrations")
	}
	return count, nil
}

func (repo registrationRepository) QueryRegistrantsByScheduleID(ctx context.Context, scheduleID string) ([]schedule.Registrant, error) {
	query := `
		SELECT DISTINCT u.id AS user_id, u.full_name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.schedule_id = $1`

	var rows []struct {
		UserID   string `db:"user_id"`
		FullName string `db:"full_name"`
		Email    string `db:"email"`
	}
	if err := repo.db.SelectContext(ctx, &rows, query, scheduleID); err != nil {
		return nil, errors.Wrap(err, "querying registrants")
	}
	registrants := make([]schedule.Registrant, 0, len(rows))
	for _, r := range rows {
		registrants = append(registrants, schedule.Registrant{UserID: r.UserID, FullName: r.FullName, Email: r.Email})
	}
	return registrants, nil
}

func (repo registrationRepository) DeleteByScheduleID(ctx context.Context, scheduleID string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM registrations WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting registrations")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
