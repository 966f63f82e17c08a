package registration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/schedule"
	"github.com/wayteam/way-backend/core/tutor"
	"github.com/wayteam/way-backend/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("registration_not_found", "registration not found")

	// ErrDuplicate is returned by repositories when an insert trips the
	// (user, schedule, session) unique index.
	ErrDuplicate = core.NewConflictError("registration_exists", "you are already registered for this session")

	// ErrLegacyIndexConflict is returned by repositories when an insert trips
	// the obsolete (user, schedule) unique index left behind by deployments
	// that predate per-session registrations. The service heals this by
	// dropping the index and retrying the insert once.
	ErrLegacyIndexConflict = errors.New("legacy user-schedule unique index conflict")
)

type (
	Repository interface {
		CreateRegistration(ctx context.Context, r Registration) (Registration, error)
		GetRegistration(ctx context.Context, id string) (Registration, error)
		GetByTriple(ctx context.Context, userID, scheduleID, sessionID string) (Registration, error)
		SessionCounts(ctx context.Context, sessionID string) (Counts, error)
		QueryBySchedule(ctx context.Context, scheduleID string, filter QueryFilter) ([]Detail, error)
		QueryByUser(ctx context.Context, userID string) ([]Detail, error)
		QueryAll(ctx context.Context, filter QueryFilter) ([]Detail, int, error)
		UpdateRegistration(ctx context.Context, r Registration) (Registration, error)
		DropLegacyUserScheduleIndex(ctx context.Context) error
	}

	// UserDirectory and ScheduleDirectory are the read-only slices of the user
	// and schedule services the engine depends on; satisfied by *user.Service
	// and *schedule.Service.
	UserDirectory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}
	ScheduleDirectory interface {
		GetByID(ctx context.Context, id string) (schedule.Schedule, error)
	}
	TutorDirectory interface {
		GetByID(ctx context.Context, id string) (tutor.Tutor, error)
	}

	// Notifier sends registration lifecycle emails. Methods without an error
	// return are best-effort: implementations log failures and move on.
	// RegistrationApproved, PaymentLinkSent and AdminMessage report failure to
	// the caller; their sends are part of the operation's contract.
	Notifier interface {
		RegistrationReceived(usr user.User, sch schedule.Schedule, sess schedule.Session)
		FullClassRequested(usr user.User, sch schedule.Schedule, sess schedule.Session, message string)
		RegistrationApproved(usr user.User, sch schedule.Schedule, sess schedule.Session) error
		PaymentLinkSent(usr user.User, sch schedule.Schedule, link string) error
		AdminMessage(usr user.User, subject, text string) error
	}

	Service struct {
		repo      Repository
		users     UserDirectory
		schedules ScheduleDirectory
		tutors    TutorDirectory
		notifier  Notifier
		logger    core.Logger
		nowFn     func() time.Time
	}
)

func NewService(
	repo Repository,
	users UserDirectory,
	schedules ScheduleDirectory,
	tutors TutorDirectory,
	notifier Notifier,
	logger core.Logger,
) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		schedules: schedules,
		tutors:    tutors,
		notifier:  notifier,
		logger:    logger,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// sessionStart combines a session's start date with its "HH:mm" time of day.
func sessionStart(sess schedule.Session) time.Time {
	tod, err := time.Parse("15:04", sess.Time)
	if err != nil {
		return sess.StartDate
	}
	d := sess.StartDate
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, d.Location())
}

// checkPreconditions runs the checks shared by Create and
// CreateFullClassRequest: verified user, existing schedule and session,
// session start strictly in the future.
func (svc *Service) checkPreconditions(ctx context.Context, userID, scheduleID, sessionID string) (user.User, schedule.Schedule, schedule.Session, error) {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, schedule.Schedule{}, schedule.Session{}, err
	}
	if !usr.Verified {
		return usr, schedule.Schedule{}, schedule.Session{},
			core.NewForbiddenError("user_not_verified", "verify your email address before registering")
	}

	sch, err := svc.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return usr, schedule.Schedule{}, schedule.Session{}, err
	}
	sess, ok := sch.Session(sessionID)
	if !ok {
		return usr, sch, schedule.Session{},
			core.NewNotFoundError("session_not_found", "session not found in this schedule")
	}
	if !sessionStart(sess).After(svc.nowFn()) {
		return usr, sch, sess,
			core.NewBadRequestError("session_started", "this session has already started")
	}
	return usr, sch, sess, nil
}

// insert writes a registration, healing the legacy (user, schedule) unique
// index if a deployment still carries it: the stale index is dropped and the
// insert retried exactly once.
func (svc *Service) insert(ctx context.Context, r Registration) (Registration, error) {
	created, err := svc.repo.CreateRegistration(ctx, r)
	if err == nil {
		return created, nil
	}
	if errors.Cause(err) != ErrLegacyIndexConflict {
		return Registration{}, err
	}

	svc.logger.Warn("dropping legacy user-schedule unique index and retrying insert")
	if dropErr := svc.repo.DropLegacyUserScheduleIndex(ctx); dropErr != nil {
		return Registration{}, core.NewTransientError(
			"legacy_index_heal_failed", "could not complete registration, please retry", dropErr)
	}
	created, err = svc.repo.CreateRegistration(ctx, r)
	if err == nil {
		return created, nil
	}
	if errors.Cause(err) == ErrLegacyIndexConflict {
		return Registration{}, core.NewTransientError(
			"legacy_index_heal_failed", "could not complete registration, please retry", err)
	}
	return Registration{}, err
}

// Create books a seatless pending registration for a verified user. Capacity
// is checked against paid-or-free registrations only; this check is advisory,
// the authoritative one happens at payment confirmation.
func (svc *Service) Create(ctx context.Context, userID string, nr NewRegistration) (Registration, error) {
	usr, sch, sess, err := svc.checkPreconditions(ctx, userID, nr.ScheduleID, nr.SessionID)
	if err != nil {
		return Registration{}, err
	}

	if existing, err := svc.repo.GetByTriple(ctx, userID, nr.ScheduleID, nr.SessionID); err == nil {
		if existing.IsFullClassRequest {
			return Registration{}, core.NewConflictError(
				"full_class_request_exists", "you have already requested a spot in this session")
		}
		return Registration{}, ErrDuplicate
	} else if !core.IsErrorKind(err, core.KindNotFound) {
		return Registration{}, err
	}

	counts, err := svc.repo.SessionCounts(ctx, nr.SessionID)
	if err != nil {
		return Registration{}, err
	}
	if counts.Paid >= sess.Capacity {
		return Registration{}, core.NewBadRequestError(
			"session_full", "this session is at full capacity")
	}

	now := svc.nowFn()
	created, err := svc.insert(ctx, Registration{
		ID:            uuid.NewString(),
		UserID:        userID,
		ScheduleID:    nr.ScheduleID,
		SessionID:     nr.SessionID,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return Registration{}, err
	}

	svc.notifier.RegistrationReceived(usr, sch, sess)
	return created, nil
}

// CreateFullClassRequest records a user's interest in a session that is
// already full. It is only reachable once paid-or-free registrations have
// consumed every seat.
func (svc *Service) CreateFullClassRequest(ctx context.Context, userID string, fr FullClassRequest) (Registration, error) {
	usr, sch, sess, err := svc.checkPreconditions(ctx, userID, fr.ScheduleID, fr.SessionID)
	if err != nil {
		return Registration{}, err
	}

	if existing, err := svc.repo.GetByTriple(ctx, userID, fr.ScheduleID, fr.SessionID); err == nil {
		if existing.IsFullClassRequest {
			return Registration{}, core.NewConflictError(
				"full_class_request_exists", "you have already requested a spot in this session")
		}
		return Registration{}, ErrDuplicate
	} else if !core.IsErrorKind(err, core.KindNotFound) {
		return Registration{}, err
	}

	counts, err := svc.repo.SessionCounts(ctx, fr.SessionID)
	if err != nil {
		return Registration{}, err
	}
	if counts.Paid < sess.Capacity {
		return Registration{}, core.NewBadRequestError(
			"session_not_full", "this session still has available spots, register normally")
	}

	now := svc.nowFn()
	created, err := svc.insert(ctx, Registration{
		ID:                 uuid.NewString(),
		UserID:             userID,
		ScheduleID:         fr.ScheduleID,
		SessionID:          fr.SessionID,
		Status:             StatusPending,
		PaymentStatus:      PaymentUnpaid,
		Notes:              fr.Message,
		IsFullClassRequest: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return Registration{}, err
	}

	svc.notifier.FullClassRequested(usr, sch, sess, fr.Message)
	return created, nil
}

// UpdateStatus moves a registration between pending, approved and rejected.
// Approval never re-checks capacity: admins may deliberately overbook. The
// approval confirmation email is part of the contract; its failure is
// returned to the caller even though the status change has been persisted.
func (svc *Service) UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Registration, error) {
	r, err := svc.repo.GetRegistration(ctx, id)
	if err != nil {
		return Registration{}, err
	}

	r.Status = us.Status
	if us.Notes != "" {
		r.Notes = us.Notes
		if us.Status == StatusRejected {
			r.RejectionReason = us.Notes
		}
	}
	r.UpdatedAt = svc.nowFn()

	r, err = svc.repo.UpdateRegistration(ctx, r)
	if err != nil {
		return Registration{}, err
	}

	if r.Status == StatusApproved {
		usr, sch, sess, lookupErr := svc.lookupParties(ctx, r)
		if lookupErr != nil {
			return r, lookupErr
		}
		if mailErr := svc.notifier.RegistrationApproved(usr, sch, sess); mailErr != nil {
			return r, core.NewInternalError(
				"notification_failed", errors.Wrap(mailErr, "registration approved but the confirmation email failed"))
		}
	}
	return r, nil
}

// UpdatePaymentStatus is the seat-reservation checkpoint. A transition into
// paid or free from any other state re-checks capacity at that instant;
// setting paid or free on a registration already holding a seat is
// idempotent and skips the check.
func (svc *Service) UpdatePaymentStatus(ctx context.Context, id string, up UpdatePayment) (Registration, error) {
	r, err := svc.repo.GetRegistration(ctx, id)
	if err != nil {
		return Registration{}, err
	}

	if seatTaken(up.PaymentStatus) && !seatTaken(r.PaymentStatus) {
		sch, err := svc.schedules.GetByID(ctx, r.ScheduleID)
		if err != nil {
			return Registration{}, err
		}
		sess, ok := sch.Session(r.SessionID)
		if !ok {
			return Registration{}, core.NewNotFoundError("session_not_found", "session not found in this schedule")
		}
		counts, err := svc.repo.SessionCounts(ctx, r.SessionID)
		if err != nil {
			return Registration{}, err
		}
		if counts.Paid >= sess.Capacity {
			return Registration{}, core.NewBadRequestError(
				"session_full", "this session is at full capacity")
		}
	}

	r.PaymentStatus = up.PaymentStatus
	r.UpdatedAt = svc.nowFn()
	return svc.repo.UpdateRegistration(ctx, r)
}

// SendPaymentLink stores the link, marks it sent and emails the user.
// The email failure is returned: an unsent link is useless.
func (svc *Service) SendPaymentLink(ctx context.Context, id string, pl PaymentLink) (Registration, error) {
	r, err := svc.repo.GetRegistration(ctx, id)
	if err != nil {
		return Registration{}, err
	}
	usr, err := svc.users.GetByID(ctx, r.UserID)
	if err != nil {
		return Registration{}, err
	}
	sch, err := svc.schedules.GetByID(ctx, r.ScheduleID)
	if err != nil {
		return Registration{}, err
	}

	r.PaymentLink = pl.Link
	r.PaymentSent = true
	r.UpdatedAt = svc.nowFn()
	r, err = svc.repo.UpdateRegistration(ctx, r)
	if err != nil {
		return Registration{}, err
	}

	if mailErr := svc.notifier.PaymentLinkSent(usr, sch, pl.Link); mailErr != nil {
		return r, core.NewTransientError(
			"notification_failed", "payment link saved but the email failed", mailErr)
	}
	return r, nil
}

// SendCustomMessage emails free-form admin text to the registration holder.
func (svc *Service) SendCustomMessage(ctx context.Context, id string, cm CustomMessage) error {
	r, err := svc.repo.GetRegistration(ctx, id)
	if err != nil {
		return err
	}
	usr, err := svc.users.GetByID(ctx, r.UserID)
	if err != nil {
		return err
	}
	if mailErr := svc.notifier.AdminMessage(usr, cm.Subject, cm.Text); mailErr != nil {
		return core.NewTransientError("notification_failed", "the email failed to send", mailErr)
	}
	return nil
}

// CheckScheduleCapacity reports live occupancy per session of a schedule.
func (svc *Service) CheckScheduleCapacity(ctx context.Context, scheduleID string) ([]SessionCapacity, error) {
	sch, err := svc.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	report := make([]SessionCapacity, 0, len(sch.Sessions))
	for _, sess := range sch.Sessions {
		counts, err := svc.repo.SessionCounts(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		available := sess.Capacity - counts.Paid
		if available < 0 {
			available = 0
		}
		sc := SessionCapacity{
			SessionID:     sess.ID,
			StartDate:     sess.StartDate,
			Time:          sess.Time,
			TutorID:       sess.TutorID,
			TotalCapacity: sess.Capacity,
			Approved:      counts.Approved,
			Pending:       counts.Pending,
			Paid:          counts.Paid,
			Available:     available,
			IsFull:        counts.Paid >= sess.Capacity,
		}
		if tut, err := svc.tutors.GetByID(ctx, sess.TutorID); err == nil {
			sc.TutorName = tut.FullName
		}
		report = append(report, sc)
	}
	return report, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Registration, error) {
	return svc.repo.GetRegistration(ctx, id)
}

func (svc *Service) QueryBySchedule(ctx context.Context, scheduleID string, filter QueryFilter) ([]Detail, error) {
	return svc.repo.QueryBySchedule(ctx, scheduleID, filter)
}

func (svc *Service) QueryByUser(ctx context.Context, userID string) ([]Detail, error) {
	return svc.repo.QueryByUser(ctx, userID)
}

// QueryAll returns a page of registrations plus the unpaged total.
func (svc *Service) QueryAll(ctx context.Context, filter QueryFilter) ([]Detail, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	return svc.repo.QueryAll(ctx, filter)
}

func (svc *Service) lookupParties(ctx context.Context, r Registration) (user.User, schedule.Schedule, schedule.Session, error) {
	usr, err := svc.users.GetByID(ctx, r.UserID)
	if err != nil {
		return user.User{}, schedule.Schedule{}, schedule.Session{}, err
	}
	sch, err := svc.schedules.GetByID(ctx, r.ScheduleID)
	if err != nil {
		return usr, schedule.Schedule{}, schedule.Session{}, err
	}
	sess, _ := sch.Session(r.SessionID)
	return usr, sch, sess, nil
}
