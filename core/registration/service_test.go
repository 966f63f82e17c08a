package registration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/registration"
	"github.com/wayteam/way-backend/core/schedule"
	"github.com/wayteam/way-backend/core/tutor"
	"github.com/wayteam/way-backend/core/user"
	"github.com/wayteam/way-backend/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// notifierMock records notifications and can be primed to fail.
type notifierMock struct {
	received      int
	fullClass     int
	approved      int
	paymentLinks  []string
	adminMessages []string
	cancelled     []schedule.Registrant

	approvedErr    error
	paymentLinkErr error
	adminMsgErr    error
}

func (m *notifierMock) RegistrationReceived(user.User, schedule.Schedule, schedule.Session) {
	m.received++
}

func (m *notifierMock) FullClassRequested(user.User, schedule.Schedule, schedule.Session, string) {
	m.fullClass++
}

func (m *notifierMock) RegistrationApproved(user.User, schedule.Schedule, schedule.Session) error {
	if m.approvedErr != nil {
		return m.approvedErr
	}
	m.approved++
	return nil
}

func (m *notifierMock) PaymentLinkSent(_ user.User, _ schedule.Schedule, link string) error {
	if m.paymentLinkErr != nil {
		return m.paymentLinkErr
	}
	m.paymentLinks = append(m.paymentLinks, link)
	return nil
}

func (m *notifierMock) AdminMessage(_ user.User, subject, _ string) error {
	if m.adminMsgErr != nil {
		return m.adminMsgErr
	}
	m.adminMessages = append(m.adminMessages, subject)
	return nil
}

func (m *notifierMock) NotifyScheduleCancelled(_ schedule.Schedule, recipients []schedule.Registrant) {
	m.cancelled = append(m.cancelled, recipients...)
}

type testEnv struct {
	db       *inmemdb.DB
	notifier *notifierMock
	svc      *registration.Service
	schdSvc  *schedule.Service
	usrRepo  user.Repository
	tutRepo  tutor.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := inmemdb.NewDB()
	notifier := &notifierMock{}
	regRepo := inmemdb.NewRegistrationRepository(db)
	usrRepo := inmemdb.NewUserRepository(db)
	tutRepo := inmemdb.NewTutorRepository(db)

	usrSvc := user.NewService(usrRepo, nil /* mailSvc */, nopLogger{})
	tutSvc := tutor.NewService(tutRepo)
	schdSvc := schedule.NewService(inmemdb.NewScheduleRepository(db), regRepo, notifier, nopLogger{})
	svc := registration.NewService(regRepo, usrSvc, schdSvc, tutSvc, notifier, nopLogger{})

	return &testEnv{
		db:       db,
		notifier: notifier,
		svc:      svc,
		schdSvc:  schdSvc,
		usrRepo:  usrRepo,
		tutRepo:  tutRepo,
	}
}

func (env *testEnv) createUser(t *testing.T, name string, verified bool) user.User {
	t.Helper()
	usr, err := env.usrRepo.CreateUser(context.Background(), user.User{
		FullName: name,
		Email:    core.CleanString(name, true) + "@test.cd",
		Verified: verified,
	})
	require.NoError(t, err)
	return usr
}

func (env *testEnv) createTutor(t *testing.T, name string) tutor.Tutor {
	t.Helper()
	tut, err := env.tutRepo.CreateTutor(context.Background(), tutor.Tutor{
		FullName: name,
		Email:    core.CleanString(name, true) + "@test.cd",
		Active:   true,
	})
	require.NoError(t, err)
	return tut
}

// createSchedule publishes a schedule with one session per capacity given,
// starting tomorrow at 10:00.
func (env *testEnv) createSchedule(t *testing.T, title, tutorID string, capacities ...int) schedule.Schedule {
	t.Helper()
	start := time.Now().UTC().AddDate(0, 0, 1)
	sessions := make([]schedule.NewSession, 0, len(capacities))
	for _, capacity := range capacities {
		sessions = append(sessions, schedule.NewSession{
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 7),
			Time:      "10:00",
			Period:    "2hours",
			Capacity:  capacity,
			TutorID:   tutorID,
		})
	}
	sch, err := env.schdSvc.Create(context.Background(), schedule.NewSchedule{
		Title:    title,
		Text:     "some text",
		Price:    50,
		Status:   schedule.StatusPublished,
		Sessions: sessions,
	})
	require.NoError(t, err)
	return sch
}

func requireAppError(t *testing.T, err error, kind core.ErrorKind, reason string) {
	t.Helper()
	appErr, ok := core.AppErrorOf(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	assert.Equal(t, reason, appErr.Reason)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		env := newTestEnv(t)
		usr := env.createUser(t, "Awe", true)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 10)

		reg, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, reg.ID)
		assert.Equal(t, registration.StatusPending, reg.Status)
		assert.Equal(t, registration.PaymentUnpaid, reg.PaymentStatus)
		assert.Equal(t, 1, env.notifier.received)
	})

	t.Run("unverified user is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		usr := env.createUser(t, "Awe", false)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 10)

		_, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		requireAppError(t, err, core.KindForbidden, "user_not_verified")
		assert.Equal(t, 0, env.notifier.received)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		env := newTestEnv(t)
		usr := env.createUser(t, "Awe", true)

		_, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: "nope",
			SessionID:  "nope",
		})
		require.True(t, core.IsErrorKind(err, core.KindNotFound))
	})

	t.Run("unknown session", func(t *testing.T) {
		env := newTestEnv(t)
		usr := env.createUser(t, "Awe", true)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 10)

		_, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  "nope",
		})
		requireAppError(t, err, core.KindNotFound, "session_not_found")
	})

	t.Run("started session is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		usr := env.createUser(t, "Awe", true)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 10)

		// move the session into the past
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		_, err := env.schdSvc.Update(ctx, sch.Slug, schedule.UpdateSchedule{
			Sessions: []schedule.UpdateSession{{
				ID:        sch.Sessions[0].ID,
				StartDate: yesterday,
				EndDate:   yesterday.AddDate(0, 0, 7),
				Time:      "10:00",
				Period:    "2hours",
				Capacity:  10,
				TutorID:   tut.ID,
			}},
		})
		require.NoError(t, err)

		_, err = env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		requireAppError(t, err, core.KindBadRequest, "session_started")
	})

	t.Run("duplicate is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		usr := env.createUser(t, "Awe", true)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 10)
		nr := registration.NewRegistration{ScheduleID: sch.ID, SessionID: sch.Sessions[0].ID}

		_, err := env.svc.Create(ctx, usr.ID, nr)
		require.NoError(t, err)

		_, err = env.svc.Create(ctx, usr.ID, nr)
		requireAppError(t, err, core.KindConflict, "registration_exists")
		assert.Equal(t, 1, env.notifier.received)
	})

	t.Run("concurrent duplicates race to a single insert", func(t *testing.T) {
		env := newTestEnv(t)
		usr := env.createUser(t, "Awe", true)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 10)
		nr := registration.NewRegistration{ScheduleID: sch.ID, SessionID: sch.Sessions[0].ID}

		// all goroutines pass the duplicate pre-check before any insert
		// lands; the storage unique index must arbitrate.
		const workers = 8
		errs := make([]error, workers)
		var start, done sync.WaitGroup
		start.Add(1)
		done.Add(workers)
		for i := 0; i < workers; i++ {
			go func(i int) {
				defer done.Done()
				start.Wait()
				_, errs[i] = env.svc.Create(ctx, usr.ID, nr)
			}(i)
		}
		start.Done()
		done.Wait()

		var won int
		for _, err := range errs {
			if err == nil {
				won++
				continue
			}
			requireAppError(t, err, core.KindConflict, "registration_exists")
		}
		assert.Equal(t, 1, won)
	})

	t.Run("pending registrations do not consume seats", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 2)
		nr := registration.NewRegistration{ScheduleID: sch.ID, SessionID: sch.Sessions[0].ID}

		// three registrations on a 2-seat session all go through
		for _, name := range []string{"Awe", "King", "Hero"} {
			usr := env.createUser(t, name, true)
			_, err := env.svc.Create(ctx, usr.ID, nr)
			require.NoError(t, err)
		}
	})

	t.Run("full session is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 1)
		nr := registration.NewRegistration{ScheduleID: sch.ID, SessionID: sch.Sessions[0].ID}

		usr1 := env.createUser(t, "Awe", true)
		reg, err := env.svc.Create(ctx, usr1.ID, nr)
		require.NoError(t, err)
		_, err = env.svc.UpdatePaymentStatus(ctx, reg.ID, registration.UpdatePayment{PaymentStatus: registration.PaymentPaid})
		require.NoError(t, err)

		usr2 := env.createUser(t, "King", true)
		_, err = env.svc.Create(ctx, usr2.ID, nr)
		requireAppError(t, err, core.KindBadRequest, "session_full")
	})
}

func TestService_UpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("seats are granted until capacity", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 2)
		nr := registration.NewRegistration{ScheduleID: sch.ID, SessionID: sch.Sessions[0].ID}

		var regs []registration.Registration
		for _, name := range []string{"Awe", "King", "Hero"} {
			usr := env.createUser(t, name, true)
			reg, err := env.svc.Create(ctx, usr.ID, nr)
			require.NoError(t, err)
			regs = append(regs, reg)
		}

		paid := registration.UpdatePayment{PaymentStatus: registration.PaymentPaid}
		_, err := env.svc.UpdatePaymentStatus(ctx, regs[0].ID, paid)
		require.NoError(t, err)
		_, err = env.svc.UpdatePaymentStatus(ctx, regs[1].ID, paid)
		require.NoError(t, err)

		// both seats taken; the third registration cannot confirm
		_, err = env.svc.UpdatePaymentStatus(ctx, regs[2].ID, paid)
		requireAppError(t, err, core.KindBadRequest, "session_full")

		// free counts as a seat too
		_, err = env.svc.UpdatePaymentStatus(ctx, regs[2].ID, registration.UpdatePayment{PaymentStatus: registration.PaymentFree})
		requireAppError(t, err, core.KindBadRequest, "session_full")
	})

	t.Run("idempotent on a held seat", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 1)
		usr := env.createUser(t, "Awe", true)

		reg, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		require.NoError(t, err)

		paid := registration.UpdatePayment{PaymentStatus: registration.PaymentPaid}
		_, err = env.svc.UpdatePaymentStatus(ctx, reg.ID, paid)
		require.NoError(t, err)

		// session is now full; re-setting paid must not trip the capacity check
		_, err = env.svc.UpdatePaymentStatus(ctx, reg.ID, paid)
		require.NoError(t, err)
		// switching between seat-holding statuses neither
		reg, err = env.svc.UpdatePaymentStatus(ctx, reg.ID, registration.UpdatePayment{PaymentStatus: registration.PaymentFree})
		require.NoError(t, err)
		assert.Equal(t, registration.PaymentFree, reg.PaymentStatus)
	})

	t.Run("releasing a seat needs no capacity", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 1)
		usr := env.createUser(t, "Awe", true)

		reg, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		require.NoError(t, err)
		_, err = env.svc.UpdatePaymentStatus(ctx, reg.ID, registration.UpdatePayment{PaymentStatus: registration.PaymentPaid})
		require.NoError(t, err)

		reg, err = env.svc.UpdatePaymentStatus(ctx, reg.ID, registration.UpdatePayment{PaymentStatus: registration.PaymentUnpaid})
		require.NoError(t, err)
		assert.Equal(t, registration.PaymentUnpaid, reg.PaymentStatus)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("approval ignores capacity", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 1)
		nr := registration.NewRegistration{ScheduleID: sch.ID, SessionID: sch.Sessions[0].ID}

		usr1 := env.createUser(t, "Awe", true)
		reg1, err := env.svc.Create(ctx, usr1.ID, nr)
		require.NoError(t, err)

		usr2 := env.createUser(t, "King", true)
		reg2, err := env.svc.Create(ctx, usr2.ID, nr)
		require.NoError(t, err)

		_, err = env.svc.UpdatePaymentStatus(ctx, reg1.ID, registration.UpdatePayment{PaymentStatus: registration.PaymentPaid})
		require.NoError(t, err)

		// session is full, approval still goes through
		reg2, err = env.svc.UpdateStatus(ctx, reg2.ID, registration.UpdateStatus{Status: registration.StatusApproved})
		require.NoError(t, err)
		assert.Equal(t, registration.StatusApproved, reg2.Status)
		assert.Equal(t, 1, env.notifier.approved)
	})

	t.Run("rejection records the reason", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 5)
		usr := env.createUser(t, "Awe", true)

		reg, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		require.NoError(t, err)

		reg, err = env.svc.UpdateStatus(ctx, reg.ID, registration.UpdateStatus{
			Status: registration.StatusRejected,
			Notes:  "no-show last time",
		})
		require.NoError(t, err)
		assert.Equal(t, registration.StatusRejected, reg.Status)
		assert.Equal(t, "no-show last time", reg.RejectionReason)
		assert.Equal(t, 0, env.notifier.approved)

		// rejecting again without notes keeps the recorded reason
		reg, err = env.svc.UpdateStatus(ctx, reg.ID, registration.UpdateStatus{
			Status: registration.StatusRejected,
		})
		require.NoError(t, err)
		assert.Equal(t, "no-show last time", reg.RejectionReason)
	})

	t.Run("approval email failure is reported after persisting", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 5)
		usr := env.createUser(t, "Awe", true)

		reg, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		require.NoError(t, err)

		env.notifier.approvedErr = errors.New("smtp down")
		_, err = env.svc.UpdateStatus(ctx, reg.ID, registration.UpdateStatus{Status: registration.StatusApproved})
		requireAppError(t, err, core.KindInternal, "notification_failed")

		// the status change survived the failed email
		reg, err = env.svc.GetByID(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, registration.StatusApproved, reg.Status)
	})
}

func TestService_CreateFullClassRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected while seats remain", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 2)
		usr := env.createUser(t, "Awe", true)

		_, err := env.svc.CreateFullClassRequest(ctx, usr.ID, registration.FullClassRequest{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
			Message:    "please squeeze me in",
		})
		requireAppError(t, err, core.KindBadRequest, "session_not_full")
	})

	t.Run("accepted once the session is full", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 1)
		nr := registration.NewRegistration{ScheduleID: sch.ID, SessionID: sch.Sessions[0].ID}

		usr1 := env.createUser(t, "Awe", true)
		reg, err := env.svc.Create(ctx, usr1.ID, nr)
		require.NoError(t, err)
		_, err = env.svc.UpdatePaymentStatus(ctx, reg.ID, registration.UpdatePayment{PaymentStatus: registration.PaymentPaid})
		require.NoError(t, err)

		usr2 := env.createUser(t, "King", true)
		fr := registration.FullClassRequest{ScheduleID: sch.ID, SessionID: sch.Sessions[0].ID, Message: "waitlist me"}
		req, err := env.svc.CreateFullClassRequest(ctx, usr2.ID, fr)
		require.NoError(t, err)
		assert.True(t, req.IsFullClassRequest)
		assert.Equal(t, "waitlist me", req.Notes)
		assert.Equal(t, 1, env.notifier.fullClass)

		// asking twice is a conflict
		_, err = env.svc.CreateFullClassRequest(ctx, usr2.ID, fr)
		requireAppError(t, err, core.KindConflict, "full_class_request_exists")
	})
}

func TestService_SendPaymentLink(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 5)
		usr := env.createUser(t, "Awe", true)

		reg, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		require.NoError(t, err)

		reg, err = env.svc.SendPaymentLink(ctx, reg.ID, registration.PaymentLink{Link: "https://pay.test/abc"})
		require.NoError(t, err)
		assert.True(t, reg.PaymentSent)
		assert.Equal(t, "https://pay.test/abc", reg.PaymentLink)
		assert.Equal(t, []string{"https://pay.test/abc"}, env.notifier.paymentLinks)
	})

	t.Run("email failure is reported after persisting", func(t *testing.T) {
		env := newTestEnv(t)
		tut := env.createTutor(t, "Teka")
		sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 5)
		usr := env.createUser(t, "Awe", true)

		reg, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
			ScheduleID: sch.ID,
			SessionID:  sch.Sessions[0].ID,
		})
		require.NoError(t, err)

		env.notifier.paymentLinkErr = errors.New("smtp down")
		_, err = env.svc.SendPaymentLink(ctx, reg.ID, registration.PaymentLink{Link: "https://pay.test/abc"})
		requireAppError(t, err, core.KindTransient, "notification_failed")

		reg, err = env.svc.GetByID(ctx, reg.ID)
		require.NoError(t, err)
		assert.True(t, reg.PaymentSent)
	})
}

func TestService_CheckScheduleCapacity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tut := env.createTutor(t, "Teka")
	sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 2, 3)
	sess1, sess2 := sch.Sessions[0], sch.Sessions[1]

	usr1 := env.createUser(t, "Awe", true)
	usr2 := env.createUser(t, "King", true)

	reg1, err := env.svc.Create(ctx, usr1.ID, registration.NewRegistration{ScheduleID: sch.ID, SessionID: sess1.ID})
	require.NoError(t, err)
	_, err = env.svc.UpdatePaymentStatus(ctx, reg1.ID, registration.UpdatePayment{PaymentStatus: registration.PaymentPaid})
	require.NoError(t, err)
	_, err = env.svc.UpdateStatus(ctx, reg1.ID, registration.UpdateStatus{Status: registration.StatusApproved})
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, usr2.ID, registration.NewRegistration{ScheduleID: sch.ID, SessionID: sess1.ID})
	require.NoError(t, err)

	report, err := env.svc.CheckScheduleCapacity(ctx, sch.ID)
	require.NoError(t, err)
	require.Len(t, report, 2)

	byID := map[string]registration.SessionCapacity{}
	for _, sc := range report {
		byID[sc.SessionID] = sc
	}

	sc1 := byID[sess1.ID]
	assert.Equal(t, 2, sc1.TotalCapacity)
	assert.Equal(t, 1, sc1.Approved)
	assert.Equal(t, 1, sc1.Pending)
	assert.Equal(t, 1, sc1.Paid)
	assert.Equal(t, 1, sc1.Available)
	assert.False(t, sc1.IsFull)
	assert.Equal(t, "Teka", sc1.TutorName)

	sc2 := byID[sess2.ID]
	assert.Equal(t, 3, sc2.TotalCapacity)
	assert.Equal(t, 3, sc2.Available)
	assert.False(t, sc2.IsFull)
}

func TestService_legacyIndexHealing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tut := env.createTutor(t, "Teka")
	sch := env.createSchedule(t, "Salsa Beginners", tut.ID, 5, 5)
	usr := env.createUser(t, "Awe", true)

	// first registration goes through even on an unhealed deployment
	env.db.SimulateLegacyIndex()
	_, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
		ScheduleID: sch.ID,
		SessionID:  sch.Sessions[0].ID,
	})
	require.NoError(t, err)

	// the second session of the same schedule trips the stale (user, schedule)
	// index; the service drops it and retries transparently
	reg, err := env.svc.Create(ctx, usr.ID, registration.NewRegistration{
		ScheduleID: sch.ID,
		SessionID:  sch.Sessions[1].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPending, reg.Status)

	regs, err := env.svc.QueryByUser(ctx, usr.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 2)
}
