package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/registration"
	"github.com/wayteam/way-backend/core/schedule"
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

type cancellationRecorder struct {
	schedules  []schedule.Schedule
	recipients []schedule.Registrant
}

func (r *cancellationRecorder) NotifyScheduleCancelled(sch schedule.Schedule, recipients []schedule.Registrant) {
	r.schedules = append(r.schedules, sch)
	r.recipients = append(r.recipients, recipients...)
}

func newSchedule(title string, status string) schedule.NewSchedule {
	start := time.Now().UTC().AddDate(0, 0, 1)
	return schedule.NewSchedule{
		Title:  title,
		Text:   "some text",
		Price:  50,
		Status: status,
		Sessions: []schedule.NewSession{{
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 7),
			Time:      "18:30",
			Period:    "2hours",
			Capacity:  10,
			TutorID:   "t1",
		}},
	}
}

func setup(t *testing.T) (*inmemdb.DB, *cancellationRecorder, *schedule.Service, registration.Repository) {
	t.Helper()
	db := inmemdb.NewDB()
	notifier := &cancellationRecorder{}
	regRepo := inmemdb.NewRegistrationRepository(db)
	svc := schedule.NewService(inmemdb.NewScheduleRepository(db), regRepo, notifier, nopLogger{})
	return db, notifier, svc, regRepo
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	_, _, svc, _ := setup(t)

	sch, err := svc.Create(ctx, newSchedule("Salsa for Beginners!", schedule.StatusPublished))
	require.NoError(t, err)
	assert.Equal(t, "salsa-for-beginners", sch.Slug)
	require.Len(t, sch.Sessions, 1)
	assert.NotEmpty(t, sch.Sessions[0].ID)

	// same title, same slug
	_, err = svc.Create(ctx, newSchedule("Salsa for Beginners!", schedule.StatusPublished))
	require.Error(t, err)
	appErr, ok := core.AppErrorOf(err)
	require.True(t, ok)
	assert.Equal(t, "schedule_slug_exists", appErr.Reason)
}

func TestService_draftVisibility(t *testing.T) {
	ctx := context.Background()
	_, _, svc, _ := setup(t)

	pub, err := svc.Create(ctx, newSchedule("Published", schedule.StatusPublished))
	require.NoError(t, err)
	draft, err := svc.Create(ctx, newSchedule("Draft", schedule.StatusDraft))
	require.NoError(t, err)

	public, err := svc.Query(ctx, false /* includeDrafts */)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, pub.ID, public[0].ID)

	all, err := svc.Query(ctx, true /* includeDrafts */)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.GetBySlug(ctx, draft.Slug, false /* includeDrafts */)
	require.Error(t, err)
	assert.True(t, core.IsErrorKind(err, core.KindNotFound))

	got, err := svc.GetBySlug(ctx, draft.Slug, true /* includeDrafts */)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	_, _, svc, _ := setup(t)

	sch, err := svc.Create(ctx, newSchedule("Salsa Beginners", schedule.StatusDraft))
	require.NoError(t, err)
	keptID := sch.Sessions[0].ID

	start := time.Now().UTC().AddDate(0, 0, 2)
	price := 75.0
	updated, err := svc.Update(ctx, sch.Slug, schedule.UpdateSchedule{
		Title:  "Salsa Beginners (new)",
		Price:  &price,
		Status: schedule.StatusPublished,
		Sessions: []schedule.UpdateSession{
			{
				ID:        keptID,
				StartDate: start,
				EndDate:   start.AddDate(0, 0, 7),
				Time:      "19:00",
				Period:    "2hours",
				Capacity:  12,
				TutorID:   "t1",
			},
			{
				StartDate: start.AddDate(0, 0, 1),
				EndDate:   start.AddDate(0, 0, 8),
				Time:      "10:00",
				Period:    "2hours",
				Capacity:  8,
				TutorID:   "t2",
			},
		},
	})
	require.NoError(t, err)

	// the slug sticks to the original title
	assert.Equal(t, "salsa-beginners", updated.Slug)
	assert.Equal(t, "Salsa Beginners (new)", updated.Title)
	assert.Equal(t, 75.0, updated.Price)
	assert.Equal(t, schedule.StatusPublished, updated.Status)

	require.Len(t, updated.Sessions, 2)
	kept, ok := updated.Session(keptID)
	require.True(t, ok, "session with an ID must survive the update")
	assert.Equal(t, 12, kept.Capacity)
	assert.NotEmpty(t, updated.Sessions[1].ID)
	assert.NotEqual(t, keptID, updated.Sessions[1].ID)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("no registrations", func(t *testing.T) {
		_, notifier, svc, _ := setup(t)
		sch, err := svc.Create(ctx, newSchedule("Salsa Beginners", schedule.StatusPublished))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, sch.Slug, false /* force */))
		_, err = svc.GetBySlug(ctx, sch.Slug, true)
		require.Error(t, err)
		assert.Empty(t, notifier.schedules)
	})

	t.Run("refused while registered, force notifies and purges", func(t *testing.T) {
		db, notifier, svc, regRepo := setup(t)
		sch, err := svc.Create(ctx, newSchedule("Salsa Beginners", schedule.StatusPublished))
		require.NoError(t, err)

		usrRepo := inmemdb.NewUserRepository(db)
		for i, name := range []string{"Awe", "King", "Hero", "Teka", "Nana"} {
			usr, err := usrRepo.CreateUser(ctx, user.User{FullName: name, Email: name + "@test.cd", Verified: true})
			require.NoError(t, err)
			_, err = regRepo.CreateRegistration(ctx, registration.Registration{
				ID:            usr.ID + "-reg",
				UserID:        usr.ID,
				ScheduleID:    sch.ID,
				SessionID:     sch.Sessions[i%len(sch.Sessions)].ID,
				Status:        registration.StatusPending,
				PaymentStatus: registration.PaymentUnpaid,
			})
			require.NoError(t, err)
		}

		err = svc.Delete(ctx, sch.Slug, false /* force */)
		require.Error(t, err)
		appErr, ok := core.AppErrorOf(err)
		require.True(t, ok)
		assert.Equal(t, core.KindBadRequest, appErr.Kind)
		assert.Equal(t, "schedule_has_registrations", appErr.Reason)

		require.NoError(t, svc.Delete(ctx, sch.Slug, true /* force */))
		assert.Len(t, notifier.recipients, 5)

		store := regRepo.(schedule.RegistrationStore)
		count, err := store.CountByScheduleID(ctx, sch.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
