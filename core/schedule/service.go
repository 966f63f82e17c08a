package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core"
)

type (
	Repository interface {
		CheckSlugUniqueness(ctx context.Context, slug string, excludedSchedules ...Schedule) error
		CreateSchedule(ctx context.Context, s Schedule) (Schedule, error)
		QueryAllSchedules(ctx context.Context, includeDrafts bool) ([]Schedule, error)
		QuerySchedulesByTutor(ctx context.Context, tutorID string) ([]Schedule, error)
		GetSchedule(ctx context.Context, filter GetFilter) (Schedule, error)
		UpdateSchedule(ctx context.Context, s Schedule) (Schedule, error)
		DeleteSchedule(ctx context.Context, id string) error
	}

	// GetFilter selects a single Schedule; exactly one of ID/Slug should be set.
	// Drafts are only visible when IncludeDrafts is set (admin callers).
	GetFilter struct {
		ID            string
		Slug          string
		IncludeDrafts bool
	}

	// Registrant identifies a user holding a registration on a schedule,
	// with just enough contact info to send a cancellation notice.
	Registrant struct {
		UserID   string
		FullName string
		Email    string
	}

	// RegistrationStore is the slice of the registration storage the schedule
	// service needs for forced deletion. Implemented by the registration
	// repository, wired up in main.
	RegistrationStore interface {
		CountByScheduleID(ctx context.Context, scheduleID string) (int, error)
		QueryRegistrantsByScheduleID(ctx context.Context, scheduleID string) ([]Registrant, error)
		DeleteByScheduleID(ctx context.Context, scheduleID string) (int, error)
	}

	// CancellationNotifier tells affected registrants their schedule is gone.
	// Sends are best-effort; implementations log failures and never return them.
	CancellationNotifier interface {
		NotifyScheduleCancelled(sch Schedule, recipients []Registrant)
	}

	Service struct {
		repo     Repository
		regs     RegistrationStore
		notifier CancellationNotifier
		logger   core.Logger
	}
)

func NewService(repo Repository, regs RegistrationStore, notifier CancellationNotifier, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		regs:     regs,
		notifier: notifier,
		logger:   logger,
	}
}

var (
	ErrNotFound   = core.NewNotFoundError("schedule_not_found", "schedule not found")
	ErrSlugExists = core.NewConflictError("schedule_slug_exists", "a schedule with this title already exists")
)

func (svc *Service) Create(ctx context.Context, ns NewSchedule) (Schedule, error) {
	slug := core.Slugify(ns.Title)
	if err := svc.repo.CheckSlugUniqueness(ctx, slug); err != nil {
		return Schedule{}, err
	}

	now := time.Now().UTC()
	s := Schedule{
		ID:        uuid.NewString(),
		Title:     ns.Title,
		Text:      ns.Text,
		Slug:      slug,
		Price:     ns.Price,
		Status:    ns.Status,
		Images:    ns.Images,
		Sessions:  make([]Session, 0, len(ns.Sessions)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, nsess := range ns.Sessions {
		s.Sessions = append(s.Sessions, Session{
			ID:        uuid.NewString(),
			StartDate: nsess.StartDate,
			EndDate:   nsess.EndDate,
			Time:      nsess.Time,
			Period:    nsess.Period,
			Capacity:  nsess.Capacity,
			TutorID:   nsess.TutorID,
		})
	}
	return svc.repo.CreateSchedule(ctx, s)
}

func (svc *Service) Query(ctx context.Context, includeDrafts bool) ([]Schedule, error) {
	return svc.repo.QueryAllSchedules(ctx, includeDrafts)
}

func (svc *Service) QueryByTutor(ctx context.Context, tutorID string) ([]Schedule, error) {
	return svc.repo.QuerySchedulesByTutor(ctx, tutorID)
}

func (svc *Service) GetBySlug(ctx context.Context, slug string, includeDrafts bool) (Schedule, error) {
	return svc.repo.GetSchedule(ctx, GetFilter{Slug: slug, IncludeDrafts: includeDrafts})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Schedule, error) {
	return svc.repo.GetSchedule(ctx, GetFilter{ID: id, IncludeDrafts: true})
}

// Update modifies schedule fields and, when a session list is supplied,
// replaces the whole list. Supplied sessions that carry an ID keep it, so
// existing registrations stay attached; the slug never changes on update.
func (svc *Service) Update(ctx context.Context, slug string, us UpdateSchedule) (Schedule, error) {
	s, err := svc.repo.GetSchedule(ctx, GetFilter{Slug: slug, IncludeDrafts: true})
	if err != nil {
		return Schedule{}, err
	}

	if us.Title != "" {
		s.Title = us.Title
	}
	if us.Text != "" {
		s.Text = us.Text
	}
	if us.Price != nil {
		s.Price = *us.Price
	}
	if us.Status != "" {
		s.Status = us.Status
	}
	if us.Images != nil {
		s.Images = us.Images
	}
	if us.Sessions != nil {
		sessions := make([]Session, 0, len(us.Sessions))
		for _, usess := range us.Sessions {
			id := usess.ID
			if id == "" {
				id = uuid.NewString()
			}
			sessions = append(sessions, Session{
				ID:        id,
				StartDate: usess.StartDate,
				EndDate:   usess.EndDate,
				Time:      usess.Time,
				Period:    usess.Period,
				Capacity:  usess.Capacity,
				TutorID:   usess.TutorID,
			})
		}
		s.Sessions = sessions
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchedule(ctx, s)
}

// Delete removes a schedule. It is refused while registrations reference the
// schedule unless force is set, in which case all registrations are removed
// after their holders are sent a cancellation notice.
func (svc *Service) Delete(ctx context.Context, slug string, force bool) error {
	s, err := svc.repo.GetSchedule(ctx, GetFilter{Slug: slug, IncludeDrafts: true})
	if err != nil {
		return err
	}

	count, err := svc.regs.CountByScheduleID(ctx, s.ID)
	if err != nil {
		return errors.Wrap(err, "counting registrations")
	}
	if count > 0 {
		if !force {
			return core.NewBadRequestError(
				"schedule_has_registrations",
				"schedule has registrations; pass force to delete it along with them",
			)
		}
		registrants, err := svc.regs.QueryRegistrantsByScheduleID(ctx, s.ID)
		if err != nil {
			return errors.Wrap(err, "querying registrants")
		}
		svc.notifier.NotifyScheduleCancelled(s, registrants)
		if n, err := svc.regs.DeleteByScheduleID(ctx, s.ID); err != nil {
			return errors.Wrap(err, "deleting registrations")
		} else if n > 0 {
			svc.logger.Info("deleted registrations for schedule", n, s.Slug)
		}
	}
	return svc.repo.DeleteSchedule(ctx, s.ID)
}
