package inmemdb

import (
	"context"
	"sort"

	"github.com/wayteam/way-backend/core/registration"
	"github.com/wayteam/way-backend/core/schedule"
)

type registrationRepository struct {
	db *DB
}

var (
	_ registration.Repository    = (*registrationRepository)(nil) // interface compliance check
	_ schedule.RegistrationStore = (*registrationRepository)(nil)
)

func NewRegistrationRepository(db *DB) *registrationRepository {
	return &registrationRepository{db: db}
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, r registration.Registration) (registration.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.registrations {
		if existing.UserID == r.UserID && existing.ScheduleID == r.ScheduleID {
			if repo.db.legacyUserScheduleIndex {
				return registration.Registration{}, registration.ErrLegacyIndexConflict
			}
			if existing.SessionID == r.SessionID {
				return registration.Registration{}, registration.ErrDuplicate
			}
		}
	}
	repo.db.registrations[r.ID] = &r
	return r, nil
}

func (repo *registrationRepository) GetRegistration(ctx context.Context, id string) (registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.registrations[id]; ok {
		return *r, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) GetByTriple(ctx context.Context, userID, scheduleID, sessionID string) (registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, r := range repo.db.registrations {
		if r.UserID == userID && r.ScheduleID == scheduleID && r.SessionID == sessionID {
			return *r, nil
		}
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) SessionCounts(ctx context.Context, sessionID string) (registration.Counts, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var counts registration.Counts
	for _, r := range repo.db.registrations {
		if r.SessionID != sessionID {
			continue
		}
		switch r.Status {
		case registration.StatusApproved:
			counts.Approved++
		case registration.StatusPending:
			counts.Pending++
		}
		if r.PaymentStatus == registration.PaymentPaid || r.PaymentStatus == registration.PaymentFree {
			counts.Paid++
		}
	}
	return counts, nil
}

func (repo *registrationRepository) detail(r registration.Registration) registration.Detail {
	d := registration.Detail{Registration: r}
	if usr, ok := repo.db.users[r.UserID]; ok {
		d.UserFullName = usr.FullName
		d.UserEmail = usr.Email
		d.UserPhoneNumber = usr.PhoneNumber
	}
	if sch, ok := repo.db.schedules[r.ScheduleID]; ok {
		d.ScheduleTitle = sch.Title
		d.ScheduleSlug = sch.Slug
	}
	return d
}

func sortDetails(details []registration.Detail) {
	sort.Slice(details, func(i, j int) bool {
		return details[i].CreatedAt.After(details[j].CreatedAt)
	})
}

func (repo *registrationRepository) QueryBySchedule(ctx context.Context, scheduleID string, filter registration.QueryFilter) ([]registration.Detail, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var details []registration.Detail
	for _, r := range repo.db.registrations {
		if r.ScheduleID != scheduleID {
			continue
		}
		if filter.SessionID != "" && r.SessionID != filter.SessionID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		details = append(details, repo.detail(*r))
	}
	sortDetails(details)
	return details, nil
}

func (repo *registrationRepository) QueryByUser(ctx context.Context, userID string) ([]registration.Detail, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var details []registration.Detail
	for _, r := range repo.db.registrations {
		if r.UserID == userID {
			details = append(details, repo.detail(*r))
		}
	}
	sortDetails(details)
	return details, nil
}

func (repo *registrationRepository) QueryAll(ctx context.Context, filter registration.QueryFilter) ([]registration.Detail, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var details []registration.Detail
	for _, r := range repo.db.registrations {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.SessionID != "" && r.SessionID != filter.SessionID {
			continue
		}
		details = append(details, repo.detail(*r))
	}
	sortDetails(details)

	total := len(details)
	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return details[start:end], total, nil
}

func (repo *registrationRepository) UpdateRegistration(ctx context.Context, r registration.Registration) (registration.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.registrations[r.ID]; !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	repo.db.registrations[r.ID] = &r
	return r, nil
}

func (repo *registrationRepository) DropLegacyUserScheduleIndex(ctx context.Context) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.legacyUserScheduleIndex = false
	return nil
}

// schedule.RegistrationStore

func (repo *registrationRepository) CountByScheduleID(ctx context.Context, scheduleID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, r := range repo.db.registrations {
		if r.ScheduleID == scheduleID {
			count++
		}
	}
	return count, nil
}

func (repo *registrationRepository) QueryRegistrantsByScheduleID(ctx context.Context, scheduleID string) ([]schedule.Registrant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[string]bool)
	var registrants []schedule.Registrant
	for _, r := range repo.db.registrations {
		if r.ScheduleID != scheduleID || seen[r.UserID] {
			continue
		}
		seen[r.UserID] = true
		registrant := schedule.Registrant{UserID: r.UserID}
		if usr, ok := repo.db.users[r.UserID]; ok {
			registrant.FullName = usr.FullName
			registrant.Email = usr.Email
		}
		registrants = append(registrants, registrant)
	}
	return registrants, nil
}

func (repo *registrationRepository) DeleteByScheduleID(ctx context.Context, scheduleID string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for id, r := range repo.db.registrations {
		if r.ScheduleID == scheduleID {
			delete(repo.db.registrations, id)
			n++
		}
	}
	return n, nil
}
