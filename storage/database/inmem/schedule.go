package inmemdb

import (
	"context"

	"github.com/wayteam/way-backend/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedSchedules ...schedule.Schedule) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedSchedules))
	for _, s := range excludedSchedules {
		excluded[s.ID] = true
	}
	for _, s := range repo.db.schedules {
		if s.Slug == slug && !excluded[s.ID] {
			return schedule.ErrSlugExists
		}
	}
	return nil
}

func (repo *scheduleRepository) CreateSchedule(ctx context.Context, s schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.schedules[s.ID] = &s
	return s, nil
}

func (repo *scheduleRepository) QueryAllSchedules(ctx context.Context, includeDrafts bool) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	schedules := make([]schedule.Schedule, 0, len(repo.db.schedules))
	for _, s := range repo.db.schedules {
		if !includeDrafts && !s.IsPublished() {
			continue
		}
		schedules = append(schedules, *s)
	}
	return schedules, nil
}

func (repo *scheduleRepository) QuerySchedulesByTutor(ctx context.Context, tutorID string) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var schedules []schedule.Schedule
	for _, s := range repo.db.schedules {
		for _, sess := range s.Sessions {
			if sess.TutorID == tutorID {
				schedules = append(schedules, *s)
				break
			}
		}
	}
	return schedules, nil
}

func (repo *scheduleRepository) GetSchedule(ctx context.Context, filter schedule.GetFilter) (schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(s *schedule.Schedule) bool {
		if filter.ID != "" {
			return s.ID == filter.ID
		}
		return s.Slug == filter.Slug
	}
	for _, s := range repo.db.schedules {
		if match(s) {
			if !filter.IncludeDrafts && !s.IsPublished() {
				return schedule.Schedule{}, schedule.ErrNotFound
			}
			return *s, nil
		}
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) UpdateSchedule(ctx context.Context, s schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schedules[s.ID]; !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	repo.db.schedules[s.ID] = &s
	return s, nil
}

func (repo *scheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.schedules, id)
	return nil
}
