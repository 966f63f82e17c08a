package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/wayteam/way-backend/core/tutor"
)

type tutorRepository struct {
	db *DB
}

var _ tutor.Repository = (*tutorRepository)(nil) // interface compliance check

func NewTutorRepository(db *DB) *tutorRepository {
	return &tutorRepository{db: db}
}

func (repo *tutorRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedTutors ...tutor.Tutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedTutors))
	for _, t := range excludedTutors {
		excluded[t.ID] = true
	}
	for _, t := range repo.db.tutors {
		if t.Email == email && !excluded[t.ID] {
			return tutor.ErrEmailExists
		}
	}
	return nil
}

func (repo *tutorRepository) CreateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = uuid.NewString()
	repo.db.tutors[t.ID] = &t
	return t, nil
}

func (repo *tutorRepository) QueryAllTutors(ctx context.Context) ([]tutor.Tutor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tutors := make([]tutor.Tutor, 0, len(repo.db.tutors))
	for _, t := range repo.db.tutors {
		tutors = append(tutors, *t)
	}
	return tutors, nil
}

func (repo *tutorRepository) GetTutor(ctx context.Context, filter tutor.GetFilter) (tutor.Tutor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if t, ok := repo.db.tutors[filter.ID]; ok {
			return *t, nil
		}
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	for _, t := range repo.db.tutors {
		if t.Email == filter.Email {
			return *t, nil
		}
	}
	return tutor.Tutor{}, tutor.ErrNotFound
}

func (repo *tutorRepository) UpdateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tutors[t.ID]; !ok {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	repo.db.tutors[t.ID] = &t
	return t, nil
}

func (repo *tutorRepository) DeleteTutor(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.tutors, id)
	return nil
}
