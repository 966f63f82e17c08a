package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/wayteam/way-backend/core/admin"
)

type adminRepository struct {
	db *DB
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(db *DB) *adminRepository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedAdmins ...admin.Admin) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedAdmins))
	for _, a := range excludedAdmins {
		excluded[a.ID] = true
	}
	for _, adm := range repo.db.admins {
		if adm.Email == email && !excluded[adm.ID] {
			return admin.ErrEmailExists
		}
	}
	return nil
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	adm.ID = uuid.NewString()
	repo.db.admins[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) QueryAllAdmins(ctx context.Context) ([]admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	admins := make([]admin.Admin, 0, len(repo.db.admins))
	for _, adm := range repo.db.admins {
		admins = append(admins, *adm)
	}
	return admins, nil
}

func (repo *adminRepository) GetAdmin(ctx context.Context, filter admin.GetFilter) (admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if adm, ok := repo.db.admins[filter.ID]; ok {
			return *adm, nil
		}
		return admin.Admin{}, admin.ErrNotFound
	}
	for _, adm := range repo.db.admins {
		if adm.Email == filter.Email {
			return *adm, nil
		}
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.admins[adm.ID]; !ok {
		return admin.Admin{}, admin.ErrNotFound
	}
	repo.db.admins[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) DeleteAdmin(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.admins[id]; !ok {
		return admin.ErrNotFound
	}
	delete(repo.db.admins, id)
	return nil
}
