package inmemdb

import (
	"context"

	"github.com/wayteam/way-backend/core/page"
)

type pageRepository struct {
	db *DB
}

var _ page.Repository = (*pageRepository)(nil) // interface compliance check

func NewPageRepository(db *DB) *pageRepository {
	return &pageRepository{db: db}
}

func (repo *pageRepository) GetPage(ctx context.Context, name string) (page.Page, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.pages[name]; ok {
		return *p, nil
	}
	return page.Page{}, page.ErrNotFound
}

func (repo *pageRepository) UpsertPage(ctx context.Context, p page.Page) (page.Page, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pages[p.Name] = &p
	return p, nil
}
