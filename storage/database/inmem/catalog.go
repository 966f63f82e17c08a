package inmemdb

import (
	"context"

	"github.com/wayteam/way-backend/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.categories[c.ID] = &c
	return c, nil
}

func (repo *catalogRepository) QueryAllCategories(ctx context.Context) ([]catalog.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	categories := make([]catalog.Category, 0, len(repo.db.categories))
	for _, c := range repo.db.categories {
		categories = append(categories, *c)
	}
	return categories, nil
}

func (repo *catalogRepository) GetCategory(ctx context.Context, idOrSlug string) (catalog.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.categories {
		if c.ID == idOrSlug || c.Slug == idOrSlug {
			return *c, nil
		}
	}
	return catalog.Category{}, catalog.ErrCategoryNotFound
}

func (repo *catalogRepository) DeleteCategory(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.categories[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	delete(repo.db.categories, id)
	return nil
}

func (repo *catalogRepository) CheckProductSlugUniqueness(ctx context.Context, slug string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.products {
		if p.Slug == slug {
			return catalog.ErrSlugExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.products[p.ID] = &p
	return p, nil
}

func (repo *catalogRepository) QueryAllProducts(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var products []catalog.Product
	for _, p := range repo.db.products {
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

func (repo *catalogRepository) GetProduct(ctx context.Context, idOrSlug string) (catalog.Product, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.products {
		if p.ID == idOrSlug || p.Slug == idOrSlug {
			return *p, nil
		}
	}
	return catalog.Product{}, catalog.ErrProductNotFound
}

func (repo *catalogRepository) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.products[p.ID]; !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	repo.db.products[p.ID] = &p
	return p, nil
}

func (repo *catalogRepository) DeleteProduct(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(repo.db.products, id)
	return nil
}

func (repo *catalogRepository) CreateRequest(ctx context.Context, r catalog.Request) (catalog.Request, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.requests[r.ID] = &r
	return r, nil
}

func (repo *catalogRepository) QueryAllRequests(ctx context.Context, status string) ([]catalog.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var requests []catalog.Request
	for _, r := range repo.db.requests {
		if status != "" && r.Status != status {
			continue
		}
		requests = append(requests, *r)
	}
	return requests, nil
}

func (repo *catalogRepository) GetRequest(ctx context.Context, id string) (catalog.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.requests[id]; ok {
		return *r, nil
	}
	return catalog.Request{}, catalog.ErrRequestNotFound
}

func (repo *catalogRepository) UpdateRequest(ctx context.Context, r catalog.Request) (catalog.Request, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.requests[r.ID]; !ok {
		return catalog.Request{}, catalog.ErrRequestNotFound
	}
	repo.db.requests[r.ID] = &r
	return r, nil
}
