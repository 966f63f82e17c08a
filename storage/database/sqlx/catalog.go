package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/catalog"
)

type productRow struct {
	ID         string         `db:"id"`
	Title      string         `db:"title"`
	Text       string         `db:"text"`
	Slug       string         `db:"slug"`
	Price      float64        `db:"price"`
	Images     pq.StringArray `db:"images"`
	CategoryID string         `db:"category_id"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r productRow) toProduct() catalog.Product {
	return catalog.Product{
		ID:         r.ID,
		Title:      r.Title,
		Text:       r.Text,
		Slug:       r.Slug,
		Price:      r.Price,
		Images:     r.Images,
		CategoryID: r.CategoryID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	query := `
		INSERT INTO product_categories (id, name, slug, created_at, updated_at)
		VALUES (:id, :name, :slug, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, c); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return catalog.Category{}, catalog.ErrSlugExists
		}
		return catalog.Category{}, errors.Wrap(err, "inserting category")
	}
	return c, nil
}

func (repo catalogRepository) QueryAllCategories(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := repo.db.SelectContext(ctx, &categories, `SELECT * FROM product_categories ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return categories, nil
}

func (repo catalogRepository) GetCategory(ctx context.Context, idOrSlug string) (catalog.Category, error) {
	var c catalog.Category
	query := `SELECT * FROM product_categories WHERE slug = $1`
	if _, err := uuid.Parse(idOrSlug); err == nil {
		query = `SELECT * FROM product_categories WHERE id = $1`
	}
	if err := repo.db.GetContext(ctx, &c, query, idOrSlug); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Category{}, catalog.ErrCategoryNotFound
		}
		return catalog.Category{}, errors.Wrap(err, "finding category")
	}
	return c, nil
}

func (repo catalogRepository) DeleteCategory(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM product_categories WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return nil
}

func (repo catalogRepository) CheckProductSlugUniqueness(ctx context.Context, slug string) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`, slug,
	); err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if exists {
		return catalog.ErrSlugExists
	}
	return nil
}

func (repo catalogRepository) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	query := `
		INSERT INTO products (id, title, text, slug, price, images, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := repo.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Text, p.Slug, p.Price, pq.Array(p.Images), p.CategoryID, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	); err != nil {
		return catalog.Product{}, errors.Wrap(err, "inserting product")
	}
	return p, nil
}

func (repo catalogRepository) QueryAllProducts(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	var rows []productRow
	query := `SELECT * FROM products WHERE ($1 = '' OR category_id::text = $1) ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, categoryID); err != nil {
		return nil, errors.Wrap(err, "querying products")
	}
	products := make([]catalog.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toProduct())
	}
	return products, nil
}

func (repo catalogRepository) GetProduct(ctx context.Context, idOrSlug string) (catalog.Product, error) {
	var row productRow
	query := `SELECT * FROM products WHERE slug = $1`
	if _, err := uuid.Parse(idOrSlug); err == nil {
		query = `SELECT * FROM products WHERE id = $1`
	}
	if err := repo.db.GetContext(ctx, &row, query, idOrSlug); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, errors.Wrap(err, "finding product")
	}
	return row.toProduct(), nil
}

func (repo catalogRepository) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	query := `
		UPDATE products SET
			title = $2, text = $3, price = $4, images = $5, category_id = $6, updated_at = $7
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Text, p.Price, pq.Array(p.Images), p.CategoryID, p.UpdatedAt.UTC())
	if err != nil {
		return catalog.Product{}, errors.Wrap(err, "updating product")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (repo catalogRepository) DeleteProduct(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting product")
	}
	return nil
}

func (repo catalogRepository) CreateRequest(ctx context.Context, r catalog.Request) (catalog.Request, error) {
	query := `
		INSERT INTO product_requests (
			id, product_id, full_name, email, phone_number, message, status, created_at, updated_at
		) VALUES (
			:id, :product_id, :full_name, :email, :phone_number, :message, :status, :created_at, :updated_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, r); err != nil {
		return catalog.Request{}, errors.Wrap(err, "inserting product request")
	}
	return r, nil
}

func (repo catalogRepository) QueryAllRequests(ctx context.Context, status string) ([]catalog.Request, error) {
	var requests []catalog.Request
	query := `SELECT * FROM product_requests WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &requests, query, status); err != nil {
		return nil, errors.Wrap(err, "querying product requests")
	}
	return requests, nil
}

func (repo catalogRepository) GetRequest(ctx context.Context, id string) (catalog.Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Request{}, catalog.ErrRequestNotFound
	}
	var r catalog.Request
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM product_requests WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Request{}, catalog.ErrRequestNotFound
		}
		return catalog.Request{}, errors.Wrap(err, "finding product request")
	}
	return r, nil
}

func (repo catalogRepository) UpdateRequest(ctx context.Context, r catalog.Request) (catalog.Request, error) {
	query := `UPDATE product_requests SET status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, r)
	if err != nil {
		return catalog.Request{}, errors.Wrap(err, "updating product request")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.Request{}, catalog.ErrRequestNotFound
	}
	return r, nil
}
