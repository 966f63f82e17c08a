package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/page"
)

type pageRow struct {
	Name      string         `db:"name"`
	Title     string         `db:"title"`
	Text      string         `db:"text"`
	Images    pq.StringArray `db:"images"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type pageRepository struct {
	db *sqlx.DB
}

var _ page.Repository = (*pageRepository)(nil) // interface compliance check

func NewPageRepository(db *sqlx.DB) *pageRepository {
	return &pageRepository{db: db}
}

func (repo pageRepository) GetPage(ctx context.Context, name string) (page.Page, error) {
	var row pageRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM pages WHERE name = $1`, name); err != nil {
		if err == sql.ErrNoRows {
			return page.Page{}, page.ErrNotFound
		}
		return page.Page{}, errors.Wrap(err, "finding page")
	}
	return page.Page{
		Name:      row.Name,
		Title:     row.Title,
		Text:      row.Text,
		Images:    row.Images,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (repo pageRepository) UpsertPage(ctx context.Context, p page.Page) (page.Page, error) {
	p.UpdatedAt = time.Now().UTC()
	query := `
		INSERT INTO pages (name, title, text, images, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			title = EXCLUDED.title,
			text = EXCLUDED.text,
			images = EXCLUDED.images,
			updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.ExecContext(ctx, query,
		p.Name, p.Title, p.Text, pq.Array(p.Images), p.UpdatedAt,
	); err != nil {
		return page.Page{}, errors.Wrap(err, "upserting page")
	}
	return p, nil
}
