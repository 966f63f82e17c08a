package page

import (
	"context"

	"github.com/wayteam/way-backend/core"
)

var (
	ErrNotFound    = core.NewNotFoundError("page_not_found", "page not found")
	ErrUnknownName = core.NewBadRequestError("page_unknown", "unknown page name")
)

type (
	Repository interface {
		GetPage(ctx context.Context, name string) (Page, error)
		UpsertPage(ctx context.Context, p Page) (Page, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the page content, or an empty page document when nothing has
// been published under that name yet.
func (svc *Service) Get(ctx context.Context, name string) (Page, error) {
	if !IsKnownName(name) {
		return Page{}, ErrUnknownName
	}
	p, err := svc.repo.GetPage(ctx, name)
	if core.IsErrorKind(err, core.KindNotFound) {
		return Page{Name: name}, nil
	}
	return p, err
}

func (svc *Service) Update(ctx context.Context, name string, up UpdatePage) (Page, error) {
	if !IsKnownName(name) {
		return Page{}, ErrUnknownName
	}
	p, err := svc.repo.GetPage(ctx, name)
	if err != nil && !core.IsErrorKind(err, core.KindNotFound) {
		return Page{}, err
	}
	p.Name = name
	if up.Title != "" {
		p.Title = up.Title
	}
	if up.Text != "" {
		p.Text = up.Text
	}
	if up.Images != nil {
		p.Images = up.Images
	}
	return svc.repo.UpsertPage(ctx, p)
}
