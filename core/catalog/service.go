package catalog

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/wayteam/way-backend/core"
)

var (
	ErrProductNotFound  = core.NewNotFoundError("product_not_found", "product not found")
	ErrCategoryNotFound = core.NewNotFoundError("category_not_found", "category not found")
	ErrRequestNotFound  = core.NewNotFoundError("product_request_not_found", "product request not found")
	ErrSlugExists       = core.NewConflictError("catalog_slug_exists", "an item with this title already exists")
)

type (
	Repository interface {
		CreateCategory(ctx context.Context, c Category) (Category, error)
		QueryAllCategories(ctx context.Context) ([]Category, error)
		GetCategory(ctx context.Context, idOrSlug string) (Category, error)
		DeleteCategory(ctx context.Context, id string) error

		CheckProductSlugUniqueness(ctx context.Context, slug string) error
		CreateProduct(ctx context.Context, p Product) (Product, error)
		QueryAllProducts(ctx context.Context, categoryID string) ([]Product, error)
		GetProduct(ctx context.Context, idOrSlug string) (Product, error)
		UpdateProduct(ctx context.Context, p Product) (Product, error)
		DeleteProduct(ctx context.Context, id string) error

		CreateRequest(ctx context.Context, r Request) (Request, error)
		QueryAllRequests(ctx context.Context, status string) ([]Request, error)
		GetRequest(ctx context.Context, id string) (Request, error)
		UpdateRequest(ctx context.Context, r Request) (Request, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCategory(ctx, Category{
		ID:        uuid.NewString(),
		Name:      nc.Name,
		Slug:      core.Slugify(nc.Name),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryCategories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *Service) GetCategory(ctx context.Context, idOrSlug string) (Category, error) {
	return svc.repo.GetCategory(ctx, idOrSlug)
}

func (svc *Service) DeleteCategory(ctx context.Context, id string) error {
	return svc.repo.DeleteCategory(ctx, id)
}

func (svc *Service) CreateProduct(ctx context.Context, np NewProduct) (Product, error) {
	if _, err := svc.repo.GetCategory(ctx, np.CategoryID); err != nil {
		return Product{}, err
	}
	slug := core.Slugify(np.Title)
	if err := svc.repo.CheckProductSlugUniqueness(ctx, slug); err != nil {
		return Product{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateProduct(ctx, Product{
		ID:         uuid.NewString(),
		Title:      np.Title,
		Text:       np.Text,
		Slug:       slug,
		Price:      np.Price,
		Images:     np.Images,
		CategoryID: np.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *Service) QueryProducts(ctx context.Context, categoryID string) ([]Product, error) {
	return svc.repo.QueryAllProducts(ctx, categoryID)
}

func (svc *Service) GetProduct(ctx context.Context, idOrSlug string) (Product, error) {
	return svc.repo.GetProduct(ctx, idOrSlug)
}

func (svc *Service) UpdateProduct(ctx context.Context, idOrSlug string, up UpdateProduct) (Product, error) {
	p, err := svc.repo.GetProduct(ctx, idOrSlug)
	if err != nil {
		return Product{}, err
	}
	if up.Title != "" {
		p.Title = up.Title
	}
	if up.Text != "" {
		p.Text = up.Text
	}
	if up.Price != nil {
		p.Price = *up.Price
	}
	if up.Images != nil {
		p.Images = up.Images
	}
	if up.CategoryID != "" {
		if _, err := svc.repo.GetCategory(ctx, up.CategoryID); err != nil {
			return Product{}, err
		}
		p.CategoryID = up.CategoryID
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProduct(ctx, p)
}

func (svc *Service) DeleteProduct(ctx context.Context, id string) error {
	return svc.repo.DeleteProduct(ctx, id)
}

// CreateRequest records a customer inquiry and notifies the admin inbox,
// best-effort.
func (svc *Service) CreateRequest(ctx context.Context, nr NewRequest) (Request, error) {
	p, err := svc.repo.GetProduct(ctx, nr.ProductID)
	if err != nil {
		return Request{}, err
	}
	now := time.Now().UTC()
	req, err := svc.repo.CreateRequest(ctx, Request{
		ID:          uuid.NewString(),
		ProductID:   nr.ProductID,
		FullName:    nr.FullName,
		Email:       nr.Email,
		PhoneNumber: nr.PhoneNumber,
		Message:     nr.Message,
		Status:      RequestStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Request{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: "Admin", Address: core.Conf.AdminEmail}},
		Subject:      fmt.Sprintf("New product request: %s", p.Title),
		TemplateName: "product-request",
		TemplateData: req,
	})
	return req, nil
}

func (svc *Service) QueryRequests(ctx context.Context, status string) ([]Request, error) {
	return svc.repo.QueryAllRequests(ctx, status)
}

func (svc *Service) MarkRequestHandled(ctx context.Context, id string) (Request, error) {
	req, err := svc.repo.GetRequest(ctx, id)
	if err != nil {
		return Request{}, err
	}
	req.Status = RequestStatusHandled
	req.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRequest(ctx, req)
}
