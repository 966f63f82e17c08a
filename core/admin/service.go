package admin

import (
	"context"
	"errors"
	"time"

	"github.com/wayteam/way-backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("admin not found")
	ErrEmailExists = errors.New("an admin with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedAdmins ...Admin) error
		CreateAdmin(ctx context.Context, adm Admin) (Admin, error)
		QueryAllAdmins(ctx context.Context) ([]Admin, error)
		GetAdmin(ctx context.Context, filter GetFilter) (Admin, error)
		UpdateAdmin(ctx context.Context, adm Admin) (Admin, error)
		DeleteAdmin(ctx context.Context, id string) error
	}

	// GetFilter selects a single Admin; exactly one field should be set.
	GetFilter struct {
		ID    string
		Email string
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckEmailUniqueness(email string, exclAdmins ...Admin) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclAdmins...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, na NewAdmin) (Admin, error) {
	now := time.Now().UTC()
	adm := Admin{
		FullName:    na.FullName,
		Email:       na.Email,
		PhoneNumber: na.PhoneNumber,
		Role:        na.Role,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, err
	}
	return svc.repo.CreateAdmin(ctx, adm)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Admin, error) {
	return svc.repo.QueryAllAdmins(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Admin, error) {
	return svc.repo.GetAdmin(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	return svc.repo.GetAdmin(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAdmin) (Admin, error) {
	adm, err := svc.GetByID(ctx, id)
	if err != nil {
		return Admin{}, err
	}
	if ua.FullName != "" {
		adm.FullName = ua.FullName
	}
	if ua.PhoneNumber != "" {
		adm.PhoneNumber = ua.PhoneNumber
	}
	if ua.Role != "" {
		adm.Role = ua.Role
	}
	if ua.Active != nil {
		adm.Active = *ua.Active
	}
	if ua.Password != "" {
		if err := adm.SetPassword(ua.Password); err != nil {
			return Admin{}, err
		}
	}
	adm.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAdmin(ctx, adm)
}

func (svc *Service) SetLastLogin(ctx context.Context, adm Admin) (Admin, error) {
	adm.LastLogin = time.Now().UTC()
	return svc.repo.UpdateAdmin(ctx, adm)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAdmin(ctx, id)
}
