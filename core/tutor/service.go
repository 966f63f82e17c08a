package tutor

import (
	"context"
	"errors"
	"time"

	"github.com/wayteam/way-backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("tutor not found")
	ErrEmailExists = errors.New("a tutor with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedTutors ...Tutor) error
		CreateTutor(ctx context.Context, t Tutor) (Tutor, error)
		QueryAllTutors(ctx context.Context) ([]Tutor, error)
		GetTutor(ctx context.Context, filter GetFilter) (Tutor, error)
		UpdateTutor(ctx context.Context, t Tutor) (Tutor, error)
		DeleteTutor(ctx context.Context, id string) error
	}

	// GetFilter selects a single Tutor; exactly one field should be set.
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

func (svc *Service) CheckEmailUniqueness(email string, exclTutors ...Tutor) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclTutors...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTutor) (Tutor, error) {
	now := time.Now().UTC()
	t := Tutor{
		FullName:    nt.FullName,
		Email:       nt.Email,
		PhoneNumber: nt.PhoneNumber,
		Bio:         nt.Bio,
		Avatar:      nt.Avatar,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if nt.Password != "" {
		if err := t.SetPassword(nt.Password); err != nil {
			return Tutor{}, err
		}
	}
	return svc.repo.CreateTutor(ctx, t)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Tutor, error) {
	return svc.repo.QueryAllTutors(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Tutor, error) {
	return svc.repo.GetTutor(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Tutor, error) {
	return svc.repo.GetTutor(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTutor) (Tutor, error) {
	t, err := svc.GetByID(ctx, id)
	if err != nil {
		return Tutor{}, err
	}
	if ut.FullName != "" {
		t.FullName = ut.FullName
	}
	if ut.PhoneNumber != "" {
		t.PhoneNumber = ut.PhoneNumber
	}
	if ut.Bio != "" {
		t.Bio = ut.Bio
	}
	if ut.Avatar != "" {
		t.Avatar = ut.Avatar
	}
	if ut.Active != nil {
		t.Active = *ut.Active
	}
	if ut.Password != "" {
		if err := t.SetPassword(ut.Password); err != nil {
			return Tutor{}, err
		}
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTutor(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteTutor(ctx, id)
}
