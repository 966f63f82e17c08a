package event

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/wayteam/way-backend/core"
)

var (
	ErrNotFound   = core.NewNotFoundError("event_not_found", "event not found")
	ErrSlugExists = core.NewConflictError("event_slug_exists", "an event with a similar title already exists")
)

type (
	Repository interface {
		CheckSlugUniqueness(ctx context.Context, slug string) error
		CreateEvent(ctx context.Context, e Event) (Event, error)
		QueryAllEvents(ctx context.Context) ([]Event, error)
		GetEvent(ctx context.Context, idOrSlug string) (Event, error)
		UpdateEvent(ctx context.Context, e Event) (Event, error)
		DeleteEvent(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) Create(ctx context.Context, ne NewEvent) (Event, error) {
	slug := core.Slugify(ne.Title)
	if err := svc.repo.CheckSlugUniqueness(ctx, slug); err != nil {
		return Event{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateEvent(ctx, Event{
		ID:        uuid.NewString(),
		Title:     ne.Title,
		Text:      ne.Text,
		Slug:      slug,
		Image:     ne.Image,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context) ([]Event, error) {
	return svc.repo.QueryAllEvents(ctx)
}

func (svc *Service) Get(ctx context.Context, idOrSlug string) (Event, error) {
	return svc.repo.GetEvent(ctx, idOrSlug)
}

// Update edits an event in place. The slug stays stable so published links
// keep working after a title fix.
func (svc *Service) Update(ctx context.Context, idOrSlug string, ue UpdateEvent) (Event, error) {
	e, err := svc.repo.GetEvent(ctx, idOrSlug)
	if err != nil {
		return Event{}, err
	}
	if ue.Title != "" {
		e.Title = ue.Title
	}
	if ue.Text != "" {
		e.Text = ue.Text
	}
	if ue.Image != "" {
		e.Image = ue.Image
	}
	e.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, e)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEvent(ctx, id)
}

// RequestInfo relays a visitor's question about an event to the admin inbox
// and acknowledges the visitor, best-effort.
func (svc *Service) RequestInfo(ctx context.Context, ir InfoRequest) error {
	e, err := svc.repo.GetEvent(ctx, ir.EventID)
	if err != nil {
		return err
	}

	data := struct {
		InfoRequest
		EventTitle string
	}{ir, e.Title}

	if err := svc.mailSvc.SendMessage(&core.EmailMessage{
		To:           []mail.Address{{Name: "Admin", Address: core.Conf.AdminEmail}},
		Subject:      fmt.Sprintf("New event request: %s", e.Title),
		TemplateName: "event-request",
		TemplateData: data,
	}); err != nil {
		return core.NewInternalError("notification_failed", err)
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: ir.Email}},
		Subject:      fmt.Sprintf("We received your request about %s", e.Title),
		TemplateName: "event-request-received",
		TemplateData: data,
	})
	return nil
}
