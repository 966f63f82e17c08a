// Package contact relays the public contact form to the admin inbox.
package contact

import (
	"fmt"
	"net/mail"

	"github.com/wayteam/way-backend/core"
)

type (
	Message struct {
		FirstName string `json:"first_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Message   string `json:"message" validate:"required"`
	}

	Service struct {
		mailSvc core.EmailService
	}
)

func (m *Message) Validate() error {
	m.FirstName = core.CleanString(m.FirstName)
	m.Email = core.CleanString(m.Email, true /* lower */)
	m.Message = core.CleanString(m.Message)
	return core.Validate.Struct(m)
}

func NewService(mailSvc core.EmailService) *Service {
	return &Service{mailSvc: mailSvc}
}

// Send delivers the message to the admin inbox and acknowledges the sender,
// best-effort.
func (svc *Service) Send(m Message) error {
	if err := svc.mailSvc.SendMessage(&core.EmailMessage{
		To:           []mail.Address{{Name: "Admin", Address: core.Conf.AdminEmail}},
		Subject:      fmt.Sprintf("New contact message from %s", m.FirstName),
		TemplateName: "contact-message",
		TemplateData: m,
	}); err != nil {
		return core.NewInternalError("notification_failed", err)
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: m.FirstName, Address: m.Email}},
		Subject:      "We received your message",
		TemplateName: "contact-received",
		TemplateData: m,
	})
	return nil
}
