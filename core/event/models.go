package event

import (
	"time"

	"github.com/wayteam/way-backend/core"
)

type (
	// Event is a one-off announcement (workshop, party, open day) published
	// on the site, separate from the recurring class schedules.
	Event struct {
		ID        string    `json:"id" db:"id"`
		Title     string    `json:"title" db:"title"`
		Text      string    `json:"text" db:"text"`
		Slug      string    `json:"slug" db:"slug"`
		Image     string    `json:"image" db:"image"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	}

	NewEvent struct {
		Title string `json:"title" validate:"required,max=200"`
		Text  string `json:"text" validate:"required"`
		Image string `json:"image"`
	}

	UpdateEvent struct {
		Title string `json:"title" validate:"omitempty,max=200"`
		Text  string `json:"text"`
		Image string `json:"image"`
	}

	// InfoRequest is a visitor asking about an event. It is relayed to the
	// admin inbox rather than stored.
	InfoRequest struct {
		EventID     string `json:"event_id" validate:"required"`
		Email       string `json:"email" validate:"required,email"`
		PhoneNumber string `json:"phone_number" validate:"omitempty,min=6"`
		Message     string `json:"message" validate:"required"`
	}
)

func (ne *NewEvent) Validate() error {
	ne.Title = core.CleanString(ne.Title)
	ne.Text = core.CleanString(ne.Text)
	return core.Validate.Struct(ne)
}

func (ue *UpdateEvent) Validate() error {
	ue.Title = core.CleanString(ue.Title)
	ue.Text = core.CleanString(ue.Text)
	return core.Validate.Struct(ue)
}

func (ir *InfoRequest) Validate() error {
	ir.Email = core.CleanString(ir.Email, true /* lower */)
	ir.PhoneNumber = core.CleanString(ir.PhoneNumber)
	ir.Message = core.CleanString(ir.Message)
	return core.Validate.Struct(ir)
}
