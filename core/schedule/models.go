package schedule

import (
	"time"

	"github.com/wayteam/way-backend/core"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type (
	// Session is a bookable occurrence of a Schedule. Its ID is stable for the
	// lifetime of the schedule and is what registrations reference.
	Session struct {
		ID        string    `json:"id" db:"id"`
		StartDate time.Time `json:"start_date" db:"start_date"`
		EndDate   time.Time `json:"end_date" db:"end_date"`
		Time      string    `json:"time" db:"time_of_day"` // "HH:mm"
		Period    string    `json:"period" db:"period"`    // e.g. "2hours"
		Capacity  int       `json:"capacity" db:"capacity"`
		TutorID   string    `json:"tutor_id" db:"tutor_id"`
	}

	Schedule struct {
		ID        string    `json:"id" db:"id"`
		Title     string    `json:"title" db:"title"`
		Text      string    `json:"text" db:"text"`
		Slug      string    `json:"slug" db:"slug"`
		Price     float64   `json:"price" db:"price"`
		Status    string    `json:"status" db:"status"`
		Images    []string  `json:"images" db:"-"`
		Sessions  []Session `json:"sessions" db:"-"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	}

	NewSession struct {
		StartDate time.Time `json:"start_date" validate:"required"`
		EndDate   time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
		Time      string    `json:"time" validate:"required,timeofday"`
		Period    string    `json:"period" validate:"required"`
		Capacity  int       `json:"capacity" validate:"required,min=1"`
		TutorID   string    `json:"tutor_id" validate:"required"`
	}

	NewSchedule struct {
		Title    string       `json:"title" validate:"required"`
		Text     string       `json:"text" validate:"required"`
		Price    float64      `json:"price" validate:"min=0"`
		Status   string       `json:"status" validate:"omitempty,oneof=draft published"`
		Images   []string     `json:"images"`
		Sessions []NewSession `json:"sessions" validate:"required,min=1,dive"`
	}

	// UpdateSession carries an optional ID; sessions with an ID survive the
	// update keeping their registrations attached, ID-less ones are created.
	UpdateSession struct {
		ID        string    `json:"id"`
		StartDate time.Time `json:"start_date" validate:"required"`
		EndDate   time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
		Time      string    `json:"time" validate:"required,timeofday"`
		Period    string    `json:"period" validate:"required"`
		Capacity  int       `json:"capacity" validate:"required,min=1"`
		TutorID   string    `json:"tutor_id" validate:"required"`
	}

	UpdateSchedule struct {
		Title    string          `json:"title"`
		Text     string          `json:"text"`
		Price    *float64        `json:"price" validate:"omitempty,min=0"`
		Status   string          `json:"status" validate:"omitempty,oneof=draft published"`
		Images   []string        `json:"images"`
		Sessions []UpdateSession `json:"sessions" validate:"omitempty,min=1,dive"`
	}
)

func (ns *NewSchedule) Validate() error {
	ns.Title = core.CleanString(ns.Title)
	ns.Text = core.CleanString(ns.Text)
	if ns.Status == "" {
		ns.Status = StatusDraft
	}
	return core.Validate.Struct(ns)
}

func (us *UpdateSchedule) Validate() error {
	us.Title = core.CleanString(us.Title)
	us.Text = core.CleanString(us.Text)
	return core.Validate.Struct(us)
}

// Session returns the embedded session with the given id.
func (s Schedule) Session(id string) (Session, bool) {
	for _, sess := range s.Sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return Session{}, false
}

func (s Schedule) IsPublished() bool { return s.Status == StatusPublished }
