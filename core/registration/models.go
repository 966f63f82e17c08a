package registration

import (
	"time"

	"github.com/wayteam/way-backend/core"
)

// Registration statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Payment statuses.
const (
	PaymentUnpaid  = "unpaid"
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFree    = "free"
)

// seatTaken reports whether a payment status counts against session capacity.
func seatTaken(paymentStatus string) bool {
	return paymentStatus == PaymentPaid || paymentStatus == PaymentFree
}

type (
	// Registration is a user's booking of one session of a schedule.
	// A (UserID, ScheduleID, SessionID) triple is unique; registrations are
	// never deleted singly, only in bulk when their schedule is force-deleted.
	Registration struct {
		ID         string `json:"id" db:"id"`
		UserID     string `json:"user_id" db:"user_id"`
		ScheduleID string `json:"schedule_id" db:"schedule_id"`
		SessionID  string `json:"session_id" db:"session_id"`

		Status        string `json:"status" db:"status"`
		PaymentStatus string `json:"payment_status" db:"payment_status"`

		Notes           string `json:"notes" db:"notes"`
		RejectionReason string `json:"rejection_reason" db:"rejection_reason"`

		PaymentLink string `json:"payment_link" db:"payment_link"`
		PaymentSent bool   `json:"payment_sent" db:"payment_sent"`

		IsFullClassRequest bool `json:"is_full_class_request" db:"is_full_class_request"`

		CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	// Detail is a Registration joined with the user and schedule rows admins
	// see in listings.
	Detail struct {
		Registration

		UserFullName    string `json:"user_full_name" db:"user_full_name"`
		UserEmail       string `json:"user_email" db:"user_email"`
		UserPhoneNumber string `json:"user_phone_number" db:"user_phone_number"`
		ScheduleTitle   string `json:"schedule_title" db:"schedule_title"`
		ScheduleSlug    string `json:"schedule_slug" db:"schedule_slug"`
	}

	// SessionCapacity is the live occupancy report for one session.
	// Available counts remaining seats against paid-or-free registrations;
	// approved and pending registrations do not hold seats.
	SessionCapacity struct {
		SessionID     string    `json:"session_id"`
		StartDate     time.Time `json:"start_date"`
		Time          string    `json:"time"`
		TutorID       string    `json:"tutor_id"`
		TutorName     string    `json:"tutor_name"`
		TotalCapacity int       `json:"total_capacity"`
		Approved      int       `json:"approved"`
		Pending       int       `json:"pending"`
		Paid          int       `json:"paid"`
		Available     int       `json:"available"`
		IsFull        bool      `json:"is_full"`
	}

	// Counts aggregates a session's registrations. Paid counts both paid and
	// free registrations, the ones holding seats.
	Counts struct {
		Approved int `db:"approved"`
		Pending  int `db:"pending"`
		Paid     int `db:"paid"`
	}

	NewRegistration struct {
		ScheduleID string `json:"schedule_id" validate:"required"`
		SessionID  string `json:"session_id" validate:"required"`
	}

	FullClassRequest struct {
		ScheduleID string `json:"schedule_id" validate:"required"`
		SessionID  string `json:"session_id" validate:"required"`
		Message    string `json:"message"`
	}

	UpdateStatus struct {
		Status string `json:"status" validate:"required,oneof=pending approved rejected"`
		Notes  string `json:"notes"`
	}

	UpdatePayment struct {
		PaymentStatus string `json:"payment_status" validate:"required,oneof=unpaid pending paid free"`
	}

	PaymentLink struct {
		Link string `json:"link" validate:"required,url"`
	}

	CustomMessage struct {
		Subject string `json:"subject"`
		Text    string `json:"text" validate:"required"`
	}

	// QueryFilter narrows admin registration listings.
	QueryFilter struct {
		SessionID string
		Status    string
		Page      int
		PageSize  int
		Ordering  []core.DBOrdering
	}
)

func (nr *NewRegistration) Validate() error {
	return core.Validate.Struct(nr)
}

func (fr *FullClassRequest) Validate() error {
	fr.Message = core.CleanString(fr.Message)
	return core.Validate.Struct(fr)
}

func (us *UpdateStatus) Validate() error {
	us.Notes = core.CleanString(us.Notes)
	return core.Validate.Struct(us)
}

func (up *UpdatePayment) Validate() error {
	return core.Validate.Struct(up)
}

func (pl *PaymentLink) Validate() error {
	pl.Link = core.CleanString(pl.Link)
	return core.Validate.Struct(pl)
}

func (cm *CustomMessage) Validate() error {
	cm.Subject = core.CleanString(cm.Subject)
	cm.Text = core.CleanString(cm.Text)
	return core.Validate.Struct(cm)
}
