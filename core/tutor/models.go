package tutor

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wayteam/way-backend/core"
)

type Tutor struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"` // stored path/URL

	PasswordHash []byte `json:"-"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (t *Tutor) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Tutor) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

// NewTutor contains information needed to create a new Tutor.
type NewTutor struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
	Password    string `json:"password" validate:"omitempty,min=8"`
}

func (nt *NewTutor) Validate(svc *Service) error {
	nt.FullName = core.CleanString(nt.FullName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nt.Email)
}

// UpdateTutor defines what information may be provided to modify an existing Tutor.
type UpdateTutor struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
	Active      *bool  `json:"active"`
	Password    string `json:"password" validate:"omitempty,min=8"`
}

func (ut *UpdateTutor) Validate() error {
	ut.FullName = core.CleanString(ut.FullName)
	return core.Validate.Struct(ut)
}
