package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wayteam/way-backend/core"
)

type User struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Verified    bool   `json:"verified"`

	PasswordHash []byte `json:"-"`

	// email verification & password reset codes (HMAC hashes, never exposed)
	VerificationCodeHash   []byte    `json:"-"`
	VerificationCodeExpiry time.Time `json:"-"`
	ResetCodeHash          []byte    `json:"-"`
	ResetCodeExpiry        time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,min=6"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.PhoneNumber = core.CleanString(nu.PhoneNumber)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// UpdateProfile defines what information a User may change on their own account.
type UpdateProfile struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=6"`
}

func (up *UpdateProfile) Validate() error {
	up.FullName = core.CleanString(up.FullName)
	up.PhoneNumber = core.CleanString(up.PhoneNumber)
	return core.Validate.Struct(up)
}

// VerifyEmail carries an emailed verification code back to the server.
type VerifyEmail struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (ve *VerifyEmail) Validate() error {
	ve.Email = core.CleanString(ve.Email, true /* lower */)
	return core.Validate.Struct(ve)
}

// VerifyResetCode carries an emailed password reset code back to the server.
type VerifyResetCode struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (vr *VerifyResetCode) Validate() error {
	vr.Email = core.CleanString(vr.Email, true /* lower */)
	return core.Validate.Struct(vr)
}

// SetNewPassword resets a forgotten password using an emailed reset code.
type SetNewPassword struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required,len=6,numeric"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (sp *SetNewPassword) Validate() error {
	sp.Email = core.CleanString(sp.Email, true /* lower */)
	return core.Validate.Struct(sp)
}

// GetFilter selects a single User; exactly one field should be set.
type GetFilter struct {
	ID    string
	Email string
}
