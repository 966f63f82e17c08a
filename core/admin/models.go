package admin

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wayteam/way-backend/core"
)

// Roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleReadOnly   = "read_only"
)

var AllRoles = []string{RoleSuperAdmin, RoleAdmin, RoleReadOnly}

type Admin struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`

	PasswordHash []byte `json:"-"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login"` // UTC
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Admin) IsSuperAdmin() bool { return a.Role == RoleSuperAdmin }

// CanWrite reports whether the admin may mutate resources; read_only admins
// can only view dashboards.
func (a *Admin) CanWrite() bool { return a.Role == RoleSuperAdmin || a.Role == RoleAdmin }

// NewAdmin contains information needed to create a new Admin.
type NewAdmin struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number"`
	Role            string `json:"role" validate:"required,oneof=super_admin admin read_only"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAdmin) Validate(svc *Service) error {
	na.FullName = core.CleanString(na.FullName)
	na.Email = core.CleanString(na.Email, true /* lower */)

	if err := core.Validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(na.Email)
}

// UpdateAdmin defines what information may be provided to modify an existing Admin.
type UpdateAdmin struct {
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	Role            string `json:"role" validate:"omitempty,oneof=super_admin admin read_only"`
	Active          *bool  `json:"active"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (ua *UpdateAdmin) Validate() error {
	ua.FullName = core.CleanString(ua.FullName)
	return core.Validate.Struct(ua)
}
