package catalog

import (
	"time"

	"github.com/wayteam/way-backend/core"
)

// Product request statuses.
const (
	RequestStatusNew     = "new"
	RequestStatusHandled = "handled"
)

type (
	Category struct {
		ID        string    `json:"id" db:"id"`
		Name      string    `json:"name" db:"name"`
		Slug      string    `json:"slug" db:"slug"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	}

	Product struct {
		ID         string    `json:"id" db:"id"`
		Title      string    `json:"title" db:"title"`
		Text       string    `json:"text" db:"text"`
		Slug       string    `json:"slug" db:"slug"`
		Price      float64   `json:"price" db:"price"`
		Images     []string  `json:"images" db:"-"`
		CategoryID string    `json:"category_id" db:"category_id"`
		CreatedAt  time.Time `json:"created_at" db:"created_at"`
		UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	}

	// Request is a customer's inquiry about a product, handled by admins
	// over email rather than a checkout flow.
	Request struct {
		ID          string    `json:"id" db:"id"`
		ProductID   string    `json:"product_id" db:"product_id"`
		FullName    string    `json:"full_name" db:"full_name"`
		Email       string    `json:"email" db:"email"`
		PhoneNumber string    `json:"phone_number" db:"phone_number"`
		Message     string    `json:"message" db:"message"`
		Status      string    `json:"status" db:"status"`
		CreatedAt   time.Time `json:"created_at" db:"created_at"`
		UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	}

	NewCategory struct {
		Name string `json:"name" validate:"required"`
	}

	NewProduct struct {
		Title      string   `json:"title" validate:"required"`
		Text       string   `json:"text" validate:"required"`
		Price      float64  `json:"price" validate:"min=0"`
		Images     []string `json:"images"`
		CategoryID string   `json:"category_id" validate:"required"`
	}

	UpdateProduct struct {
		Title      string   `json:"title"`
		Text       string   `json:"text"`
		Price      *float64 `json:"price" validate:"omitempty,min=0"`
		Images     []string `json:"images"`
		CategoryID string   `json:"category_id"`
	}

	NewRequest struct {
		ProductID   string `json:"product_id" validate:"required"`
		FullName    string `json:"full_name" validate:"required"`
		Email       string `json:"email" validate:"required,email"`
		PhoneNumber string `json:"phone_number" validate:"omitempty,min=6"`
		Message     string `json:"message" validate:"required"`
	}
)

func (nc *NewCategory) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

func (np *NewProduct) Validate() error {
	np.Title = core.CleanString(np.Title)
	np.Text = core.CleanString(np.Text)
	return core.Validate.Struct(np)
}

func (up *UpdateProduct) Validate() error {
	up.Title = core.CleanString(up.Title)
	up.Text = core.CleanString(up.Text)
	return core.Validate.Struct(up)
}

func (nr *NewRequest) Validate() error {
	nr.FullName = core.CleanString(nr.FullName)
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	nr.PhoneNumber = core.CleanString(nr.PhoneNumber)
	nr.Message = core.CleanString(nr.Message)
	return core.Validate.Struct(nr)
}
