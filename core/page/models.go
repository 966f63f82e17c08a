package page

import (
	"time"

	"github.com/wayteam/way-backend/core"
)

// Known page names. Each is a singleton document edited by admins and served
// to the public site.
const (
	NameHome       = "home"
	NameAboutUs    = "about_us"
	NameHost       = "host"
	NameProduction = "production"
	NameBookWithUs = "book_with_us"
)

var knownNames = map[string]bool{
	NameHome:       true,
	NameAboutUs:    true,
	NameHost:       true,
	NameProduction: true,
	NameBookWithUs: true,
}

func IsKnownName(name string) bool { return knownNames[name] }

type (
	Page struct {
		Name      string    `json:"name" db:"name"`
		Title     string    `json:"title" db:"title"`
		Text      string    `json:"text" db:"text"`
		Images    []string  `json:"images" db:"-"`
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	UpdatePage struct {
		Title  string   `json:"title"`
		Text   string   `json:"text"`
		Images []string `json:"images"`
	}
)

func (up *UpdatePage) Validate() error {
	up.Title = core.CleanString(up.Title)
	up.Text = core.CleanString(up.Text)
	return core.Validate.Struct(up)
}
