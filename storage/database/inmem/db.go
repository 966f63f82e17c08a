// Package inmemdb provides map-backed repositories for tests.
package inmemdb

import (
	"sync"

	"github.com/wayteam/way-backend/core/admin"
	"github.com/wayteam/way-backend/core/catalog"
	"github.com/wayteam/way-backend/core/event"
	"github.com/wayteam/way-backend/core/page"
	"github.com/wayteam/way-backend/core/registration"
	"github.com/wayteam/way-backend/core/schedule"
	"github.com/wayteam/way-backend/core/tutor"
	"github.com/wayteam/way-backend/core/user"
)

type DB struct {
	mutex         sync.RWMutex
	users         map[string]*user.User
	admins        map[string]*admin.Admin
	tutors        map[string]*tutor.Tutor
	schedules     map[string]*schedule.Schedule
	registrations map[string]*registration.Registration
	pages         map[string]*page.Page
	categories    map[string]*catalog.Category
	products      map[string]*catalog.Product
	requests      map[string]*catalog.Request
	events        map[string]*event.Event

	// legacyUserScheduleIndex simulates a deployment still carrying the old
	// (user, schedule) unique index.
	legacyUserScheduleIndex bool
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		admins:        make(map[string]*admin.Admin),
		tutors:        make(map[string]*tutor.Tutor),
		schedules:     make(map[string]*schedule.Schedule),
		registrations: make(map[string]*registration.Registration),
		pages:         make(map[string]*page.Page),
		categories:    make(map[string]*catalog.Category),
		products:      make(map[string]*catalog.Product),
		requests:      make(map[string]*catalog.Request),
		events:        make(map[string]*event.Event),
	}
}

// Reset drops all stored rows; test harnesses call it between test cases.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[string]*user.User)
	db.admins = make(map[string]*admin.Admin)
	db.tutors = make(map[string]*tutor.Tutor)
	db.schedules = make(map[string]*schedule.Schedule)
	db.registrations = make(map[string]*registration.Registration)
	db.pages = make(map[string]*page.Page)
	db.categories = make(map[string]*catalog.Category)
	db.products = make(map[string]*catalog.Product)
	db.requests = make(map[string]*catalog.Request)
	db.events = make(map[string]*event.Event)
	db.legacyUserScheduleIndex = false
}

// SimulateLegacyIndex turns on the obsolete (user, schedule) unique index
// until it is dropped via DropLegacyUserScheduleIndex.
func (db *DB) SimulateLegacyIndex() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.legacyUserScheduleIndex = true
}
