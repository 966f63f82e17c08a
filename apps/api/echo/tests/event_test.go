package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/wayteam/way-backend/apps/api/echo"
	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/admin"
	"github.com/wayteam/way-backend/core/event"
	emailsvc "github.com/wayteam/way-backend/services/email"
)

func Test_eventApi_create(t *testing.T) {
	resetDB(t)

	readOnly := createAdmin(t, "Watcher", "watch@test.cd", admin.RoleReadOnly)
	super := createAdmin(t, "Boss", "boss@test.cd", admin.RoleSuperAdmin)
	superToken := getAdminToken(t, super)

	body := marshallObj(t, event.NewEvent{Title: "Open Day", Text: "Come see the studio."})

	tests := []httpTest{
		{name: "missing token", wantCode: http.StatusUnauthorized, body: body, wantData: marshallObj(t, errMissingToken)},
		{name: "read-only admin", token: getAdminToken(t, readOnly), wantCode: http.StatusForbidden,
			body: body, wantData: marshallObj(t, errForbidden)},
		{
			name: "missing fields", token: superToken, wantCode: http.StatusBadRequest,
			body: marshallObj(t, event.NewEvent{}),
			wantData: marshallObj(t, map[string]map[string]string{"errors": {
				"title": "this field is required",
				"text":  "this field is required",
			}}),
		},
		{name: "ok", token: superToken, wantCode: http.StatusCreated, body: body},
		{
			name: "duplicate title", token: superToken, wantCode: http.StatusConflict,
			body:     body,
			wantData: marshallObj(t, httpErr{Error: "an event with a similar title already exists", Reason: "event_slug_exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/events", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.name == "ok" {
				checkCode(t, rec, tt.wantCode)
				var ev event.Event
				if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if ev.Slug != "open-day" {
					t.Errorf("Slug = %q; want %q", ev.Slug, "open-day")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_eventApi_publicListing(t *testing.T) {
	resetDB(t)

	super := createAdmin(t, "Boss", "boss@test.cd", admin.RoleSuperAdmin)
	superToken := getAdminToken(t, super)

	req, rec := newAuthRequest(http.MethodPost, "/v1/events", superToken,
		marshallObj(t, event.NewEvent{Title: "Open Day", Text: "Come see the studio."}))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusCreated)

	// anonymous listing
	req, rec = newRequest(http.MethodGet, "/v1/events")
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)
	var events []event.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d; want 1", len(events))
	}

	// retrieval by slug, then by ID
	for _, idOrSlug := range []string{events[0].Slug, events[0].ID} {
		req, rec = newRequest(http.MethodGet, "/v1/events/"+idOrSlug)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)
	}

	req, rec = newRequest(http.MethodGet, "/v1/events/nope")
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusNotFound)
	checkBody(t, rec, marshallObj(t, httpErr{Error: "event not found", Reason: "event_not_found"}))
}

func Test_eventApi_updateAndDestroy(t *testing.T) {
	resetDB(t)

	super := createAdmin(t, "Boss", "boss@test.cd", admin.RoleSuperAdmin)
	superToken := getAdminToken(t, super)

	req, rec := newAuthRequest(http.MethodPost, "/v1/events", superToken,
		marshallObj(t, event.NewEvent{Title: "Open Day", Text: "Come see the studio."}))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusCreated)
	var ev event.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	// the slug survives a title fix
	req, rec = newAuthRequest(http.MethodPut, "/v1/events/"+ev.Slug, superToken,
		marshallObj(t, event.UpdateEvent{Title: "Open Day 2026", Image: "open-day.jpg"}))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if ev.Title != "Open Day 2026" || ev.Slug != "open-day" || ev.Image != "open-day.jpg" {
		t.Errorf("updated event = %+v", ev)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/events/"+ev.ID, superToken)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusNoContent)

	req, rec = newRequest(http.MethodGet, "/v1/events/"+ev.Slug)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusNotFound)
}

func Test_eventApi_requestInfo(t *testing.T) {
	resetDB(t)
	emailsvc.ClearSentMessages()

	super := createAdmin(t, "Boss", "boss@test.cd", admin.RoleSuperAdmin)
	superToken := getAdminToken(t, super)

	req, rec := newAuthRequest(http.MethodPost, "/v1/events", superToken,
		marshallObj(t, event.NewEvent{Title: "Open Day", Text: "Come see the studio."}))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusCreated)
	var ev event.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	tests := []httpTest{
		{
			name: "missing fields", wantCode: http.StatusBadRequest,
			body: marshallObj(t, event.InfoRequest{}),
			wantData: marshallObj(t, map[string]map[string]string{"errors": {
				"event_id": "this field is required",
				"email":    "this field is required",
				"message":  "this field is required",
			}}),
		},
		{
			name: "unknown event", wantCode: http.StatusNotFound,
			body:     marshallObj(t, event.InfoRequest{EventID: "nope", Email: "hero@test.cd", Message: "When is it?"}),
			wantData: marshallObj(t, httpErr{Error: "event not found", Reason: "event_not_found"}),
		},
		{
			name: "ok", wantCode: http.StatusOK,
			body:     marshallObj(t, event.InfoRequest{EventID: ev.ID, Email: "hero@test.cd", Message: "When is it?"}),
			wantData: marshallObj(t, echoapi.SuccessResponse{Success: "Request sent."}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/events/requests", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "ok" {
				var adminNotified, requesterNotified bool
				for _, msg := range emailsvc.SentMessages {
					switch msg.TemplateName {
					case "event-request":
						adminNotified = msg.To[0].Address == core.Conf.AdminEmail
					case "event-request-received":
						requesterNotified = msg.To[0].Address == "hero@test.cd"
					}
				}
				if !adminNotified || !requesterNotified {
					t.Errorf("admin notified = %v, requester notified = %v; want both", adminNotified, requesterNotified)
				}
			}
		})
	}
}
