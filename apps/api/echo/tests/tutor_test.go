package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/wayteam/way-backend/core/registration"
)

func Test_tutorApi_queryOwnScheduleRegistrations(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "Hero Mbenza", "hero@test.cd", true)
	tut := createTutor(t, "Teka Mbala", "teka@test.cd")
	other := createTutor(t, "Nana Kanza", "nana@test.cd")
	schd := createSchedule(t, "Salsa for Beginners", tut.ID, 5)

	if _, err := regSvc.Create(context.Background(),
		usr.ID, registration.NewRegistration{ScheduleID: schd.ID, SessionID: schd.Sessions[0].ID}); err != nil {
		t.Fatalf("creating registration: %v", err)
	}

	path := "/v1/tutors/me/schedules/" + schd.Slug + "/registrations"

	// anonymous
	req, rec := newRequest(http.MethodGet, path)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusUnauthorized)

	// a tutor without sessions in this schedule
	req, rec = newAuthRequest(http.MethodGet, path, getTutorToken(t, other))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusForbidden)

	// unknown slug
	req, rec = newAuthRequest(http.MethodGet, "/v1/tutors/me/schedules/nope/registrations", getTutorToken(t, tut))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusNotFound)

	// the assigned tutor sees the schedule's registrations
	req, rec = newAuthRequest(http.MethodGet, path, getTutorToken(t, tut))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)

	var regs []registration.Detail
	if err := json.Unmarshal(rec.Body.Bytes(), &regs); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("len(regs) = %d; want 1", len(regs))
	}
	if regs[0].UserEmail != usr.Email {
		t.Errorf("UserEmail = %q; want %q", regs[0].UserEmail, usr.Email)
	}
}
