package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/wayteam/way-backend/apps/api/echo"
	"github.com/wayteam/way-backend/core/admin"
	"github.com/wayteam/way-backend/core/user"
	emailsvc "github.com/wayteam/way-backend/services/email"
)

func Test_userApi_register(t *testing.T) {
	resetDB(t)
	emailsvc.ClearSentMessages()

	existing := createUser(t, "Awe Mbenza", "awe@test.cd", true)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"full_name":        "this field is required",
				"email":            "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body: marshallObj(t, user.NewUser{
				FullName: "King Kaka", Email: "lol", Password: "V3ryS3cret!", PasswordConfirm: "V3ryS3cret!",
			}),
			wantData: marshallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "password mismatch", wantCode: http.StatusBadRequest,
			body: marshallObj(t, user.NewUser{
				FullName: "King Kaka", Email: "king@test.cd", Password: "V3ryS3cret!", PasswordConfirm: "nope",
			}),
			wantData: marshallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "email taken", wantCode: http.StatusBadRequest,
			body: marshallObj(t, user.NewUser{
				FullName: "Imposter", Email: existing.Email, Password: "V3ryS3cret!", PasswordConfirm: "V3ryS3cret!",
			}),
			wantData: marshallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "registered", wantCode: http.StatusCreated,
			body: marshallObj(t, user.NewUser{
				FullName: "King Kaka", Email: "king@test.cd", Password: "V3ryS3cret!", PasswordConfirm: "V3ryS3cret!",
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				checkCode(t, rec, tt.wantCode)

				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if usr.ID == "" {
					t.Error("failed! empty user ID")
				}
				if usr.Verified {
					t.Error("failed! new user is already verified")
				}
				// a verification code went out
				if len(emailsvc.SentMessages) == 0 {
					t.Error("failed! no verification email sent")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "Hero Mbenza", "hero@test.cd", true)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marshallObj(t, echoapi.LoginRequest{Email: "lol@test.cd", Password: "V3ryS3cret!"}),
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marshallObj(t, echoapi.LoginRequest{Email: usr.Email, Password: "nope nope"}),
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "logged in", wantCode: http.StatusOK,
			body: marshallObj(t, echoapi.LoginRequest{Email: usr.Email, Password: "V3ryS3cret!"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				checkCode(t, rec, tt.wantCode)

				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_verifyEmail(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "Hero Mbenza", "hero@test.cd", false)
	usr.VerificationCodeHash = user.HashCode("123456")
	usr.VerificationCodeExpiry = time.Now().UTC().Add(30 * time.Minute)
	if _, err := usrRepo.UpdateUser(context.Background(), usr); err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}

	stale := createUser(t, "Slow Poke", "slow@test.cd", false)
	stale.VerificationCodeHash = user.HashCode("654321")
	stale.VerificationCodeExpiry = time.Now().UTC().Add(-time.Minute)
	if _, err := usrRepo.UpdateUser(context.Background(), stale); err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}

	invalid := marshallObj(t, httpErr{Error: "invalid email or code"})

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"email": "this field is required",
				"code":  "this field is required",
			}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marshallObj(t, user.VerifyEmail{Email: "lol@test.cd", Code: "123456"}),
			wantData: invalid,
		},
		{
			name: "wrong code", wantCode: http.StatusBadRequest,
			body:     marshallObj(t, user.VerifyEmail{Email: usr.Email, Code: "999999"}),
			wantData: invalid,
		},
		{
			name: "expired code", wantCode: http.StatusBadRequest,
			body:     marshallObj(t, user.VerifyEmail{Email: stale.Email, Code: "654321"}),
			wantData: invalid,
		},
		{
			name: "verified", wantCode: http.StatusOK,
			body: marshallObj(t, user.VerifyEmail{Email: usr.Email, Code: "123456"}),
		},
		{
			name: "already verified", wantCode: http.StatusBadRequest,
			body:     marshallObj(t, user.VerifyEmail{Email: usr.Email, Code: "123456"}),
			wantData: invalid,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/verify-email"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK && tt.wantData == nil {
				checkCode(t, rec, tt.wantCode)

				var respData user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if !respData.Verified {
					t.Error("failed! user not verified")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	resetDB(t)
	emailsvc.ClearSentMessages()

	usr := createUser(t, "Hero Mbenza", "hero@test.cd", true)
	successData := marshallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	type extraTest struct {
		emailSent bool
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marshallObj(t, echoapi.EmailRequest{Email: "lol"}),
			wantData: marshallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK,
			body:     marshallObj(t, echoapi.EmailRequest{Email: "lol@test.cd"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK,
			body:     marshallObj(t, echoapi.EmailRequest{Email: usr.Email}),
			wantData: successData, extra: extraTest{emailSent: true},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			sentBefore := len(emailsvc.SentMessages)

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				sent := len(emailsvc.SentMessages) > sentBefore
				if sent != extra.emailSent {
					t.Errorf("failed! emailSent = %v; want %v", sent, extra.emailSent)
				}
			}
		})
	}
}

func Test_userApi_passwordResetConfirm(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "Hero Mbenza", "hero@test.cd", true)
	usr.ResetCodeHash = user.HashCode("123456")
	usr.ResetCodeExpiry = time.Now().UTC().Add(30 * time.Minute)
	if _, err := usrRepo.UpdateUser(context.Background(), usr); err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}

	tests := []httpTest{
		{
			name: "wrong code", method: http.MethodPost, path: "/v1/users/password-reset-verify",
			body:     marshallObj(t, user.VerifyResetCode{Email: usr.Email, Code: "999999"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid email or code"}),
		},
		{
			name: "code valid", method: http.MethodPost, path: "/v1/users/password-reset-verify",
			body:     marshallObj(t, user.VerifyResetCode{Email: usr.Email, Code: "123456"}),
			wantCode: http.StatusOK, wantData: marshallObj(t, echoapi.SuccessResponse{Success: "Code is valid."}),
		},
		{
			name: "password reset", method: http.MethodPost, path: "/v1/users/password-reset-confirm",
			body: marshallObj(t, user.SetNewPassword{
				Email: usr.Email, Code: "123456", Password: "N3wS3cret!!", PasswordConfirm: "N3wS3cret!!",
			}),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
		{
			name: "code consumed", method: http.MethodPost, path: "/v1/users/password-reset-confirm",
			body: marshallObj(t, user.SetNewPassword{
				Email: usr.Email, Code: "123456", Password: "N3wS3cret!!", PasswordConfirm: "N3wS3cret!!",
			}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid email or code"}),
		},
		{
			name: "login with new password", method: http.MethodPost, path: "/v1/users/login",
			body:     marshallObj(t, echoapi.LoginRequest{Email: usr.Email, Password: "N3wS3cret!!"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				checkCode(t, rec, tt.wantCode)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieveSelf(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "Hero Mbenza", "hero@test.cd", true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "own profile", token: getUserToken(t, usr), wantCode: http.StatusOK, wantData: marshallObj(t, usr)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_updateSelf(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "Hero Mbenza", "hero@test.cd", true)
	token := getUserToken(t, usr)

	req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token,
		marshallObj(t, user.UpdateProfile{FullName: "Hero M. Mbenza", PhoneNumber: "+243811234567"}))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)

	var respData user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if respData.FullName != "Hero M. Mbenza" {
		t.Errorf("FullName = %q; want %q", respData.FullName, "Hero M. Mbenza")
	}
	if respData.PhoneNumber != "+243811234567" {
		t.Errorf("PhoneNumber = %q; want %q", respData.PhoneNumber, "+243811234567")
	}
}

func Test_userApi_userQuery(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "Hero Mbenza", "hero@test.cd", true)
	readOnly := createAdmin(t, "Watcher", "watch@test.cd", admin.RoleReadOnly)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "admin required", token: getUserToken(t, usr), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)},
		{name: "read-only admin allowed", token: getAdminToken(t, readOnly), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				checkCode(t, rec, tt.wantCode)

				var respData []user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if len(respData) != 1 {
					t.Errorf("len(users) = %d; want 1", len(respData))
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_destroyMultiple(t *testing.T) {
	resetDB(t)

	usr1 := createUser(t, "Bye One", "bye1@test.cd", true)
	usr2 := createUser(t, "Bye Two", "bye2@test.cd", true)
	survivor := createUser(t, "Keeper", "keep@test.cd", true)
	readOnly := createAdmin(t, "Watcher", "watch@test.cd", admin.RoleReadOnly)
	super := createAdmin(t, "Boss", "boss@test.cd", admin.RoleSuperAdmin)

	path := "/v1/users?id=" + usr1.ID + "&id=" + usr2.ID

	tests := []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "write admin required", path: path, token: getAdminToken(t, readOnly), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)},
		{name: "deleted", path: path, token: getAdminToken(t, super), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				checkCode(t, rec, tt.wantCode)

				left, err := usrRepo.QueryAllUsers(context.Background())
				if err != nil {
					t.Fatalf("QueryAllUsers(): %v", err)
				}
				if len(left) != 1 || left[0].ID != survivor.ID {
					t.Errorf("remaining users = %v; want only %v", left, survivor.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
