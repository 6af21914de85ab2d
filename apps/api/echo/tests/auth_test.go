package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/mtihani/core/user"
)

func Test_authApi_requestOTP(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name: "email required", method: http.MethodPost, path: "/api/auth/email/request",
			body: []byte(`{"email": "  "}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "ok", method: http.MethodPost, path: "/api/auth/email/request",
			body: []byte(`{"email": "hero@test.cd"}`), wantCode: http.StatusOK,
			wantData: []byte(`{"success": true, "message": "OTP sent to email successfully"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// a pending challenge was stored
	if _, err := authRepo.GetChallengeByEmail(context.Background(), "hero@test.cd"); err != nil {
		t.Errorf("GetChallengeByEmail() failed: %v", err)
	}
}

func Test_authApi_verifyOTP(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	req, rec := newRequest(http.MethodPost, "/api/auth/email/request", []byte(`{"email": "hero@test.cd"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("OTP request failed: %s", rec.Body.String())
	}
	ch, err := authRepo.GetChallengeByEmail(ctx, "hero@test.cd")
	if err != nil {
		t.Fatalf("GetChallengeByEmail() failed: %v", err)
	}

	tests := []httpTest{
		{
			name: "email and code required", method: http.MethodPost, path: "/api/auth/email/verify",
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "code must be 6 digits", method: http.MethodPost, path: "/api/auth/email/verify",
			body: []byte(`{"email": "hero@test.cd", "otpCode": "123"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "no pending challenge", method: http.MethodPost, path: "/api/auth/email/verify",
			body: []byte(`{"email": "ghost@test.cd", "otpCode": "123456"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "wrong code", method: http.MethodPost, path: "/api/auth/email/verify",
			body: []byte(`{"email": "hero@test.cd", "otpCode": "000000"}`), wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// success logs in and auto-creates the student
	req, rec = newRequest(http.MethodPost, "/api/auth/email/verify",
		[]byte(`{"email": "hero@test.cd", "otpCode": "`+ch.Code+`"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify failed: %s", rec.Body.String())
	}
	body := jsonBody(t, rec)
	if body["token"] == "" || body["token"] == nil {
		t.Error("token missing from verify response")
	}
	if body["redirectTo"] != "/user-details" {
		t.Errorf("redirectTo = %v; want /user-details", body["redirectTo"])
	}
	usrData, _ := body["user"].(map[string]interface{})
	if usrData["email"] != "hero@test.cd" {
		t.Errorf("user.email = %v; want hero@test.cd", usrData["email"])
	}
	if usrData["name"] != "hero" {
		t.Errorf("user.name = %v; want hero", usrData["name"])
	}
	if usrData["role"] != user.RoleStudent {
		t.Errorf("user.role = %v; want %v", usrData["role"], user.RoleStudent)
	}

	// the code is single use
	req, rec = newRequest(http.MethodPost, "/api/auth/email/verify",
		[]byte(`{"email": "hero@test.cd", "otpCode": "`+ch.Code+`"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code reuse: code = %d; want 400", rec.Code)
	}

	// the issued token works on a protected endpoint
	token, _ := body["token"].(string)
	req, rec = newAuthRequest(http.MethodGet, "/api/user/verify-token", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("verify-token with issued token: code = %d; want 200; body = %s", rec.Code, rec.Body.String())
	}
}
