package tests

import (
	"context"
	"net/http"
	"testing"
)

func Test_userApi_verifyToken(t *testing.T) {
	app := setup(t)
	usr := createStudent(t, "hero@test.cd")

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/api/user/verify-token",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "ok", method: http.MethodGet, path: "/api/user/verify-token",
			token: getToken(t, usr), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/user/verify-token", getToken(t, usr))
	app.ServeHTTP(rec, req)
	body := jsonBody(t, rec)
	usrData, _ := body["user"].(map[string]interface{})
	if usrData["id"] != usr.ID {
		t.Errorf("user.id = %v; want %v", usrData["id"], usr.ID)
	}
	if usrData["email"] != usr.Email {
		t.Errorf("user.email = %v; want %v", usrData["email"], usr.Email)
	}
}

func Test_userApi_updateDetails(t *testing.T) {
	app := setup(t)
	usr := createStudent(t, "hero@test.cd")
	token := getToken(t, usr)

	body := []byte(`{"name": "Hero Mukendi", "phoneNumber": "+243999000111", "city": "Kinshasa", "gender": "male"}`)
	req, rec := newAuthRequest(http.MethodPost, "/api/user/update-details", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update-details failed: %s", rec.Body.String())
	}
	resp := jsonBody(t, rec)
	if resp["message"] != "Details updated successfully" {
		t.Errorf("message = %v", resp["message"])
	}
	usrData, _ := resp["user"].(map[string]interface{})
	if usrData["name"] != "Hero Mukendi" {
		t.Errorf("user.name = %v; want Hero Mukendi", usrData["name"])
	}
	if usrData["city"] != "Kinshasa" {
		t.Errorf("user.city = %v; want Kinshasa", usrData["city"])
	}

	// blank fields keep their current values
	req, rec = newAuthRequest(http.MethodPost, "/api/user/update-details", token, []byte(`{"gender": "m"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update-details failed: %s", rec.Body.String())
	}
	fresh, err := usrSvc.GetByID(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if fresh.Name != "Hero Mukendi" {
		t.Errorf("Name = %q; want Hero Mukendi", fresh.Name)
	}
	if fresh.Gender != "m" {
		t.Errorf("Gender = %q; want m", fresh.Gender)
	}

	// invalid email is rejected
	req, rec = newAuthRequest(http.MethodPost, "/api/user/update-details", token, []byte(`{"email": "nope"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid email: code = %d; want 400", rec.Code)
	}
}

func Test_userApi_myCourses(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	usr := createStudent(t, "hero@test.cd")
	crs := createCourse(t, "NEET Crash Course", 499900, true)
	if _, err := enrSvc.Enroll(ctx, usr.ID, crs.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/user/my-courses", getToken(t, usr))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("my-courses failed: %s", rec.Body.String())
	}
	body := jsonBody(t, rec)
	courses, _ := body["courses"].([]interface{})
	if len(courses) != 1 {
		t.Fatalf("courses = %d; want 1", len(courses))
	}

	// a fresh student has none
	other := createStudent(t, "other@test.cd")
	req, rec = newAuthRequest(http.MethodGet, "/api/user/my-courses", getToken(t, other))
	app.ServeHTTP(rec, req)
	body = jsonBody(t, rec)
	if courses, _ := body["courses"].([]interface{}); len(courses) != 0 {
		t.Errorf("courses = %d; want 0", len(courses))
	}
}

func Test_userApi_courseProgress(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	usr := createStudent(t, "hero@test.cd")
	crs := createCourse(t, "NEET Crash Course", 499900, true)
	token := getToken(t, usr)

	// not enrolled yet
	req, rec := newAuthRequest(http.MethodGet, "/api/progress/course/"+crs.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("not enrolled: code = %d; want 404", rec.Code)
	}

	if _, err := enrSvc.Enroll(ctx, usr.ID, crs.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	req, rec = newAuthRequest(http.MethodGet, "/api/progress/course/"+crs.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress failed: %s", rec.Body.String())
	}
	body := jsonBody(t, rec)
	progress, _ := body["progress"].(map[string]interface{})
	if progress["course_id"] != crs.ID {
		t.Errorf("progress.course_id = %v; want %v", progress["course_id"], crs.ID)
	}
	if progress["status"] != "active" {
		t.Errorf("progress.status = %v; want active", progress["status"])
	}
}
