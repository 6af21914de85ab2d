package tests

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/trezcool/mtihani/core/payment"
)

func Test_paymentApi_createOrder(t *testing.T) {
	app := setup(t)
	usr := createStudent(t, "hero@test.cd")
	crs := createCourse(t, "NEET Crash Course", 499900, true)
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/api/pay/create-order",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "courseId and amount required", method: http.MethodPost, path: "/api/pay/create-order",
			token: token, body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// no gateway configured: a demo order comes back
	body := []byte(fmt.Sprintf(`{"courseId": %q, "amount": %d}`, crs.ID, crs.Price))
	req, rec := newAuthRequest(http.MethodPost, "/api/pay/create-order", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create-order failed: %s", rec.Body.String())
	}
	resp := jsonBody(t, rec)
	if resp["keyId"] != payment.DemoKeyID {
		t.Errorf("keyId = %v; want %v", resp["keyId"], payment.DemoKeyID)
	}
	order, _ := resp["order"].(map[string]interface{})
	orderID, _ := order["id"].(string)
	if !strings.HasPrefix(orderID, "demo_order_") {
		t.Errorf("order.id = %q; want demo_order_ prefix", orderID)
	}
	if order["amount"] != float64(crs.Price) {
		t.Errorf("order.amount = %v; want %d", order["amount"], crs.Price)
	}

	// the compatibility alias serves the same handler
	req, rec = newAuthRequest(http.MethodPost, "/api/user/payment/create-order", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("alias create-order: code = %d; want 200", rec.Code)
	}
}

func Test_paymentApi_verify(t *testing.T) {
	app := setup(t)
	usr := createStudent(t, "hero@test.cd")
	crs := createCourse(t, "NEET Crash Course", 499900, true)
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/api/pay/verify",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "payment details required", method: http.MethodPost, path: "/api/pay/verify",
			token: token, body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// no gateway configured: the signature check is skipped
	body := []byte(fmt.Sprintf(
		`{"razorpay_order_id": "demo_order_1", "razorpay_payment_id": "demo_pay_1", "courseId": %q, "amount": %d}`,
		crs.ID, crs.Price))
	req, rec := newAuthRequest(http.MethodPost, "/api/pay/verify", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify failed: %s", rec.Body.String())
	}
	resp := jsonBody(t, rec)
	if resp["message"] != "Payment verified successfully" {
		t.Errorf("message = %v", resp["message"])
	}
	enr, _ := resp["enrollment"].(map[string]interface{})
	if enr["status"] != "active" {
		t.Errorf("enrollment.status = %v; want active", enr["status"])
	}

	// the course now shows under my-courses
	req, rec = newAuthRequest(http.MethodGet, "/api/user/my-courses", token)
	app.ServeHTTP(rec, req)
	courses, _ := jsonBody(t, rec)["courses"].([]interface{})
	if len(courses) != 1 {
		t.Errorf("my-courses = %d; want 1", len(courses))
	}

	// a repeat callback inserts a second enrollment row
	req, rec = newAuthRequest(http.MethodPost, "/api/pay/verify", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat verify failed: %s", rec.Body.String())
	}
	metrics, err := enrSvc.Dashboard(req.Context())
	if err != nil {
		t.Fatalf("Dashboard() failed: %v", err)
	}
	if metrics.TotalEnrollments != 2 {
		t.Errorf("total enrollments = %d; want 2", metrics.TotalEnrollments)
	}
}

func Test_paymentApi_verifyAndUnlock(t *testing.T) {
	app := setup(t)
	usr := createStudent(t, "hero@test.cd")
	crs := createCourse(t, "NEET Crash Course", 499900, true)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/api/user/payment/verify-and-unlock", token, []byte(`{}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing courseId: code = %d; want 400", rec.Code)
	}

	body := []byte(fmt.Sprintf(`{"courseId": %q}`, crs.ID))
	req, rec = newAuthRequest(http.MethodPost, "/api/user/payment/verify-and-unlock", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-and-unlock failed: %s", rec.Body.String())
	}
	resp := jsonBody(t, rec)
	if resp["message"] != "Course unlocked successfully" {
		t.Errorf("message = %v", resp["message"])
	}
}
