package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mtihani/apps/api/echo"
	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/auth"
	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/payment"
	"github.com/trezcool/mtihani/core/user"
	emailsvc "github.com/trezcool/mtihani/services/email"
	logsvc "github.com/trezcool/mtihani/services/logger"
	dummydb "github.com/trezcool/mtihani/storage/database/dummy"
)

var (
	conf *core.Config

	authRepo auth.Repository
	usrSvc   user.Service
	authSvc  auth.Service
	crsSvc   course.Service
	enrSvc   enroll.Service
	pmtSvc   payment.Service

	errMissingToken = httpErr{Message: "missing or malformed jwt"}
	errForbidden    = httpErr{Message: "permission denied"}
)

func testConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		Debug:     false,
		TestMode:  true,
		AppName:   "Mtihani",
		SecretKey: []byte("secret"),
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
			OTPExpirationDelta: 10 * time.Minute,
		},
		Mail: core.MailConfig{
			SendgridAPIKey:   "testing",
			DefaultFromEmail: mail.Address{Name: "Mtihani", Address: "noreply@test.cd"},
		},
	}
}

func setup(t *testing.T) Server {
	t.Helper()

	conf = testConfig()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	authRepo = dummydb.NewAuthRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ClearSentMessages()
	usrSvc = user.NewService(dummydb.NewUserRepository(db))
	authSvc = auth.NewService(authRepo, usrSvc, mailSvc, conf)
	crsSvc = course.NewService(dummydb.NewCourseRepository(db))
	enrSvc = enroll.NewService(dummydb.NewEnrollRepository(db), crsSvc, usrSvc)
	pmtSvc = payment.NewService(nil, enrSvc, conf)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			AuthSvc:        authSvc,
			CourseSvc:      crsSvc,
			EnrollSvc:      enrSvc,
			PaymentSvc:     pmtSvc,
		},
	)
}

type httpErr struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func createStudent(t *testing.T, email string) user.User {
	usr, err := usrSvc.GetOrCreateByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return usr
}

func createAdmin(t *testing.T, email, pwd string) user.User {
	usr, err := usrSvc.Create(context.Background(), user.NewStaffUser{
		Name:     "Admin",
		Email:    email,
		Password: pwd,
		Role:     user.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("createAdmin() failed: %v", err)
	}
	return usr
}

func createCourse(t *testing.T, name string, price int64, published bool) course.Course {
	crs, err := crsSvc.CreateCourse(context.Background(), course.NewCourse{
		Name:      name,
		Price:     price,
		Published: published,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// jsonBody decodes the recorded response into a generic map for spot checks.
func jsonBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("jsonBody() failed: %v; body = %s", err, rec.Body.String())
	}
	return body
}
