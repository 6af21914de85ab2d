package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/user"
)

const (
	Currency = "INR"

	// DemoKeyID is returned instead of a real key when no gateway is configured.
	DemoKeyID = "demo_key_development"

	demoOrderPrefix = "demo_order_"
	demoTxnPrefix   = "demo_"
)

var (
	errOrderDetailsRequired   = core.NewValidationError(nil, core.FieldError{Field: "courseId", Error: "courseId and amount are required"})
	errPaymentDetailsRequired = core.NewValidationError(nil, core.FieldError{Field: "razorpay_order_id", Error: "missing payment details"})
	errSignatureRequired      = core.NewValidationError(nil, core.FieldError{Field: "razorpay_signature", Error: "missing payment signature"})
	errCourseRequired         = core.NewValidationError(nil, core.FieldError{Field: "courseId", Error: "courseId is required"})

	ErrInvalidSignature = core.NewValidationError(nil, core.FieldError{Field: "razorpay_signature", Error: "invalid payment signature"})
)

type (
	// NewOrder is the checkout request; Amount is in subunits (paise).
	NewOrder struct {
		CourseID string `json:"courseId"`
		Amount   int64  `json:"amount"`
	}

	// OrderInfo is handed back to the frontend to open the checkout widget.
	OrderInfo struct {
		Order Order  `json:"order"`
		KeyID string `json:"keyId"`
	}

	// VerifyPayment carries the gateway callback fields, named as the
	// checkout widget posts them.
	VerifyPayment struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
		CourseID  string `json:"courseId"`
		Amount    int64  `json:"amount"`
	}
)

type Service struct {
	gateway Gateway
	enrSvc  enroll.Service
	conf    *core.Config
}

func NewService(gateway Gateway, enrSvc enroll.Service, conf *core.Config) Service {
	return Service{
		gateway: gateway,
		enrSvc:  enrSvc,
		conf:    conf,
	}
}

// CreateOrder opens a gateway order for a course purchase. Without gateway
// credentials a demo order is fabricated locally so the checkout flow stays
// testable in development.
func (svc Service) CreateOrder(ctx context.Context, usr user.User, no NewOrder) (OrderInfo, error) {
	if no.CourseID == "" || no.Amount <= 0 {
		return OrderInfo{}, errOrderDetailsRequired
	}

	receipt := fmt.Sprintf("receipt_%s_%s_%d", usr.ID, no.CourseID, nowMillis())

	if !svc.conf.Razorpay.Enabled() {
		return OrderInfo{
			Order: Order{
				ID:       fmt.Sprintf("%s%d", demoOrderPrefix, nowMillis()),
				Amount:   no.Amount,
				Currency: Currency,
				Receipt:  receipt,
			},
			KeyID: DemoKeyID,
		}, nil
	}

	order, err := svc.gateway.CreateOrder(ctx, no.Amount, Currency, receipt)
	if err != nil {
		return OrderInfo{}, errors.Wrap(err, "creating gateway order")
	}
	return OrderInfo{Order: order, KeyID: svc.conf.Razorpay.KeyID}, nil
}

// Verify checks the gateway signature and unlocks the course: an enrollment
// and a paid payment record are inserted. Signature verification is skipped
// when no gateway is configured. A repeat purchase inserts new rows.
func (svc Service) Verify(ctx context.Context, usr user.User, vp VerifyPayment) (enroll.Enrollment, error) {
	if vp.OrderID == "" || vp.PaymentID == "" {
		return enroll.Enrollment{}, errPaymentDetailsRequired
	}

	if svc.conf.Razorpay.Enabled() {
		if vp.Signature == "" {
			return enroll.Enrollment{}, errSignatureRequired
		}
		expected := Sign(vp.OrderID, vp.PaymentID, svc.conf.Razorpay.KeySecret)
		if !hmac.Equal([]byte(expected), []byte(vp.Signature)) {
			return enroll.Enrollment{}, ErrInvalidSignature
		}
	}

	enr, err := svc.enrSvc.Enroll(ctx, usr.ID, vp.CourseID)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	if _, err = svc.enrSvc.RecordPayment(ctx, usr.ID, vp.CourseID, vp.Amount, vp.PaymentID); err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "recording payment")
	}
	return enr, nil
}

// UnlockDemo grants course access without charging, recording a zero-amount
// paid payment. Meant for development and manual testing.
func (svc Service) UnlockDemo(ctx context.Context, usr user.User, courseID string) (enroll.Enrollment, error) {
	if courseID == "" {
		return enroll.Enrollment{}, errCourseRequired
	}

	enr, err := svc.enrSvc.Enroll(ctx, usr.ID, courseID)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	txn := fmt.Sprintf("%s%d", demoTxnPrefix, nowMillis())
	if _, err = svc.enrSvc.RecordPayment(ctx, usr.ID, courseID, 0, txn); err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "recording payment")
	}
	return enr, nil
}

// Sign computes the gateway's payment signature: HMAC-SHA256 over
// "<orderID>|<paymentID>", hex encoded.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func nowMillis() int64 { return time.Now().UnixNano() / int64(time.Millisecond) }
