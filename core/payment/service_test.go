package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/user"
	dummydb "github.com/trezcool/mtihani/storage/database/dummy"
)

type stubGateway struct {
	order Order
	err   error
}

func (g stubGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error) {
	if g.err != nil {
		return Order{}, g.err
	}
	o := g.order
	o.Amount = amount
	o.Currency = currency
	o.Receipt = receipt
	return o, nil
}

func setup(t *testing.T, conf *core.Config, gateway Gateway) (Service, enroll.Service, user.User, course.Course) {
	t.Helper()
	ctx := context.Background()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrSvc := user.NewService(dummydb.NewUserRepository(db))
	crsSvc := course.NewService(dummydb.NewCourseRepository(db))
	enrSvc := enroll.NewService(dummydb.NewEnrollRepository(db), crsSvc, usrSvc)

	usr, err := usrSvc.GetOrCreateByEmail(ctx, "hero@test.cd")
	if err != nil {
		t.Fatalf("GetOrCreateByEmail() failed: %v", err)
	}
	crs, err := crsSvc.CreateCourse(ctx, course.NewCourse{
		Name:      "NEET Crash Course",
		Price:     499900,
		Published: true,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return NewService(gateway, enrSvc, conf), enrSvc, usr, crs
}

func demoConfig() *core.Config {
	return &core.Config{TestMode: true, SecretKey: []byte("secret")}
}

func liveConfig() *core.Config {
	conf := demoConfig()
	conf.Razorpay = core.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "rzp_test_secret"}
	return conf
}

func TestService_CreateOrder_demo(t *testing.T) {
	ctx := context.Background()
	svc, _, usr, crs := setup(t, demoConfig(), nil)

	if _, err := svc.CreateOrder(ctx, usr, NewOrder{}); err == nil {
		t.Error("CreateOrder() expected an error for missing details")
	}

	info, err := svc.CreateOrder(ctx, usr, NewOrder{CourseID: crs.ID, Amount: crs.Price})
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}
	if !strings.HasPrefix(info.Order.ID, "demo_order_") {
		t.Errorf("order ID = %q; want demo_order_ prefix", info.Order.ID)
	}
	if info.KeyID != DemoKeyID {
		t.Errorf("KeyID = %q; want %q", info.KeyID, DemoKeyID)
	}
	if info.Order.Amount != crs.Price {
		t.Errorf("Amount = %d; want %d", info.Order.Amount, crs.Price)
	}
	if info.Order.Currency != Currency {
		t.Errorf("Currency = %q; want %q", info.Order.Currency, Currency)
	}
	wantReceipt := "receipt_" + usr.ID + "_" + crs.ID + "_"
	if !strings.HasPrefix(info.Order.Receipt, wantReceipt) {
		t.Errorf("Receipt = %q; want %q prefix", info.Order.Receipt, wantReceipt)
	}
}

func TestService_CreateOrder_gateway(t *testing.T) {
	ctx := context.Background()
	conf := liveConfig()
	gateway := stubGateway{order: Order{ID: "order_ABC123"}}
	svc, _, usr, crs := setup(t, conf, gateway)

	info, err := svc.CreateOrder(ctx, usr, NewOrder{CourseID: crs.ID, Amount: crs.Price})
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}
	if info.Order.ID != "order_ABC123" {
		t.Errorf("order ID = %q; want order_ABC123", info.Order.ID)
	}
	if info.KeyID != conf.Razorpay.KeyID {
		t.Errorf("KeyID = %q; want %q", info.KeyID, conf.Razorpay.KeyID)
	}

	gwErr := errors.New("gateway down")
	svc, _, _, _ = setup(t, conf, stubGateway{err: gwErr})
	if _, err = svc.CreateOrder(ctx, usr, NewOrder{CourseID: crs.ID, Amount: crs.Price}); errors.Cause(err) != gwErr {
		t.Errorf("CreateOrder() error = %v; want %v", err, gwErr)
	}
}

func TestService_Verify(t *testing.T) {
	ctx := context.Background()
	conf := liveConfig()
	svc, enrSvc, usr, crs := setup(t, conf, nil)

	vp := VerifyPayment{
		OrderID:   "order_ABC123",
		PaymentID: "pay_XYZ789",
		CourseID:  crs.ID,
		Amount:    crs.Price,
	}

	if _, err := svc.Verify(ctx, usr, VerifyPayment{}); err == nil {
		t.Error("Verify() expected an error for missing payment details")
	}
	if _, err := svc.Verify(ctx, usr, vp); err == nil {
		t.Error("Verify() expected an error for a missing signature")
	}

	bad := vp
	bad.Signature = "deadbeef"
	if _, err := svc.Verify(ctx, usr, bad); errors.Cause(err) != ErrInvalidSignature {
		t.Errorf("Verify() error = %v; want ErrInvalidSignature", err)
	}

	vp.Signature = Sign(vp.OrderID, vp.PaymentID, conf.Razorpay.KeySecret)
	enr, err := svc.Verify(ctx, usr, vp)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if enr.Status != enroll.StatusActive {
		t.Errorf("Status = %q; want %q", enr.Status, enroll.StatusActive)
	}

	payments, total, err := enrSvc.FilterPayments(ctx, enroll.PaymentQueryFilter{StudentID: usr.ID}, core.Paging{})
	if err != nil {
		t.Fatalf("FilterPayments() failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("total payments = %d; want 1", total)
	}
	if payments[0].TransactionID != vp.PaymentID {
		t.Errorf("TransactionID = %q; want %q", payments[0].TransactionID, vp.PaymentID)
	}
	if payments[0].Status != enroll.PaymentPaid {
		t.Errorf("payment Status = %q; want %q", payments[0].Status, enroll.PaymentPaid)
	}

	// a repeat purchase inserts new rows rather than erroring
	enr2, err := svc.Verify(ctx, usr, vp)
	if err != nil {
		t.Fatalf("Verify() failed on repeat: %v", err)
	}
	if enr2.ID == enr.ID {
		t.Errorf("repeat Verify() returned the same enrollment %q; want a fresh row", enr2.ID)
	}
	if _, total, err = enrSvc.FilterPayments(ctx, enroll.PaymentQueryFilter{StudentID: usr.ID}, core.Paging{}); err != nil {
		t.Fatalf("FilterPayments() failed: %v", err)
	} else if total != 2 {
		t.Errorf("total payments = %d; want 2", total)
	}
	metrics, err := enrSvc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() failed: %v", err)
	}
	if metrics.TotalEnrollments != 2 {
		t.Errorf("total enrollments = %d; want 2", metrics.TotalEnrollments)
	}
}

func TestService_Verify_demoSkipsSignature(t *testing.T) {
	ctx := context.Background()
	svc, _, usr, crs := setup(t, demoConfig(), nil)

	vp := VerifyPayment{
		OrderID:   "demo_order_1",
		PaymentID: "demo_pay_1",
		CourseID:  crs.ID,
		Amount:    crs.Price,
	}
	if _, err := svc.Verify(ctx, usr, vp); err != nil {
		t.Errorf("Verify() failed without a gateway configured: %v", err)
	}
}

func TestService_UnlockDemo(t *testing.T) {
	ctx := context.Background()
	svc, enrSvc, usr, crs := setup(t, demoConfig(), nil)

	if _, err := svc.UnlockDemo(ctx, usr, ""); err == nil {
		t.Error("UnlockDemo() expected an error for a missing courseId")
	}

	enr, err := svc.UnlockDemo(ctx, usr, crs.ID)
	if err != nil {
		t.Fatalf("UnlockDemo() failed: %v", err)
	}
	if enr.Status != enroll.StatusActive {
		t.Errorf("Status = %q; want %q", enr.Status, enroll.StatusActive)
	}

	payments, total, err := enrSvc.FilterPayments(ctx, enroll.PaymentQueryFilter{StudentID: usr.ID}, core.Paging{})
	if err != nil {
		t.Fatalf("FilterPayments() failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("total payments = %d; want 1", total)
	}
	if payments[0].Amount != 0 {
		t.Errorf("Amount = %d; want 0", payments[0].Amount)
	}
	if !strings.HasPrefix(payments[0].TransactionID, "demo_") {
		t.Errorf("TransactionID = %q; want demo_ prefix", payments[0].TransactionID)
	}
}

func TestSign(t *testing.T) {
	sig := Sign("order_ABC123", "pay_XYZ789", "rzp_test_secret")
	if len(sig) != 64 {
		t.Fatalf("Sign() = %q; want a 64-char hex digest", sig)
	}
	if sig != Sign("order_ABC123", "pay_XYZ789", "rzp_test_secret") {
		t.Error("Sign() is not deterministic")
	}
	if sig == Sign("order_ABC123", "pay_XYZ789", "other_secret") {
		t.Error("Sign() must depend on the secret")
	}
	if sig == Sign("order_ABC124", "pay_XYZ789", "rzp_test_secret") {
		t.Error("Sign() must depend on the order ID")
	}
}
