package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/gateway"
)

func initiateRequest(booking *entity.Booking) *request.InitiatePaymentRequest {
	return &request.InitiatePaymentRequest{
		BookingReference: booking.Reference.String(),
		Amount:           booking.TotalPrice,
		Email:            "guest@example.com",
		FirstName:        "Abebe",
		LastName:         "Kebede",
	}
}

// pendingPayment books three nights at 100.00 and initiates its payment.
func (e *testEnv) pendingPayment(t *testing.T) *entity.Booking {
	t.Helper()
	booking := e.booking(t, e.listing(t, "100.00", 2), "2030-01-02", "2030-01-05", 1)
	if _, err := e.payments.Initiate(context.Background(), initiateRequest(booking)); err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	return booking
}

func TestInitiatePersistsPendingPayment(t *testing.T) {
	env := newTestEnv(t)
	booking := env.booking(t, env.listing(t, "100.00", 2), "2030-01-02", "2030-01-05", 1)

	resp, err := env.payments.Initiate(context.Background(), initiateRequest(booking))
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	if resp.CheckoutURL != env.gw.checkoutURL {
		t.Errorf("CheckoutURL = %q, want %q", resp.CheckoutURL, env.gw.checkoutURL)
	}

	sent := env.gw.lastInit
	if sent.Reference != booking.Reference || sent.Currency != "ETB" || sent.Amount.String() != "300.00" {
		t.Errorf("gateway got %+v", sent)
	}

	payment := env.payment(t, booking.Reference)
	if payment == nil || payment.Status != entity.PaymentStatusPending || payment.Amount != booking.TotalPrice {
		t.Fatalf("payment = %+v, want pending 300.00", payment)
	}
	if payment.TransactionID != nil {
		t.Errorf("TransactionID = %v before verification, want nil", *payment.TransactionID)
	}
}

func TestInitiateGatewayFailureLeavesNoPayment(t *testing.T) {
	env := newTestEnv(t)
	booking := env.booking(t, env.listing(t, "100.00", 2), "2030-01-02", "2030-01-05", 1)
	env.gw.initErr = &gateway.Error{Op: "initialize", Detail: "provider returned 400"}

	_, err := env.payments.Initiate(context.Background(), initiateRequest(booking))
	if _, ok := AsGatewayError(err); !ok {
		t.Fatalf("Initiate() error = %v, want GatewayError", err)
	}

	if payment := env.payment(t, booking.Reference); payment != nil {
		t.Errorf("payment persisted after failed initiation: %+v", payment)
	}
	if got := env.bookingStatus(t, booking.ID); got != entity.BookingStatusPending {
		t.Errorf("booking status = %s, want pending", got)
	}
}

func TestInitiateGatewayFailureCanCancel(t *testing.T) {
	env := newTestEnv(t)
	env.payments.cfg.CancelOnInitFailure = true
	booking := env.booking(t, env.listing(t, "100.00", 2), "2030-01-02", "2030-01-05", 1)
	env.gw.initErr = &gateway.Error{Op: "initialize", Detail: "timed out"}

	if _, err := env.payments.Initiate(context.Background(), initiateRequest(booking)); err == nil {
		t.Fatal("Initiate() error = nil, want gateway error")
	}
	if got := env.bookingStatus(t, booking.ID); got != entity.BookingStatusCancelled {
		t.Errorf("booking status = %s, want cancelled", got)
	}
}

func TestInitiateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	booking := env.pendingPayment(t)

	resp, err := env.payments.Initiate(context.Background(), initiateRequest(booking))
	if err != nil {
		t.Fatalf("repeat Initiate() error = %v", err)
	}
	if resp.CheckoutURL != env.gw.checkoutURL {
		t.Errorf("CheckoutURL = %q", resp.CheckoutURL)
	}
	if inits, _ := env.gw.calls(); inits != 1 {
		t.Errorf("gateway initialize calls = %d, want 1", inits)
	}
}

func TestInitiateRejections(t *testing.T) {
	env := newTestEnv(t)
	booking := env.booking(t, env.listing(t, "100.00", 2), "2030-01-02", "2030-01-05", 1)

	wrongAmount := initiateRequest(booking)
	wrongAmount.Amount = entity.MustParseMoney("1.00")
	if vErr, ok := AsValidationError(mustFail(env.payments.Initiate(context.Background(), wrongAmount))); !ok || vErr.Code != CodeAmountMismatch {
		t.Errorf("wrong amount error code = %v, want AmountMismatch", vErr)
	}

	unknown := initiateRequest(booking)
	unknown.BookingReference = "BKG-20300101-00000000"
	if err := mustFail(env.payments.Initiate(context.Background(), unknown)); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown reference error = %v, want ErrNotFound", err)
	}

	if err := env.bookings.Cancel(context.Background(), booking.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := mustFail(env.payments.Initiate(context.Background(), initiateRequest(booking))); !errors.Is(err, ErrConflict) {
		t.Errorf("cancelled booking error = %v, want ErrConflict", err)
	}

	if inits, _ := env.gw.calls(); inits != 0 {
		t.Errorf("gateway initialize calls = %d, want 0", inits)
	}
}

func mustFail(_ any, err error) error {
	return err
}

func TestVerifySuccessConfirmsBooking(t *testing.T) {
	env := newTestEnv(t)
	booking := env.pendingPayment(t)

	result, err := env.payments.Verify(context.Background(), booking.Reference)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Outcome != OutcomeVerified {
		t.Errorf("Outcome = %s, want verified", result.Outcome)
	}

	payment := env.payment(t, booking.Reference)
	if payment.Status != entity.PaymentStatusCompleted || payment.TransactionID == nil || *payment.TransactionID != "GW-1" {
		t.Errorf("payment = %+v, want completed with GW-1", payment)
	}
	if got := env.bookingStatus(t, booking.ID); got != entity.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want confirmed", got)
	}

	again, err := env.payments.Verify(context.Background(), booking.Reference)
	if err != nil || again.Outcome != OutcomeVerified {
		t.Errorf("repeat Verify() = %v, %v", again, err)
	}
	if _, verifies := env.gw.calls(); verifies != 1 {
		t.Errorf("gateway verify calls = %d, want 1", verifies)
	}
}

func TestVerifyFailureCancelsBooking(t *testing.T) {
	env := newTestEnv(t)
	booking := env.pendingPayment(t)
	env.gw.tx = &gateway.Transaction{Status: gateway.TransactionFailed}

	result, err := env.payments.Verify(context.Background(), booking.Reference)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %s, want failed", result.Outcome)
	}
	if payment := env.payment(t, booking.Reference); payment.Status != entity.PaymentStatusFailed {
		t.Errorf("payment status = %s, want failed", payment.Status)
	}
	if got := env.bookingStatus(t, booking.ID); got != entity.BookingStatusCancelled {
		t.Errorf("booking status = %s, want cancelled", got)
	}
}

func TestVerifyUnknownReferenceIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.booking(t, env.listing(t, "100.00", 2), "2030-01-02", "2030-01-05", 1)

	_, err := env.payments.Verify(context.Background(), "BKG-20300101-DEADBEEF")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Verify() error = %v, want ErrNotFound", err)
	}
	if _, verifies := env.gw.calls(); verifies != 0 {
		t.Errorf("gateway verify calls = %d, want 0", verifies)
	}
}

func TestVerifyBookingWithoutPaymentIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	booking := env.booking(t, env.listing(t, "100.00", 2), "2030-01-02", "2030-01-05", 1)

	if _, err := env.payments.Verify(context.Background(), booking.Reference); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Verify() error = %v, want ErrNotFound", err)
	}
	if got := env.bookingStatus(t, booking.ID); got != entity.BookingStatusPending {
		t.Errorf("booking status = %s, want pending", got)
	}
}

func TestVerifyLeavesStateOnGatewayPendingOrError(t *testing.T) {
	tests := []struct {
		name        string
		tx          *gateway.Transaction
		err         error
		wantOutcome VerifyOutcome
	}{
		{name: "pending", tx: &gateway.Transaction{Status: gateway.TransactionPending}, wantOutcome: OutcomePending},
		{name: "transport error", err: &gateway.Error{Op: "verify", Detail: "timed out"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			booking := env.pendingPayment(t)
			env.gw.tx, env.gw.verifyErr = tt.tx, tt.err

			result, err := env.payments.Verify(context.Background(), booking.Reference)
			if tt.err != nil {
				if _, ok := AsGatewayError(err); !ok {
					t.Fatalf("Verify() error = %v, want GatewayError", err)
				}
			} else if err != nil || result.Outcome != tt.wantOutcome {
				t.Fatalf("Verify() = %v, %v; want %s", result, err, tt.wantOutcome)
			}

			if payment := env.payment(t, booking.Reference); payment.Status != entity.PaymentStatusPending {
				t.Errorf("payment status = %s, want pending", payment.Status)
			}
			if got := env.bookingStatus(t, booking.ID); got != entity.BookingStatusPending {
				t.Errorf("booking status = %s, want pending", got)
			}
		})
	}
}

func TestVerifyRollsBackWhenBookingWasCancelled(t *testing.T) {
	env := newTestEnv(t)
	booking := env.pendingPayment(t)
	if err := env.bookings.Cancel(context.Background(), booking.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	_, err := env.payments.Verify(context.Background(), booking.Reference)
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("Verify() error = %v, want ErrConsistency", err)
	}

	payment := env.payment(t, booking.Reference)
	if payment.Status != entity.PaymentStatusPending || payment.TransactionID != nil {
		t.Errorf("payment = %+v, want untouched pending", payment)
	}
}

func TestVerifyRejectsSettlementMismatch(t *testing.T) {
	env := newTestEnv(t)
	booking := env.pendingPayment(t)
	paid := entity.MustParseMoney("1.00")
	env.gw.tx = &gateway.Transaction{Status: gateway.TransactionSuccess, TransactionID: "GW-2", Amount: &paid}

	if _, err := env.payments.Verify(context.Background(), booking.Reference); !errors.Is(err, ErrConsistency) {
		t.Fatalf("Verify() error = %v, want ErrConsistency", err)
	}
	if got := env.bookingStatus(t, booking.ID); got != entity.BookingStatusPending {
		t.Errorf("booking status = %s, want pending", got)
	}
}

func TestConcurrentVerifyConfirmsOnce(t *testing.T) {
	env := newTestEnv(t)
	booking := env.pendingPayment(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.payments.Verify(context.Background(), booking.Reference)
			if err == nil && result.Outcome != OutcomeVerified {
				err = errors.New("outcome " + string(result.Outcome))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Verify() error = %v", err)
		}
	}
	if got := env.bookingStatus(t, booking.ID); got != entity.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want confirmed", got)
	}
}

func TestVerifySurvivesFirstCallerLeaving(t *testing.T) {
	env := newTestEnv(t)
	booking := env.pendingPayment(t)

	release := make(chan struct{})
	env.gw.mu.Lock()
	env.gw.hold = release
	env.gw.mu.Unlock()

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := env.payments.Verify(firstCtx, booking.Reference)
		firstErr <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, verifies := env.gw.calls(); verifies == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("gateway never reached")
		}
		time.Sleep(5 * time.Millisecond)
	}

	type outcome struct {
		result *VerifyResult
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		result, err := env.payments.Verify(context.Background(), booking.Reference)
		second <- outcome{result, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller error = %v, want context.Canceled", err)
	}

	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("second caller error = %v", got.err)
	}
	if got.result.Outcome != OutcomeVerified {
		t.Fatalf("second caller outcome = %s, want verified", got.result.Outcome)
	}
	if _, verifies := env.gw.calls(); verifies != 1 {
		t.Errorf("gateway verify calls = %d, want 1", verifies)
	}
	if status := env.bookingStatus(t, booking.ID); status != entity.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want confirmed", status)
	}
}

func TestVerifyRequiresReference(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.payments.Verify(context.Background(), "  "); err == nil {
		t.Fatal("Verify(\"\") error = nil")
	}
}
