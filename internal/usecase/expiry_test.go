package usecase

import (
	"context"
	"testing"
	"time"

	"travel-booking/internal/data/entity"

	"go.uber.org/zap"
)

func TestExpirySweeperCancelsStalePending(t *testing.T) {
	env := newTestEnv(t)
	listing := env.listing(t, "100.00", 2)

	withPayment := env.booking(t, listing, "2030-01-02", "2030-01-05", 1)
	if _, err := env.payments.Initiate(context.Background(), initiateRequest(withPayment)); err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	withoutPayment := env.booking(t, listing, "2030-02-02", "2030-02-05", 1)

	paid := env.booking(t, listing, "2030-03-02", "2030-03-05", 1)
	if _, err := env.payments.Initiate(context.Background(), initiateRequest(paid)); err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	if _, err := env.payments.Verify(context.Background(), paid.Reference); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	sweeper := NewExpirySweeper(env.repo, env.bookings, 24*time.Hour, time.Minute, zap.NewNop())

	sweeper.now = func() time.Time { return testToday.Add(time.Hour) }
	if n, err := sweeper.Sweep(context.Background()); err != nil || n != 0 {
		t.Fatalf("early Sweep() = %d, %v; want 0, nil", n, err)
	}

	sweeper.now = func() time.Time { return testToday.Add(25 * time.Hour) }
	n, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Sweep() cancelled %d, want 2", n)
	}

	for _, b := range []*entity.Booking{withPayment, withoutPayment} {
		if got := env.bookingStatus(t, b.ID); got != entity.BookingStatusCancelled {
			t.Errorf("booking %s status = %s, want cancelled", b.Reference, got)
		}
	}
	if got := env.payment(t, withPayment.Reference).Status; got != entity.PaymentStatusFailed {
		t.Errorf("payment status = %s, want failed", got)
	}
	if got := env.bookingStatus(t, paid.ID); got != entity.BookingStatusConfirmed {
		t.Errorf("paid booking status = %s, want confirmed", got)
	}
}

func TestExpirySweeperDisabled(t *testing.T) {
	env := newTestEnv(t)
	sweeper := NewExpirySweeper(env.repo, env.bookings, 0, time.Minute, zap.NewNop())

	done := make(chan struct{})
	go func() {
		sweeper.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() with zero ttl did not return")
	}
}
