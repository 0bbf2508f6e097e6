package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/memory"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/gateway"
	"travel-booking/pkg/lock"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeGateway struct {
	mu          sync.Mutex
	checkoutURL string
	initErr     error
	tx          *gateway.Transaction
	verifyErr   error
	hold        chan struct{}
	initCalls   int
	verifyCalls int
	lastInit    gateway.InitializeRequest
}

func (g *fakeGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls++
	g.lastInit = req
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &gateway.Checkout{Reference: req.Reference, CheckoutURL: g.checkoutURL}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference entity.BookingReference) (*gateway.Transaction, error) {
	g.mu.Lock()
	g.verifyCalls++
	hold := g.hold
	g.mu.Unlock()

	// a held gateway answers once released, like a slow provider
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, &gateway.Error{Op: "verify", Detail: "transport failure", Err: ctx.Err()}
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	tx := *g.tx
	tx.Reference = reference
	return &tx, nil
}

func (g *fakeGateway) calls() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.initCalls, g.verifyCalls
}

var testToday = time.Date(2030, 1, 1, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	repo     *repository.Repository
	gw       *fakeGateway
	bookings *bookingService
	payments *paymentService
	listings ListingService
	reviews  ReviewService
	host     uuid.UUID
	guest    uuid.UUID
}

func testConfig() *utils.Config {
	return &utils.Config{
		Payment: utils.PaymentConfig{Currency: "ETB"},
		Booking: utils.BookingConfig{
			RejectPastDates: true,
			LockTTL:         time.Second,
			PendingTTL:      24 * time.Hour,
			SweepInterval:   time.Minute,
		},
	}
}

func newTestEnv(t *testing.T, mutate ...func(*utils.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	log := zap.NewNop()
	repo := memory.NewRepository(memory.NewStore(log))
	gw := &fakeGateway{
		checkoutURL: "https://checkout.example/pay/1",
		tx:          &gateway.Transaction{Status: gateway.TransactionSuccess, TransactionID: "GW-1"},
	}

	bookings := NewBookingService(repo, lock.NewMemoryLocker(), cfg.Booking, log).(*bookingService)
	bookings.now = func() time.Time { return testToday }
	payments := NewPaymentService(repo, bookings, gw, cfg.Payment, log).(*paymentService)

	return &testEnv{
		repo:     repo,
		gw:       gw,
		bookings: bookings,
		payments: payments,
		listings: NewListingService(repo, log),
		reviews:  NewReviewService(repo, log),
		host:     uuid.New(),
		guest:    uuid.New(),
	}
}

func (e *testEnv) listing(t *testing.T, price string, maxGuests int) *entity.Listing {
	t.Helper()
	listing := &entity.Listing{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: testToday, UpdatedAt: testToday},
		HostID:        e.host,
		Title:         "Lake house",
		Location:      "Bishoftu",
		PricePerNight: entity.MustParseMoney(price),
		MaxGuests:     maxGuests,
	}
	if err := e.repo.Listing.Create(context.Background(), listing); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := entity.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func (e *testEnv) booking(t *testing.T, listing *entity.Listing, checkIn, checkOut string, guests int) *entity.Booking {
	t.Helper()
	booking, err := e.bookings.Create(context.Background(), listing, e.guest, date(t, checkIn), date(t, checkOut), guests)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return booking
}

func (e *testEnv) bookingStatus(t *testing.T, id uuid.UUID) entity.BookingStatus {
	t.Helper()
	booking, err := e.repo.Booking.FindByID(context.Background(), id)
	if err != nil || booking == nil {
		t.Fatalf("FindByID() = %v, %v", booking, err)
	}
	return booking.Status
}

func (e *testEnv) payment(t *testing.T, ref entity.BookingReference) *entity.Payment {
	t.Helper()
	payment, err := e.repo.Payment.FindByReference(context.Background(), ref)
	if err != nil {
		t.Fatalf("FindByReference() error = %v", err)
	}
	return payment
}
