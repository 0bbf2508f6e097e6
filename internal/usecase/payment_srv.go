package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/gateway"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PaymentGateway is the provider seen from the payment service.
type PaymentGateway interface {
	Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.Checkout, error)
	Verify(ctx context.Context, reference entity.BookingReference) (*gateway.Transaction, error)
}

const (
	defaultGatewayTimeout = 15 * time.Second
	reconcileBudget       = 10 * time.Second
)

type VerifyOutcome string

const (
	OutcomeVerified VerifyOutcome = "verified"
	OutcomePending  VerifyOutcome = "pending"
	OutcomeFailed   VerifyOutcome = "failed"
)

type VerifyResult struct {
	Outcome VerifyOutcome
	Payment *entity.Payment
}

type PaymentService interface {
	Initiate(ctx context.Context, req *request.InitiatePaymentRequest) (*response.CheckoutResponse, error)
	Verify(ctx context.Context, reference entity.BookingReference) (*VerifyResult, error)
}

type paymentService struct {
	repo     *repository.Repository
	bookings BookingService
	gateway  PaymentGateway
	cfg      utils.PaymentConfig
	verifies singleflight.Group
	now      func() time.Time
	log      *zap.Logger
}

func NewPaymentService(repo *repository.Repository, bookings BookingService, gw PaymentGateway, cfg utils.PaymentConfig, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:     repo,
		bookings: bookings,
		gateway:  gw,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With(zap.String("service", "payment")),
	}
}

// Initiate opens a checkout for a Pending booking. The local Payment is only
// written after the provider accepted the intent, and a repeated call for the
// same reference returns the checkout already on record.
func (s *paymentService) Initiate(ctx context.Context, req *request.InitiatePaymentRequest) (*response.CheckoutResponse, error) {
	reference := entity.BookingReference(strings.TrimSpace(req.BookingReference))

	booking, err := s.repo.Booking.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, notFound("booking %s", reference)
	}

	existing, err := s.repo.Payment.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if existing != nil {
		return s.existingCheckout(existing)
	}

	if booking.Status != entity.BookingStatusPending {
		return nil, fmt.Errorf("booking %s is %s: %w", reference, booking.Status, ErrConflict)
	}
	if req.Amount != booking.TotalPrice {
		return nil, rejected(CodeAmountMismatch, "amount %s does not match booking total %s",
			req.Amount, booking.TotalPrice)
	}

	checkout, err := s.gateway.Initialize(ctx, gateway.InitializeRequest{
		Reference: reference,
		Amount:    booking.TotalPrice,
		Currency:  s.cfg.Currency,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.log.Warn("Payment initiation failed",
			zap.Error(err),
			zap.String("reference", reference.String()),
		)
		if s.cfg.CancelOnInitFailure {
			if cErr := s.bookings.Cancel(ctx, booking.ID); cErr != nil {
				s.log.Error("Failed to cancel booking after initiation failure",
					zap.Error(cErr),
					zap.String("reference", reference.String()),
				)
			}
		}
		return nil, err
	}

	now := s.now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingReference: reference,
		Amount:           booking.TotalPrice,
		Currency:         s.cfg.Currency,
		CheckoutURL:      checkout.CheckoutURL,
		Status:           entity.PaymentStatusPending,
	}

	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		// holds the booking row so a concurrent cancel waits for this payment
		ok, err := s.repo.Booking.TransitionStatus(ctx, booking.ID, entity.BookingStatusPending, entity.BookingStatusPending)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("booking %s is no longer pending: %w", reference, ErrConflict)
		}
		return s.repo.Payment.Create(ctx, payment)
	})

	if errors.Is(err, repository.ErrDuplicate) {
		// a concurrent initiation recorded its checkout first
		winner, fErr := s.repo.Payment.FindByReference(ctx, reference)
		if fErr != nil || winner == nil {
			return nil, fmt.Errorf("find payment after duplicate: %w", err)
		}
		return s.existingCheckout(winner)
	}
	if err != nil {
		s.log.Error("Failed to record payment",
			zap.Error(err),
			zap.String("reference", reference.String()),
		)
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.log.Info("Payment initiated",
		zap.String("reference", reference.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("currency", payment.Currency),
	)

	return &response.CheckoutResponse{
		BookingReference: reference.String(),
		CheckoutURL:      payment.CheckoutURL,
	}, nil
}

func (s *paymentService) existingCheckout(payment *entity.Payment) (*response.CheckoutResponse, error) {
	if payment.Status != entity.PaymentStatusPending {
		return nil, fmt.Errorf("payment %s is already %s: %w", payment.BookingReference, payment.Status, ErrConflict)
	}
	return &response.CheckoutResponse{
		BookingReference: payment.BookingReference.String(),
		CheckoutURL:      payment.CheckoutURL,
	}, nil
}

// Verify reconciles the local payment and booking with the provider's view.
// Concurrent calls for one reference share a single provider round trip.
func (s *paymentService) Verify(ctx context.Context, reference entity.BookingReference) (*VerifyResult, error) {
	reference = entity.BookingReference(strings.TrimSpace(reference.String()))
	if reference.IsZero() {
		return nil, invalidInput("tx_ref is required")
	}

	// the shared run must outlive whichever caller started it
	ch := s.verifies.DoChan(reference.String(), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.verifyBudget())
		defer cancel()
		return s.verify(runCtx, reference)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.log.Debug("Verification shared with a concurrent call", zap.String("reference", reference.String()))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*VerifyResult), nil
	}
}

// verifyBudget bounds one shared verification: the provider round trip plus
// the reconciliation transaction.
func (s *paymentService) verifyBudget() time.Duration {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return timeout + reconcileBudget
}

func (s *paymentService) verify(ctx context.Context, reference entity.BookingReference) (*VerifyResult, error) {
	payment, err := s.repo.Payment.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		s.log.Warn("Verification for unknown payment", zap.String("reference", reference.String()))
		return nil, notFound("payment %s", reference)
	}

	switch payment.Status {
	case entity.PaymentStatusCompleted:
		return &VerifyResult{Outcome: OutcomeVerified, Payment: payment}, nil
	case entity.PaymentStatusFailed:
		return &VerifyResult{Outcome: OutcomeFailed, Payment: payment}, nil
	}

	// no store lock or transaction is held across the provider call
	tx, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	switch tx.Status {
	case gateway.TransactionPending:
		return &VerifyResult{Outcome: OutcomePending, Payment: payment}, nil
	case gateway.TransactionSuccess:
		if err := s.checkSettlement(payment, tx); err != nil {
			return nil, err
		}
		err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
			return s.complete(ctx, reference, tx.TransactionID)
		})
	case gateway.TransactionFailed:
		err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
			return s.fail(ctx, reference)
		})
	default:
		return nil, &GatewayError{Op: "verify", Detail: fmt.Sprintf("unexpected status %q", tx.Status)}
	}

	if err != nil {
		if errors.Is(err, ErrConsistency) {
			s.log.Error("Reconciliation rolled back", zap.Error(err), zap.String("reference", reference.String()))
		}
		return nil, err
	}

	updated, err := s.repo.Payment.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("reload payment %s: %w", reference, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("payment %s vanished after reconciliation: %w", reference, ErrConsistency)
	}

	outcome := OutcomeVerified
	if updated.Status == entity.PaymentStatusFailed {
		outcome = OutcomeFailed
	}

	s.log.Info("Payment reconciled",
		zap.String("reference", reference.String()),
		zap.String("outcome", string(outcome)),
	)

	return &VerifyResult{Outcome: outcome, Payment: updated}, nil
}

// checkSettlement refuses to confirm when the provider settled a different
// amount or currency than the one on record.
func (s *paymentService) checkSettlement(payment *entity.Payment, tx *gateway.Transaction) error {
	if tx.Amount != nil && *tx.Amount != payment.Amount {
		return fmt.Errorf("provider settled %s for %s, expected %s: %w",
			tx.Amount, payment.BookingReference, payment.Amount, ErrConsistency)
	}
	if tx.Currency != "" && payment.Currency != "" && !strings.EqualFold(tx.Currency, payment.Currency) {
		return fmt.Errorf("provider settled in %s for %s, expected %s: %w",
			tx.Currency, payment.BookingReference, payment.Currency, ErrConsistency)
	}
	return nil
}

// complete marks the payment Completed and confirms its booking. Both happen
// in the caller's transaction; any error rolls both back.
func (s *paymentService) complete(ctx context.Context, reference entity.BookingReference, transactionID string) error {
	ok, err := s.repo.Payment.TransitionStatus(ctx, reference, entity.PaymentStatusPending, entity.PaymentStatusCompleted, &transactionID)
	if err != nil {
		return err
	}
	if !ok {
		current, err := s.repo.Payment.FindByReference(ctx, reference)
		if err != nil {
			return err
		}
		if current != nil && current.Status == entity.PaymentStatusCompleted {
			return nil
		}
		return fmt.Errorf("payment %s left pending concurrently: %w", reference, ErrConsistency)
	}

	booking, err := s.repo.Booking.FindByReference(ctx, reference)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("no booking for paid reference %s: %w", reference, ErrConsistency)
	}

	if err := s.bookings.Confirm(ctx, booking.ID); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return fmt.Errorf("confirm %s: %v: %w", reference, err, ErrConsistency)
		}
		return err
	}

	return nil
}

// fail marks the payment Failed and cancels its booking.
func (s *paymentService) fail(ctx context.Context, reference entity.BookingReference) error {
	ok, err := s.repo.Payment.TransitionStatus(ctx, reference, entity.PaymentStatusPending, entity.PaymentStatusFailed, nil)
	if err != nil {
		return err
	}
	if !ok {
		current, err := s.repo.Payment.FindByReference(ctx, reference)
		if err != nil {
			return err
		}
		if current == nil || current.Status != entity.PaymentStatusFailed {
			return fmt.Errorf("provider reports failure for %s but payment is not pending: %w", reference, ErrConsistency)
		}
	}

	booking, err := s.repo.Booking.FindByReference(ctx, reference)
	if err != nil {
		return err
	}
	if booking == nil {
		s.log.Warn("Failed payment has no booking", zap.String("reference", reference.String()))
		return nil
	}

	if err := s.bookings.Cancel(ctx, booking.ID); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return fmt.Errorf("cancel %s: %v: %w", reference, err, ErrConsistency)
		}
		return err
	}

	return nil
}
