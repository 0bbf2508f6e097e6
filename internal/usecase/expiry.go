package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"

	"go.uber.org/zap"
)

const sweepBatch = 100

// ExpirySweeper cancels bookings left Pending longer than ttl and fails
// their pending payment in the same transaction. Bookings whose payment has
// completed are left for verification to confirm.
type ExpirySweeper struct {
	repo     *repository.Repository
	bookings BookingService
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewExpirySweeper(repo *repository.Repository, bookings BookingService, ttl, interval time.Duration, log *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		repo:     repo,
		bookings: bookings,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		log:      log.With(zap.String("service", "expiry")),
	}
}

// Run sweeps every interval until ctx is done. A zero ttl or interval
// disables it.
func (s *ExpirySweeper) Run(ctx context.Context) {
	if s.ttl <= 0 || s.interval <= 0 {
		s.log.Info("Pending booking expiry disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				s.log.Error("Expiry sweep failed", zap.Error(err))
			} else if n > 0 {
				s.log.Info("Expired pending bookings", zap.Int("count", n))
			}
		}
	}
}

// Sweep runs one pass and reports how many bookings it cancelled.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)

	stale, err := s.repo.Booking.FindStalePending(ctx, cutoff, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("find stale bookings: %w", err)
	}

	cancelled := 0
	for _, booking := range stale {
		expired, err := s.expire(ctx, booking)
		if err != nil {
			s.log.Warn("Failed to expire booking",
				zap.Error(err),
				zap.String("reference", booking.Reference.String()),
			)
			continue
		}
		if expired {
			cancelled++
		}
	}

	return cancelled, nil
}

func (s *ExpirySweeper) expire(ctx context.Context, booking *entity.Booking) (bool, error) {
	expired := false

	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		payment, err := s.repo.Payment.FindByReference(ctx, booking.Reference)
		if err != nil {
			return err
		}
		if payment != nil && payment.Status == entity.PaymentStatusCompleted {
			return nil
		}

		if err := s.bookings.Cancel(ctx, booking.ID); err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				return nil
			}
			return err
		}

		if payment != nil && payment.Status == entity.PaymentStatusPending {
			if _, err := s.repo.Payment.TransitionStatus(ctx, booking.Reference,
				entity.PaymentStatusPending, entity.PaymentStatusFailed, nil); err != nil {
				return err
			}
		}

		expired = true
		return nil
	})

	return expired, err
}
