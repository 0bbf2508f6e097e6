package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/lock"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// referenceAttempts bounds retries when a generated reference collides.
const referenceAttempts = 3

type BookingService interface {
	// API (auth required)
	CreateBooking(ctx context.Context, guestID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// Lifecycle
	Create(ctx context.Context, listing *entity.Listing, guestID uuid.UUID, checkIn, checkOut time.Time, numGuests int) (*entity.Booking, error)
	Confirm(ctx context.Context, bookingID uuid.UUID) error
	Cancel(ctx context.Context, bookingID uuid.UUID) error
}

type bookingService struct {
	repo      *repository.Repository
	validator *BookingValidator
	locker    lock.Locker
	cfg       utils.BookingConfig
	now       func() time.Time
	log       *zap.Logger
}

func NewBookingService(repo *repository.Repository, locker lock.Locker, cfg utils.BookingConfig, log *zap.Logger) BookingService {
	s := &bookingService{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
		now:    time.Now,
		log:    log.With(zap.String("service", "booking")),
	}
	s.validator = &BookingValidator{
		RejectPastDates: cfg.RejectPastDates,
		Now:             func() time.Time { return s.now() },
	}
	return s
}

func (s *bookingService) CreateBooking(ctx context.Context, guestID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return nil, invalidInput("invalid listing ID format %s", req.ListingID)
	}

	checkIn, err := entity.ParseDate(req.CheckIn)
	if err != nil {
		return nil, invalidInput("invalid check-in date %s", req.CheckIn)
	}
	checkOut, err := entity.ParseDate(req.CheckOut)
	if err != nil {
		return nil, invalidInput("invalid check-out date %s", req.CheckOut)
	}

	listing, err := s.repo.Listing.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	if listing == nil {
		return nil, notFound("listing %s", req.ListingID)
	}

	booking, err := s.Create(ctx, listing, guestID, checkIn, checkOut, req.NumGuests)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, listing.Title, nil)
	return &resp, nil
}

// Create validates, prices and persists a Pending booking. Nothing is
// written unless every step succeeds.
func (s *bookingService) Create(ctx context.Context, listing *entity.Listing, guestID uuid.UUID, checkIn, checkOut time.Time, numGuests int) (*entity.Booking, error) {
	checkIn, checkOut = entity.DateOf(checkIn), entity.DateOf(checkOut)

	if err := s.validator.Validate(listing, checkIn, checkOut, numGuests); err != nil {
		s.log.Info("Booking rejected",
			zap.String("listing_id", listing.ID.String()),
			zap.String("reason", err.Error()),
		)
		return nil, err
	}

	total, err := ComputeTotal(listing.PricePerNight, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("compute total: %w", err)
	}

	if s.cfg.PreventOverlap {
		release, err := s.locker.Acquire(ctx, "listing:"+listing.ID.String(), s.cfg.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("lock listing %s: %w", listing.ID.String(), err)
		}
		defer release()
	}

	for attempt := 1; ; attempt++ {
		now := s.now()
		booking := &entity.Booking{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Reference:  entity.NewBookingReference(now),
			ListingID:  listing.ID,
			GuestID:    guestID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			NumGuests:  numGuests,
			TotalPrice: total,
			Status:     entity.BookingStatusPending,
		}

		err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if s.cfg.PreventOverlap {
				overlapping, err := s.repo.Booking.FindOverlapping(ctx, listing.ID, checkIn, checkOut)
				if err != nil {
					return fmt.Errorf("check availability: %w", err)
				}
				if len(overlapping) > 0 {
					return rejected(CodeDatesUnavailable, "listing is already booked between %s and %s",
						overlapping[0].CheckIn.Format(entity.DateLayout), overlapping[0].CheckOut.Format(entity.DateLayout))
				}
			}
			return s.repo.Booking.Create(ctx, booking)
		})

		if errors.Is(err, repository.ErrDuplicate) && attempt < referenceAttempts {
			s.log.Warn("Booking reference collided, retrying", zap.String("reference", booking.Reference.String()))
			continue
		}
		if err != nil {
			if _, ok := AsValidationError(err); ok {
				return nil, err
			}
			s.log.Error("Failed to create booking",
				zap.Error(err),
				zap.String("guest_id", guestID.String()),
				zap.String("listing_id", listing.ID.String()),
			)
			return nil, fmt.Errorf("create booking: %w", err)
		}

		s.log.Info("Booking created",
			zap.String("booking_id", booking.ID.String()),
			zap.String("reference", booking.Reference.String()),
			zap.String("guest_id", guestID.String()),
			zap.Int("nights", booking.Nights()),
			zap.String("total_price", total.String()),
		)

		return booking, nil
	}
}

// Confirm moves a Pending booking to Confirmed. Confirming a Confirmed
// booking is a no-op; a Cancelled one yields ErrInvalidTransition.
func (s *bookingService) Confirm(ctx context.Context, bookingID uuid.UUID) error {
	return s.transition(ctx, bookingID, entity.BookingStatusConfirmed)
}

// Cancel moves a Pending booking to Cancelled. Cancelling a Cancelled
// booking is a no-op; a Confirmed one yields ErrInvalidTransition.
func (s *bookingService) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	return s.transition(ctx, bookingID, entity.BookingStatusCancelled)
}

func (s *bookingService) transition(ctx context.Context, bookingID uuid.UUID, to entity.BookingStatus) error {
	ok, err := s.repo.Booking.TransitionStatus(ctx, bookingID, entity.BookingStatusPending, to)
	if err != nil {
		return fmt.Errorf("transition booking %s: %w", bookingID.String(), err)
	}
	if ok {
		s.log.Info("Booking status changed",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(to)),
		)
		return nil
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("find booking %s: %w", bookingID.String(), err)
	}
	if booking == nil {
		return notFound("booking %s", bookingID.String())
	}
	if booking.Status == to {
		return nil
	}

	return fmt.Errorf("booking %s is %s, cannot become %s: %w",
		bookingID.String(), booking.Status, to, ErrInvalidTransition)
}

// GetBooking is visible to the guest who booked and to the listing's host.
func (s *bookingService) GetBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalidInput("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, notFound("booking %s", bookingID)
	}

	listing, err := s.repo.Listing.FindByID(ctx, booking.ListingID)
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}

	isHost := listing != nil && listing.HostID == userID
	if booking.GuestID != userID && !isHost {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrForbidden)
	}

	payment, err := s.repo.Payment.FindByReference(ctx, booking.Reference)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	title := ""
	if listing != nil {
		title = listing.Title
	}

	resp := response.BookingToResponse(booking, title, payment)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByGuestID(ctx, userID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("page", req.Page),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByGuestID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	titles := make(map[uuid.UUID]string)
	data := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		title, ok := titles[booking.ListingID]
		if !ok {
			if listing, _ := s.repo.Listing.FindByID(ctx, booking.ListingID); listing != nil {
				title = listing.Title
			}
			titles[booking.ListingID] = title
		}
		data = append(data, response.BookingToResponse(booking, title, nil))
	}

	return response.NewPaginatedResponse(data, req.Page, limit, total), nil
}
