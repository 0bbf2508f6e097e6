package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"

	"github.com/google/uuid"
)

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.data.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Username, repository.ErrDuplicate)
		}
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	defer r.s.lock(ctx)()
	user, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	defer r.s.lock(ctx)()
	for _, user := range r.s.data.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, nil
}

type sessionRepository struct{ s *Store }

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.sessions[session.Token]; ok {
		return fmt.Errorf("session token: %w", repository.ErrDuplicate)
	}
	r.s.data.sessions[session.Token] = *session
	return nil
}

func (r *sessionRepository) FindValidSession(ctx context.Context, token uuid.UUID) (*entity.Session, error) {
	defer r.s.lock(ctx)()
	session, ok := r.s.data.sessions[token]
	if !ok || !session.Valid(r.s.now()) {
		return nil, nil
	}
	return &session, nil
}

type listingRepository struct{ s *Store }

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.listings[listing.ID]; ok {
		return fmt.Errorf("listing %s: %w", listing.ID, repository.ErrDuplicate)
	}
	r.s.data.listings[listing.ID] = *listing
	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	defer r.s.lock(ctx)()
	listing, ok := r.s.data.listings[id]
	if !ok {
		return nil, nil
	}
	return &listing, nil
}

func (r *listingRepository) summary(listing entity.Listing) *entity.ListingSummary {
	avg, count := r.s.reviewStats(listing.ID)
	return &entity.ListingSummary{Listing: listing, AverageRating: avg, ReviewsCount: count}
}

func (r *listingRepository) FindSummaryByID(ctx context.Context, id uuid.UUID) (*entity.ListingSummary, error) {
	defer r.s.lock(ctx)()
	listing, ok := r.s.data.listings[id]
	if !ok {
		return nil, nil
	}
	return r.summary(listing), nil
}

func (r *listingRepository) List(ctx context.Context, limit, offset int) ([]*entity.ListingSummary, error) {
	defer r.s.lock(ctx)()
	all := make([]*entity.ListingSummary, 0, len(r.s.data.listings))
	for _, listing := range r.s.data.listings {
		all = append(all, r.summary(listing))
	}
	newestFirst(all, func(l *entity.ListingSummary) time.Time { return l.CreatedAt })
	return page(all, limit, offset), nil
}

func (r *listingRepository) Count(ctx context.Context) (int64, error) {
	defer r.s.lock(ctx)()
	return int64(len(r.s.data.listings)), nil
}

func (r *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	defer r.s.lock(ctx)()
	existing, ok := r.s.data.listings[listing.ID]
	if !ok {
		return fmt.Errorf("listing %s not found", listing.ID.String())
	}
	existing.Title = listing.Title
	existing.Description = listing.Description
	existing.Location = listing.Location
	existing.PricePerNight = listing.PricePerNight
	existing.MaxGuests = listing.MaxGuests
	existing.UpdatedAt = listing.UpdatedAt
	r.s.data.listings[listing.ID] = existing
	return nil
}

// Delete cascades to the listing's bookings and reviews like the SQL schema does.
func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.listings[id]; !ok {
		return fmt.Errorf("listing %s not found", id.String())
	}
	delete(r.s.data.listings, id)
	for bookingID, booking := range r.s.data.bookings {
		if booking.ListingID == id {
			delete(r.s.data.bookings, bookingID)
			delete(r.s.data.references, booking.Reference)
		}
	}
	for reviewID, review := range r.s.data.reviews {
		if review.ListingID == id {
			delete(r.s.data.reviews, reviewID)
		}
	}
	return nil
}

type bookingRepository struct{ s *Store }

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.references[booking.Reference]; ok {
		return fmt.Errorf("booking %s: %w", booking.Reference, repository.ErrDuplicate)
	}
	if _, ok := r.s.data.bookings[booking.ID]; ok {
		return fmt.Errorf("booking %s: %w", booking.ID, repository.ErrDuplicate)
	}
	r.s.data.bookings[booking.ID] = *booking
	r.s.data.references[booking.Reference] = booking.ID
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	defer r.s.lock(ctx)()
	booking, ok := r.s.data.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (r *bookingRepository) FindByReference(ctx context.Context, reference entity.BookingReference) (*entity.Booking, error) {
	defer r.s.lock(ctx)()
	id, ok := r.s.data.references[reference]
	if !ok {
		return nil, nil
	}
	booking := r.s.data.bookings[id]
	return &booking, nil
}

func (r *bookingRepository) filter(keep func(entity.Booking) bool) []*entity.Booking {
	var out []*entity.Booking
	for _, booking := range r.s.data.bookings {
		if keep(booking) {
			b := booking
			out = append(out, &b)
		}
	}
	return out
}

func (r *bookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	defer r.s.lock(ctx)()
	bookings := r.filter(func(b entity.Booking) bool { return b.GuestID == guestID })
	newestFirst(bookings, func(b *entity.Booking) time.Time { return b.CreatedAt })
	return page(bookings, limit, offset), nil
}

func (r *bookingRepository) CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error) {
	defer r.s.lock(ctx)()
	return int64(len(r.filter(func(b entity.Booking) bool { return b.GuestID == guestID }))), nil
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time) ([]*entity.Booking, error) {
	defer r.s.lock(ctx)()
	bookings := r.filter(func(b entity.Booking) bool {
		return b.ListingID == listingID &&
			(b.Status == entity.BookingStatusPending || b.Status == entity.BookingStatusConfirmed) &&
			b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
	})
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CheckIn.Before(bookings[j].CheckIn) })
	return bookings, nil
}

func (r *bookingRepository) FindReferencesByListingID(ctx context.Context, listingID uuid.UUID) ([]entity.BookingReference, error) {
	defer r.s.lock(ctx)()
	var references []entity.BookingReference
	for _, booking := range r.s.data.bookings {
		if booking.ListingID == listingID {
			references = append(references, booking.Reference)
		}
	}
	return references, nil
}

func (r *bookingRepository) FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*entity.Booking, error) {
	defer r.s.lock(ctx)()
	bookings := r.filter(func(b entity.Booking) bool {
		return b.Status == entity.BookingStatusPending && b.CreatedAt.Before(createdBefore)
	})
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
	return page(bookings, limit, 0), nil
}

func (r *bookingRepository) TransitionStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	defer r.s.lock(ctx)()
	booking, ok := r.s.data.bookings[bookingID]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	booking.UpdatedAt = r.s.now()
	r.s.data.bookings[bookingID] = booking
	return true, nil
}

type paymentRepository struct{ s *Store }

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.payments[payment.BookingReference]; ok {
		return fmt.Errorf("payment for %s: %w", payment.BookingReference, repository.ErrDuplicate)
	}
	r.s.data.payments[payment.BookingReference] = clonePayment(*payment)
	return nil
}

func (r *paymentRepository) FindByReference(ctx context.Context, reference entity.BookingReference) (*entity.Payment, error) {
	defer r.s.lock(ctx)()
	payment, ok := r.s.data.payments[reference]
	if !ok {
		return nil, nil
	}
	payment = clonePayment(payment)
	return &payment, nil
}

func (r *paymentRepository) TransitionStatus(ctx context.Context, reference entity.BookingReference, from, to entity.PaymentStatus, transactionID *string) (bool, error) {
	defer r.s.lock(ctx)()
	payment, ok := r.s.data.payments[reference]
	if !ok || payment.Status != from {
		return false, nil
	}
	payment.Status = to
	if transactionID != nil {
		id := *transactionID
		payment.TransactionID = &id
	}
	payment.UpdatedAt = r.s.now()
	r.s.data.payments[reference] = payment
	return true, nil
}

func (r *paymentRepository) DeleteByReferences(ctx context.Context, references []entity.BookingReference) error {
	defer r.s.lock(ctx)()
	for _, ref := range references {
		delete(r.s.data.payments, ref)
	}
	return nil
}

type reviewRepository struct{ s *Store }

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.data.reviews {
		if existing.ListingID == review.ListingID && existing.AuthorID == review.AuthorID {
			return fmt.Errorf("review for listing %s by %s: %w",
				review.ListingID.String(), review.AuthorID.String(), repository.ErrDuplicate)
		}
	}
	r.s.data.reviews[review.ID] = *review
	return nil
}

func (r *reviewRepository) FindByListingID(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	defer r.s.lock(ctx)()
	var reviews []*entity.Review
	for _, review := range r.s.data.reviews {
		if review.ListingID == listingID {
			rv := review
			reviews = append(reviews, &rv)
		}
	}
	newestFirst(reviews, func(rv *entity.Review) time.Time { return rv.CreatedAt })
	return page(reviews, limit, offset), nil
}

func (r *reviewRepository) FindByListingAndAuthor(ctx context.Context, listingID, authorID uuid.UUID) (*entity.Review, error) {
	defer r.s.lock(ctx)()
	for _, review := range r.s.data.reviews {
		if review.ListingID == listingID && review.AuthorID == authorID {
			return &review, nil
		}
	}
	return nil, nil
}

func (r *reviewRepository) CountByListingID(ctx context.Context, listingID uuid.UUID) (int64, error) {
	defer r.s.lock(ctx)()
	_, count := r.s.reviewStats(listingID)
	return count, nil
}

func (r *reviewRepository) GetListingReviewStats(ctx context.Context, listingID uuid.UUID) (float64, int64, error) {
	defer r.s.lock(ctx)()
	avg, count := r.s.reviewStats(listingID)
	return avg, count, nil
}
