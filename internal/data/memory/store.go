// Package memory keeps every repository in process memory. It backs the
// service when STORAGE_DRIVER=memory and is what the usecase tests run on.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type txKey struct{}

type tables struct {
	users      map[uuid.UUID]entity.User
	sessions   map[uuid.UUID]entity.Session // by token
	listings   map[uuid.UUID]entity.Listing
	bookings   map[uuid.UUID]entity.Booking
	references map[entity.BookingReference]uuid.UUID
	payments   map[entity.BookingReference]entity.Payment
	reviews    map[uuid.UUID]entity.Review
}

func newTables() tables {
	return tables{
		users:      make(map[uuid.UUID]entity.User),
		sessions:   make(map[uuid.UUID]entity.Session),
		listings:   make(map[uuid.UUID]entity.Listing),
		bookings:   make(map[uuid.UUID]entity.Booking),
		references: make(map[entity.BookingReference]uuid.UUID),
		payments:   make(map[entity.BookingReference]entity.Payment),
		reviews:    make(map[uuid.UUID]entity.Review),
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.sessions {
		c.sessions[k] = v
	}
	for k, v := range t.listings {
		c.listings[k] = v
	}
	for k, v := range t.bookings {
		c.bookings[k] = v
	}
	for k, v := range t.references {
		c.references[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = clonePayment(v)
	}
	for k, v := range t.reviews {
		c.reviews[k] = v
	}
	return c
}

func clonePayment(p entity.Payment) entity.Payment {
	if p.TransactionID != nil {
		id := *p.TransactionID
		p.TransactionID = &id
	}
	return p
}

// Store serializes transactions with txMu; a statement issued outside a
// transaction takes txMu for its own duration, so it never interleaves with
// a transaction that might roll back.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data tables
	now  func() time.Time
	log  *zap.Logger
}

func NewStore(log *zap.Logger) *Store {
	return &Store{
		data: newTables(),
		now:  time.Now,
		log:  log.With(zap.String("repository", "memory")),
	}
}

// NewRepository exposes s through the repository interfaces.
func NewRepository(s *Store) *repository.Repository {
	return &repository.Repository{
		Tx:      s,
		User:    &userRepository{s},
		Session: &sessionRepository{s},
		Listing: &listingRepository{s},
		Booking: &bookingRepository{s},
		Payment: &paymentRepository{s},
		Review:  &reviewRepository{s},
	}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	restore := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		restore()
		return err
	}

	return nil
}

// lock acquires the store for one statement.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) reviewStats(listingID uuid.UUID) (float64, int64) {
	var sum, count int64
	for _, review := range s.data.reviews {
		if review.ListingID == listingID {
			sum += int64(review.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return float64(sum) / float64(count), count
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}
