package repository

import (
	"context"
	"errors"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
	FindSummaryByID(ctx context.Context, id uuid.UUID) (*entity.ListingSummary, error)
	List(ctx context.Context, limit, offset int) ([]*entity.ListingSummary, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, listing *entity.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type listingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewListingRepository(db database.PgxIface, log *zap.Logger) ListingRepository {
	return &listingRepository{
		db:  db,
		log: log.With(zap.String("repository", "listing")),
	}
}

const listingColumns = `l.id, l.host_id, l.title, l.description, l.location,
	l.price_per_night_cents, l.max_guests, l.created_at, l.updated_at`

const listingSummarySelect = `
	SELECT ` + listingColumns + `,
	       COALESCE(AVG(r.rating), 0)::float8 AS average_rating,
	       COUNT(r.id) AS reviews_count
	FROM listings l
	LEFT JOIN reviews r ON r.listing_id = l.id
`

func scanListing(row scanner, extra ...any) (*entity.Listing, error) {
	var listing entity.Listing
	dest := []any{
		&listing.ID,
		&listing.HostID,
		&listing.Title,
		&listing.Description,
		&listing.Location,
		&listing.PricePerNight,
		&listing.MaxGuests,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &listing, nil
}

func scanListingSummary(row scanner) (*entity.ListingSummary, error) {
	var summary entity.ListingSummary
	listing, err := scanListing(row, &summary.AverageRating, &summary.ReviewsCount)
	if err != nil {
		return nil, err
	}
	summary.Listing = *listing
	return &summary, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	query := `
		INSERT INTO listings (id, host_id, title, description, location,
		                      price_per_night_cents, max_guests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := conn(ctx, r.db).Exec(ctx, query,
		listing.ID,
		listing.HostID,
		listing.Title,
		listing.Description,
		listing.Location,
		listing.PricePerNight.Cents(),
		listing.MaxGuests,
		listing.CreatedAt,
		listing.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create listing",
			zap.Error(err),
			zap.String("host_id", listing.HostID.String()),
		)
		return fmt.Errorf("create listing %s: %w", listing.Title, err)
	}

	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = $1`

	listing, err := scanListing(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find listing by ID",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return nil, fmt.Errorf("find listing by ID %s: %w", id.String(), err)
	}

	return listing, nil
}

func (r *listingRepository) FindSummaryByID(ctx context.Context, id uuid.UUID) (*entity.ListingSummary, error) {
	query := listingSummarySelect + ` WHERE l.id = $1 GROUP BY l.id`

	summary, err := scanListingSummary(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find listing summary",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return nil, fmt.Errorf("find listing summary %s: %w", id.String(), err)
	}

	return summary, nil
}

func (r *listingRepository) List(ctx context.Context, limit, offset int) ([]*entity.ListingSummary, error) {
	query := listingSummarySelect + `
		GROUP BY l.id
		ORDER BY l.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list listings",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []*entity.ListingSummary
	for rows.Next() {
		summary, err := scanListingSummary(rows)
		if err != nil {
			r.log.Error("Failed to scan listing row", zap.Error(err))
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, summary)
	}

	return listings, rows.Err()
}

func (r *listingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count); err != nil {
		r.log.Error("Failed to count listings", zap.Error(err))
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, location = $4,
		    price_per_night_cents = $5, max_guests = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).Exec(ctx, query,
		listing.ID,
		listing.Title,
		listing.Description,
		listing.Location,
		listing.PricePerNight.Cents(),
		listing.MaxGuests,
		listing.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update listing",
			zap.Error(err),
			zap.String("listing_id", listing.ID.String()),
		)
		return fmt.Errorf("update listing %s: %w", listing.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %s not found", listing.ID.String())
	}

	return nil
}

// Delete removes the listing; bookings and reviews go with it through ON DELETE CASCADE.
func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete listing",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return fmt.Errorf("delete listing %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %s not found", id.String())
	}

	r.log.Info("Listing deleted", zap.String("listing_id", id.String()))
	return nil
}
