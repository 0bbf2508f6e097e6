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

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByListingID(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	FindByListingAndAuthor(ctx context.Context, listingID, authorID uuid.UUID) (*entity.Review, error)
	CountByListingID(ctx context.Context, listingID uuid.UUID) (int64, error)

	// Business queries
	GetListingReviewStats(ctx context.Context, listingID uuid.UUID) (float64, int64, error) // rating, count
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewColumns = `id, listing_id, author_id, rating, comment, created_at`

func scanReview(row scanner) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.ListingID,
		&review.AuthorID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := conn(ctx, r.db).Exec(ctx, query,
		review.ID,
		review.ListingID,
		review.AuthorID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("review for listing %s by %s: %w",
			review.ListingID.String(), review.AuthorID.String(), ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("author_id", review.AuthorID.String()),
			zap.String("listing_id", review.ListingID.String()),
		)
		return fmt.Errorf("create review for listing %s by user %s: %w",
			review.ListingID.String(), review.AuthorID.String(), err)
	}

	return nil
}

func (r *reviewRepository) FindByListingID(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE listing_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, listingID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by listing ID",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reviews by listing ID %s: %w", listingID.String(), err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

func (r *reviewRepository) FindByListingAndAuthor(ctx context.Context, listingID, authorID uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE listing_id = $1 AND author_id = $2`

	review, err := scanReview(conn(ctx, r.db).QueryRow(ctx, query, listingID, authorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by listing and author",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
			zap.String("author_id", authorID.String()),
		)
		return nil, fmt.Errorf("find review by listing %s and author %s: %w",
			listingID.String(), authorID.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) CountByListingID(ctx context.Context, listingID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE listing_id = $1`, listingID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reviews by listing ID",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
		)
		return 0, fmt.Errorf("count reviews by listing ID %s: %w", listingID.String(), err)
	}

	return count, nil
}

func (r *reviewRepository) GetListingReviewStats(ctx context.Context, listingID uuid.UUID) (float64, int64, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM reviews
		WHERE listing_id = $1
	`

	var avgRating float64
	var count int64
	if err := conn(ctx, r.db).QueryRow(ctx, query, listingID).Scan(&avgRating, &count); err != nil {
		r.log.Error("Failed to get listing review stats",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
		)
		return 0, 0, fmt.Errorf("get listing %s review stats: %w", listingID.String(), err)
	}

	return avgRating, count, nil
}
