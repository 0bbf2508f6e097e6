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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	GetListingReviews(ctx context.Context, listingID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetListingReviewStats(ctx context.Context, listingID string) (*response.ListingReviewStats, error)

	// Auth required
	CreateReview(ctx context.Context, authorID uuid.UUID, listingID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) listing(ctx context.Context, listingID string) (*entity.Listing, error) {
	id, err := uuid.Parse(listingID)
	if err != nil {
		return nil, invalidInput("invalid listing ID format %s", listingID)
	}

	listing, err := s.repo.Listing.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	if listing == nil {
		return nil, notFound("listing %s", listingID)
	}
	return listing, nil
}

func (s *reviewService) CreateReview(ctx context.Context, authorID uuid.UUID, listingID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	listing, err := s.listing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if listing.HostID == authorID {
		return nil, fmt.Errorf("hosts cannot review their own listing: %w", ErrForbidden)
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		ListingID: listing.ID,
		AuthorID:  authorID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	// the unique (listing, author) index decides races between two submissions
	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("user already reviewed this listing: %w", ErrConflict)
		}
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("author_id", authorID.String()),
			zap.String("listing_id", listingID),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	username := ""
	if user, _ := s.repo.User.FindByID(ctx, authorID); user != nil {
		username = user.Username
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("author_id", authorID.String()),
		zap.String("listing_id", listingID),
		zap.Int("rating", req.Rating),
	)

	resp := response.ReviewToResponse(review, username)
	return &resp, nil
}

func (s *reviewService) GetListingReviews(ctx context.Context, listingID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	listing, err := s.listing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit()
	offset := req.Offset()

	reviews, err := s.repo.Review.FindByListingID(ctx, listing.ID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get listing reviews",
			zap.Error(err),
			zap.String("listing_id", listingID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get listing reviews: %w", err)
	}

	total, err := s.repo.Review.CountByListingID(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("count listing reviews: %w", err)
	}

	usernames := make(map[uuid.UUID]string)
	data := make([]response.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		username, ok := usernames[review.AuthorID]
		if !ok {
			if user, _ := s.repo.User.FindByID(ctx, review.AuthorID); user != nil {
				username = user.Username
			}
			usernames[review.AuthorID] = username
		}
		data = append(data, response.ReviewToResponse(review, username))
	}

	return response.NewPaginatedResponse(data, req.Page, limit, total), nil
}

func (s *reviewService) GetListingReviewStats(ctx context.Context, listingID string) (*response.ListingReviewStats, error) {
	listing, err := s.listing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	avg, count, err := s.repo.Review.GetListingReviewStats(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("get review stats: %w", err)
	}

	return &response.ListingReviewStats{
		ListingID:     listingID,
		AverageRating: avg,
		ReviewCount:   count,
	}, nil
}
