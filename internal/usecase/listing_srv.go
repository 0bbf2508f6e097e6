package usecase

import (
	"context"
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

type ListingService interface {
	// Public endpoints
	GetListings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ListingResponse], error)
	GetListingByID(ctx context.Context, listingID string) (*response.ListingResponse, error)

	// Host endpoints (auth required)
	CreateListing(ctx context.Context, hostID uuid.UUID, req *request.CreateListingRequest) (*response.ListingResponse, error)
	UpdateListing(ctx context.Context, hostID uuid.UUID, listingID string, req *request.UpdateListingRequest) (*response.ListingResponse, error)
	DeleteListing(ctx context.Context, hostID uuid.UUID, listingID string) error
}

type listingService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewListingService(repo *repository.Repository, log *zap.Logger) ListingService {
	return &listingService{
		repo: repo,
		log:  log.With(zap.String("service", "listing")),
	}
}

func (s *listingService) GetListings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ListingResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	listings, err := s.repo.Listing.List(ctx, limit, offset)
	if err != nil {
		s.log.Error("Failed to get listings",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get listings: %w", err)
	}

	total, err := s.repo.Listing.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}

	data := make([]response.ListingResponse, 0, len(listings))
	for _, listing := range listings {
		data = append(data, response.ListingToResponse(listing))
	}

	return response.NewPaginatedResponse(data, req.Page, limit, total), nil
}

func (s *listingService) GetListingByID(ctx context.Context, listingID string) (*response.ListingResponse, error) {
	id, err := uuid.Parse(listingID)
	if err != nil {
		return nil, invalidInput("invalid listing ID format %s", listingID)
	}

	summary, err := s.repo.Listing.FindSummaryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if summary == nil {
		return nil, notFound("listing %s", listingID)
	}

	resp := response.ListingToResponse(summary)
	return &resp, nil
}

func (s *listingService) CreateListing(ctx context.Context, hostID uuid.UUID, req *request.CreateListingRequest) (*response.ListingResponse, error) {
	now := time.Now()
	listing := &entity.Listing{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HostID:        hostID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Location:      strings.TrimSpace(req.Location),
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
	}

	if err := s.repo.Listing.Create(ctx, listing); err != nil {
		s.log.Error("Failed to create listing",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.log.Info("Listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("host_id", hostID.String()),
		zap.String("price_per_night", listing.PricePerNight.String()),
	)

	resp := response.ListingToResponse(&entity.ListingSummary{Listing: *listing})
	return &resp, nil
}

func (s *listingService) ownedListing(ctx context.Context, hostID uuid.UUID, listingID string) (*entity.Listing, error) {
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
	if listing.HostID != hostID {
		return nil, fmt.Errorf("listing %s belongs to another host: %w", listingID, ErrForbidden)
	}

	return listing, nil
}

func (s *listingService) UpdateListing(ctx context.Context, hostID uuid.UUID, listingID string, req *request.UpdateListingRequest) (*response.ListingResponse, error) {
	listing, err := s.ownedListing(ctx, hostID, listingID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		listing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Location != nil {
		listing.Location = strings.TrimSpace(*req.Location)
	}
	if req.PricePerNight != nil {
		listing.PricePerNight = *req.PricePerNight
	}
	if req.MaxGuests != nil {
		listing.MaxGuests = *req.MaxGuests
	}
	listing.UpdatedAt = time.Now()

	if err := s.repo.Listing.Update(ctx, listing); err != nil {
		s.log.Error("Failed to update listing",
			zap.Error(err),
			zap.String("listing_id", listingID),
		)
		return nil, fmt.Errorf("update listing: %w", err)
	}

	s.log.Info("Listing updated", zap.String("listing_id", listingID))

	return s.GetListingByID(ctx, listingID)
}

// DeleteListing removes the listing with its bookings and reviews, and the
// payments correlated to those bookings' references.
func (s *listingService) DeleteListing(ctx context.Context, hostID uuid.UUID, listingID string) error {
	listing, err := s.ownedListing(ctx, hostID, listingID)
	if err != nil {
		return err
	}

	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		references, err := s.repo.Booking.FindReferencesByListingID(ctx, listing.ID)
		if err != nil {
			return err
		}
		if err := s.repo.Payment.DeleteByReferences(ctx, references); err != nil {
			return err
		}
		return s.repo.Listing.Delete(ctx, listing.ID)
	})
	if err != nil {
		s.log.Error("Failed to delete listing",
			zap.Error(err),
			zap.String("listing_id", listingID),
		)
		return fmt.Errorf("delete listing: %w", err)
	}

	s.log.Info("Listing deleted",
		zap.String("listing_id", listingID),
		zap.String("host_id", hostID.String()),
	)
	return nil
}
