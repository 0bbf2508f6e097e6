package usecase

import (
	"context"
	"errors"
	"testing"

	"travel-booking/internal/dto/request"

	"github.com/google/uuid"
)

func TestCreateReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	listing := env.listing(t, "80.00", 2)
	listingID := listing.ID.String()

	tests := []struct {
		name    string
		author  uuid.UUID
		rating  int
		wantErr error
	}{
		{"first review", env.guest, 4, nil},
		{"second review by same guest", env.guest, 5, ErrConflict},
		{"host reviews own listing", env.host, 5, ErrForbidden},
		{"another guest", uuid.New(), 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reviews.CreateReview(ctx, tt.author, listingID, &request.CreateReviewRequest{Rating: tt.rating, Comment: "ok"})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("CreateReview() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateReview() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	stats, err := env.reviews.GetListingReviewStats(ctx, listingID)
	if err != nil {
		t.Fatalf("GetListingReviewStats() error = %v", err)
	}
	if stats.ReviewCount != 2 || stats.AverageRating != 3 {
		t.Errorf("stats = %.2f/%d, want 3.00/2", stats.AverageRating, stats.ReviewCount)
	}

	page, err := env.reviews.GetListingReviews(ctx, listingID, &request.PaginatedRequest{Page: 1, PerPage: 10})
	if err != nil || len(page.Data) != 2 {
		t.Fatalf("GetListingReviews() = %v, %v", page, err)
	}
}

func TestCreateReviewUnknownListing(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.reviews.CreateReview(context.Background(), env.guest, uuid.NewString(), &request.CreateReviewRequest{Rating: 3}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown listing error = %v, want ErrNotFound", err)
	}
}
