package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/usecase"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const demoSessionTTL = 30 * 24 * time.Hour

type SeedOptions struct {
	Listings int
	Bookings int
	Reviews  int
	Hosts    int
	Guests   int
}

// ParseSeedFlags reads `seed --listings 10 --bookings 30 --reviews 50`.
func ParseSeedFlags(args []string) (SeedOptions, error) {
	var opts SeedOptions

	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	fs.IntVar(&opts.Listings, "listings", 10, "number of listings to create")
	fs.IntVar(&opts.Bookings, "bookings", 30, "number of bookings to attempt")
	fs.IntVar(&opts.Reviews, "reviews", 50, "number of reviews to create")
	fs.IntVar(&opts.Hosts, "hosts", 3, "number of demo hosts")
	fs.IntVar(&opts.Guests, "guests", 8, "number of demo guests")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Hosts < 1 || opts.Guests < 1 {
		return opts, errors.New("seed needs at least one host and one guest")
	}
	return opts, nil
}

var demoLocations = []string{
	"Addis Ababa", "Bahir Dar", "Gondar", "Lalibela", "Hawassa",
	"Arba Minch", "Dire Dawa", "Axum", "Bishoftu", "Jimma",
}

var demoKinds = []string{"Loft", "Cabin", "Guesthouse", "Villa", "Studio", "Lodge"}

var demoComments = []string{
	"Great stay, would book again.",
	"Clean and quiet, host was responsive.",
	"Location was perfect for exploring.",
	"Decent value, a bit noisy at night.",
	"Not as pictured.",
	"",
}

// Seed fills the store with demo users, listings, bookings and reviews.
// Bookings go through the booking service, so rejected date ranges are
// logged and skipped.
func Seed(ctx context.Context, service *usecase.Service, opts SeedOptions, log *zap.Logger) error {
	log = log.With(zap.String("command", "seed"))

	hosts, err := seedUsers(ctx, service, "host", opts.Hosts, log)
	if err != nil {
		return err
	}
	guests, err := seedUsers(ctx, service, "guest", opts.Guests, log)
	if err != nil {
		return err
	}

	listings := make([]*response.ListingResponse, 0, opts.Listings)
	for i := 0; i < opts.Listings; i++ {
		host := hosts[i%len(hosts)]
		location := demoLocations[rand.IntN(len(demoLocations))]

		listing, err := service.Listing.CreateListing(ctx, host.ID, &request.CreateListingRequest{
			Title:         fmt.Sprintf("%s %s #%d", location, demoKinds[rand.IntN(len(demoKinds))], i+1),
			Description:   "Demo listing",
			Location:      location,
			PricePerNight: entity.Money((40 + rand.IntN(360)) * 100),
			MaxGuests:     1 + rand.IntN(8),
		})
		if err != nil {
			return fmt.Errorf("create listing %d: %w", i+1, err)
		}
		listings = append(listings, listing)
	}

	if len(listings) == 0 {
		log.Info("Seed finished without listings")
		return nil
	}

	created := 0
	today := entity.DateOf(time.Now())
	for i := 0; i < opts.Bookings; i++ {
		listing := listings[rand.IntN(len(listings))]
		guest := guests[rand.IntN(len(guests))]
		checkIn := today.AddDate(0, 0, 1+rand.IntN(90))
		checkOut := checkIn.AddDate(0, 0, 1+rand.IntN(7))

		_, err := service.Booking.CreateBooking(ctx, guest.ID, &request.CreateBookingRequest{
			ListingID: listing.ID,
			CheckIn:   checkIn.Format(entity.DateLayout),
			CheckOut:  checkOut.Format(entity.DateLayout),
			NumGuests: 1 + rand.IntN(listing.MaxGuests),
		})
		if err != nil {
			if _, ok := usecase.AsValidationError(err); ok {
				log.Debug("Skipped demo booking", zap.Error(err))
				continue
			}
			return fmt.Errorf("create booking %d: %w", i+1, err)
		}
		created++
	}

	// one review per (listing, author), tracked for this run only
	seen := make(map[[2]string]struct{}, opts.Reviews)
	reviews := 0
	for attempt := 0; reviews < opts.Reviews && attempt < opts.Reviews*3; attempt++ {
		listing := listings[rand.IntN(len(listings))]
		guest := guests[rand.IntN(len(guests))]

		key := [2]string{listing.ID, guest.ID.String()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		_, err := service.Review.CreateReview(ctx, guest.ID, listing.ID, &request.CreateReviewRequest{
			Rating:  1 + rand.IntN(5),
			Comment: demoComments[rand.IntN(len(demoComments))],
		})
		if err != nil {
			if errors.Is(err, usecase.ErrConflict) {
				continue
			}
			return fmt.Errorf("create review: %w", err)
		}
		reviews++
	}

	log.Info("Seed finished",
		zap.Int("hosts", len(hosts)),
		zap.Int("guests", len(guests)),
		zap.Int("listings", len(listings)),
		zap.Int("bookings", created),
		zap.Int("reviews", reviews),
	)
	return nil
}

func seedUsers(ctx context.Context, service *usecase.Service, role string, n int, log *zap.Logger) ([]*entity.User, error) {
	users := make([]*entity.User, 0, n)
	for i := 1; i <= n; i++ {
		username := fmt.Sprintf("%s%d", role, i)
		user, err := service.Auth.EnsureUser(ctx, &entity.User{
			Username:  username,
			Email:     username + "@example.com",
			FirstName: role,
			LastName:  fmt.Sprintf("%d", i),
		})
		if err != nil {
			return nil, fmt.Errorf("ensure %s: %w", username, err)
		}

		session, err := service.Auth.IssueSession(ctx, user.ID, demoSessionTTL)
		if err != nil {
			return nil, fmt.Errorf("issue session for %s: %w", username, err)
		}

		log.Info("Demo user ready",
			zap.String("username", user.Username),
			zap.String("user_id", user.ID.String()),
			zap.String("token", session.Token.String()),
		)
		users = append(users, user)
	}
	return users, nil
}
