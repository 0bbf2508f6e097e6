package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingReference is the correlation key shared by a booking, its payment
// records and the gateway (sent as tx_ref). A reference resolves to at most
// one booking (unique column) and to at most one payment.
type BookingReference string

const referencePrefix = "BKG"

// NewBookingReference builds BKG-YYYYMMDD-<8 hex>.
func NewBookingReference(now time.Time) BookingReference {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return BookingReference(fmt.Sprintf("%s-%s-%s", referencePrefix, now.UTC().Format("20060102"), strings.ToUpper(random)))
}

func (r BookingReference) String() string {
	return string(r)
}

func (r BookingReference) IsZero() bool {
	return strings.TrimSpace(string(r)) == ""
}
