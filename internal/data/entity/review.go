package entity

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseSimple
	ListingID uuid.UUID `db:"listing_id"`
	AuthorID  uuid.UUID `db:"author_id"`
	Rating    int       `db:"rating"` // 1-5
	Comment   string    `db:"comment"`
}
