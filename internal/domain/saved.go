package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SavedListing is a buyer's bookmark on a listing, unique per
// (buyer, listing) pair. Saving again keeps the same identity.
type SavedListing struct {
	ID        string
	BuyerID   string
	ListingID string
	Note      string
	CreatedAt time.Time
}

func NewSavedListing(buyerID, listingID, note string) (*SavedListing, error) {
	if buyerID == "" || listingID == "" {
		return nil, fmt.Errorf("%w: buyer and listing ids are required", ErrInvalidInput)
	}
	return &SavedListing{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		ListingID: listingID,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}, nil
}
