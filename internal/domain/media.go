package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ListingMedia is one uploaded file attached to a listing. ObjectKey is
// the storage key; URL is what clients fetch.
type ListingMedia struct {
	ID        string
	ListingID string
	ObjectKey string
	URL       string
	FileName  string
	Position  int
	CreatedAt time.Time
}

func NewListingMedia(listingID, objectKey, url, fileName string, position int) (*ListingMedia, error) {
	if listingID == "" || objectKey == "" || url == "" {
		return nil, fmt.Errorf("%w: listing id, object key and url are required", ErrInvalidInput)
	}
	return &ListingMedia{
		ID:        uuid.NewString(),
		ListingID: listingID,
		ObjectKey: objectKey,
		URL:       url,
		FileName:  fileName,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}, nil
}
