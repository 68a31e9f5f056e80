package domain

import "context"

// EventPublisher fans domain events out to the message bus. Publish
// failures are reported but must never fail the operation that emitted
// the event.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event any) error
}

// ListingCache is a read-through cache of listing entities. GetListing
// returns (nil, nil) on a miss.
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*Listing, error)
	SetListing(ctx context.Context, listing *Listing) error
	DeleteListing(ctx context.Context, id string) error
}

// ListingIndex is the optional free-text search index over published
// listings. SearchIDs returns ranked listing ids; callers hydrate from
// the store so visibility rules always apply to live data.
type ListingIndex interface {
	IndexListing(ctx context.Context, listing *Listing) error
	RemoveListing(ctx context.Context, id string) error
	SearchIDs(ctx context.Context, filter ListingFilter) ([]string, int64, error)
}

// MediaStorage stores uploaded listing files.
type MediaStorage interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (objectKey, url string, err error)
	Remove(ctx context.Context, objectKey string) error
}
