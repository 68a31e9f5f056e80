package domain

import (
	"context"
	"time"
)

// Repository contracts implemented by the relational store. Lookups
// return ErrNotFound (wrapped) when the row does not exist.

type SellerRepository interface {
	Create(ctx context.Context, seller *Seller) error
	Update(ctx context.Context, seller *Seller) error
	FindByID(ctx context.Context, id string) (*Seller, error)
	FindByUserID(ctx context.Context, userID string) (*Seller, error)
}

type BuyerRepository interface {
	Create(ctx context.Context, buyer *Buyer) error
	Update(ctx context.Context, buyer *Buyer) error
	FindByID(ctx context.Context, id string) (*Buyer, error)
	FindByUserID(ctx context.Context, userID string) (*Buyer, error)
}

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Listing, error)
	FindByFilter(ctx context.Context, filter ListingFilter) ([]*Listing, int64, error)
	IncrementViewCount(ctx context.Context, id string) error
	IncrementConnectionCount(ctx context.Context, id string) error
}

type PendingEditRepository interface {
	Create(ctx context.Context, edit *PendingEdit) error
	Update(ctx context.Context, edit *PendingEdit) error
	FindPendingByListing(ctx context.Context, listingID string) (*PendingEdit, error)
	ListPending(ctx context.Context, page, perPage int) ([]*PendingEdit, int64, error)
	DeleteByListing(ctx context.Context, listingID string) error
}

type SavedListingRepository interface {
	Create(ctx context.Context, saved *SavedListing) error
	Update(ctx context.Context, saved *SavedListing) error
	Delete(ctx context.Context, buyerID, listingID string) error
	FindByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*SavedListing, error)
	ListByBuyer(ctx context.Context, buyerID string, page, perPage int) ([]*SavedListing, int64, error)
	CountByListing(ctx context.Context, listingID string) (int64, error)
	DeleteByListing(ctx context.Context, listingID string) error
}

type ListingViewRepository interface {
	Insert(ctx context.Context, view *ListingView) error
	CountSince(ctx context.Context, listingID string, since time.Time) (int64, error)
	CountDistinctViewersSince(ctx context.Context, listingID string, since time.Time) (int64, error)
	DailyCountsSince(ctx context.Context, listingID string, since time.Time) ([]DailyViewCount, error)
	RecentAuthenticatedSince(ctx context.Context, listingID string, since time.Time, limit int) ([]*ListingView, error)
	CountByViewers(ctx context.Context, listingID string, viewerIDs []string) (map[string]int64, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn *Connection) error
	Update(ctx context.Context, conn *Connection) error
	FindByID(ctx context.Context, id string) (*Connection, error)
	FindByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*Connection, error)
	HasApproved(ctx context.Context, buyerID, sellerID string) (bool, error)
	ApprovedSellerIDs(ctx context.Context, buyerID string) ([]string, error)
	CountApprovedByListing(ctx context.Context, listingID string) (int64, error)
	ListByBuyer(ctx context.Context, buyerID string, page, perPage int) ([]*Connection, int64, error)
	ListBySeller(ctx context.Context, sellerID string, page, perPage int) ([]*Connection, int64, error)
	List(ctx context.Context, page, perPage int) ([]*Connection, int64, error)
	DeleteByListing(ctx context.Context, listingID string) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	ListByConnection(ctx context.Context, connectionID string, page, perPage int) ([]*Message, int64, error)
}

type MediaRepository interface {
	Create(ctx context.Context, media *ListingMedia) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*ListingMedia, error)
	ListByListing(ctx context.Context, listingID string) ([]*ListingMedia, error)
	ListByListings(ctx context.Context, listingIDs []string) ([]*ListingMedia, error)
	DeleteByListing(ctx context.Context, listingID string) error
}

// Repositories bundles every repository over one database handle.
type Repositories interface {
	Sellers() SellerRepository
	Buyers() BuyerRepository
	Listings() ListingRepository
	PendingEdits() PendingEditRepository
	Saved() SavedListingRepository
	Views() ListingViewRepository
	Connections() ConnectionRepository
	Messages() MessageRepository
	Media() MediaRepository
}

// UnitOfWork is the store root. Reads may use the embedded repositories
// directly; mutating flows call Within, which hands fn a registry bound
// to one transaction. A non-nil error from fn rolls everything back and
// is returned unchanged, so error kinds survive the rollback.
type UnitOfWork interface {
	Repositories
	Within(ctx context.Context, fn func(r Repositories) error) error
}
