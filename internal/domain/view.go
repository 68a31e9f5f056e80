package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListingView is one detail-read event. Views are append-only and are
// kept even after the listing itself is deleted; viewer id is nil for
// anonymous reads.
type ListingView struct {
	ID        string
	ListingID string
	ViewerID  *string
	IP        string
	Country   string
	City      string
	CreatedAt time.Time
}

// ViewerGeo is the client metadata the transport layer extracts per
// request and hands to view tracking.
type ViewerGeo struct {
	IP      string
	Country string
	City    string
}

func NewListingView(listingID string, viewerID *string, geo ViewerGeo) *ListingView {
	return &ListingView{
		ID:        uuid.NewString(),
		ListingID: listingID,
		ViewerID:  viewerID,
		IP:        geo.IP,
		Country:   geo.Country,
		City:      geo.City,
		CreatedAt: time.Now().UTC(),
	}
}

// DailyViewCount is one calendar-date bucket of a view trend. Dates are
// "YYYY-MM-DD" in UTC; dates with zero views are not emitted.
type DailyViewCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
