package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	StatusDraft           ListingStatus = "draft"
	StatusPendingApproval ListingStatus = "pending_approval"
	StatusPublished       ListingStatus = "published"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusPublished:
		return true
	}
	return false
}

// Admin-notes markers written on seller-driven status transitions.
const (
	AdminNoteSubmitted = "Submitted for approval by seller"
	AdminNoteReverted  = "Reverted to draft by seller"
)

// Listing is a practice put up for sale. Asking price, revenue and profit
// are whole pounds. The two extras maps are free-form attribute bags that
// ride alongside the typed business and financial columns; when a key
// exists in both, the typed column wins.
type Listing struct {
	ID           string
	SellerID     string
	Title        string
	Description  string
	PracticeType string
	Location     string
	Postcode     string
	Status       ListingStatus
	AskingPrice  int64
	PriceMasked  bool
	AdminNotes   string

	PatientListSize  int64
	StaffCount       int64
	YearsEstablished int64
	PremisesType     string
	CQCRegistered    bool
	NHSContract      bool
	BusinessExtras   map[string]any

	AnnualRevenue   int64
	AnnualProfit    int64
	FinancialExtras map[string]any

	ViewCount       int64
	ConnectionCount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewListingParams carries the fields a seller provides at creation time.
type NewListingParams struct {
	SellerID     string
	Title        string
	Description  string
	PracticeType string
	Location     string
	Postcode     string
	AskingPrice  int64
	PriceMasked  bool
}

// NewListing validates the params and returns a draft listing.
func NewListing(p NewListingParams) (*Listing, error) {
	if p.SellerID == "" {
		return nil, fmt.Errorf("%w: seller id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.PracticeType) == "" {
		return nil, fmt.Errorf("%w: practice type is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Location) == "" {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if p.AskingPrice <= 0 {
		return nil, fmt.Errorf("%w: asking price must be positive", ErrInvalidInput)
	}
	now := time.Now().UTC()
	return &Listing{
		ID:           uuid.NewString(),
		SellerID:     p.SellerID,
		Title:        strings.TrimSpace(p.Title),
		Description:  strings.TrimSpace(p.Description),
		PracticeType: strings.TrimSpace(p.PracticeType),
		Location:     strings.TrimSpace(p.Location),
		Postcode:     strings.TrimSpace(p.Postcode),
		Status:       StatusDraft,
		AskingPrice:  p.AskingPrice,
		PriceMasked:  p.PriceMasked,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (l *Listing) IsDraft() bool     { return l.Status == StatusDraft }
func (l *Listing) IsPublished() bool { return l.Status == StatusPublished }

// Clone returns a copy safe to mutate; the extras bags are copied, not
// shared.
func (l *Listing) Clone() *Listing {
	c := *l
	if l.BusinessExtras != nil {
		c.BusinessExtras = make(map[string]any, len(l.BusinessExtras))
		for k, v := range l.BusinessExtras {
			c.BusinessExtras[k] = v
		}
	}
	if l.FinancialExtras != nil {
		c.FinancialExtras = make(map[string]any, len(l.FinancialExtras))
		for k, v := range l.FinancialExtras {
			c.FinancialExtras[k] = v
		}
	}
	return &c
}

// SubmitForApproval moves a draft into the moderation queue. Returns false
// when the listing is not a draft (submitting twice is not an error).
func (l *Listing) SubmitForApproval() bool {
	if l.Status != StatusDraft {
		return false
	}
	l.Status = StatusPendingApproval
	l.AdminNotes = AdminNoteSubmitted
	return true
}

// RevertToDraft withdraws a listing from review or unpublishes it. Returns
// false when the listing already is a draft.
func (l *Listing) RevertToDraft() bool {
	if l.Status == StatusDraft {
		return false
	}
	l.Status = StatusDraft
	l.AdminNotes = AdminNoteReverted
	return true
}

// ListingFilter narrows and orders a listing scan. Zero values mean
// "no constraint". Page starts at 1.
type ListingFilter struct {
	Status       ListingStatus
	SellerID     string
	PracticeType string
	Location     string
	Query        string
	MinPrice     int64
	MaxPrice     int64
	SortBy       string
	SortOrder    string
	Page         int
	PerPage      int
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Normalize clamps pagination and defaults the sort so repositories can
// rely on sane bounds.
func (f *ListingFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

func (f ListingFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}
