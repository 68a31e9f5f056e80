package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() NewListingParams {
	return NewListingParams{
		SellerID:     "seller-1",
		Title:        "  Dental practice in Leeds  ",
		Description:  " Established three-surgery practice ",
		PracticeType: "dental",
		Location:     "Leeds",
		Postcode:     " LS1 4AB ",
		AskingPrice:  450_000,
	}
}

func TestNewListing(t *testing.T) {
	listing, err := NewListing(validParams())

	require.NoError(t, err)
	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, StatusDraft, listing.Status)
	assert.Equal(t, "Dental practice in Leeds", listing.Title, "whitespace is trimmed")
	assert.Equal(t, "LS1 4AB", listing.Postcode)
	assert.False(t, listing.CreatedAt.IsZero())
	assert.Equal(t, listing.CreatedAt, listing.UpdatedAt)
}

func TestNewListing_Validation(t *testing.T) {
	cases := map[string]func(*NewListingParams){
		"missing seller":      func(p *NewListingParams) { p.SellerID = "" },
		"blank title":         func(p *NewListingParams) { p.Title = "   " },
		"blank practice type": func(p *NewListingParams) { p.PracticeType = "" },
		"blank location":      func(p *NewListingParams) { p.Location = " " },
		"zero price":          func(p *NewListingParams) { p.AskingPrice = 0 },
		"negative price":      func(p *NewListingParams) { p.AskingPrice = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validParams()
			mutate(&p)
			_, err := NewListing(p)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestListing_SubmitForApproval(t *testing.T) {
	listing, err := NewListing(validParams())
	require.NoError(t, err)

	assert.True(t, listing.SubmitForApproval())
	assert.Equal(t, StatusPendingApproval, listing.Status)
	assert.Equal(t, AdminNoteSubmitted, listing.AdminNotes)

	assert.False(t, listing.SubmitForApproval(), "only drafts can be submitted")
	assert.Equal(t, StatusPendingApproval, listing.Status)
}

func TestListing_RevertToDraft(t *testing.T) {
	listing, err := NewListing(validParams())
	require.NoError(t, err)
	listing.Status = StatusPublished

	assert.True(t, listing.RevertToDraft())
	assert.Equal(t, StatusDraft, listing.Status)
	assert.Equal(t, AdminNoteReverted, listing.AdminNotes)

	assert.False(t, listing.RevertToDraft(), "a draft cannot be reverted again")
}

func TestListing_CloneIsIndependent(t *testing.T) {
	listing, err := NewListing(validParams())
	require.NoError(t, err)
	listing.BusinessExtras = map[string]any{"parking_spaces": int64(6)}
	listing.FinancialExtras = map[string]any{"ebitda": int64(95_000)}

	clone := listing.Clone()
	clone.Title = "Changed"
	clone.BusinessExtras["parking_spaces"] = int64(9)
	clone.FinancialExtras["ebitda"] = int64(1)

	assert.Equal(t, "Dental practice in Leeds", listing.Title)
	assert.Equal(t, int64(6), listing.BusinessExtras["parking_spaces"])
	assert.Equal(t, int64(95_000), listing.FinancialExtras["ebitda"])
}

func TestListingFilter_Normalize(t *testing.T) {
	f := ListingFilter{Page: -3, PerPage: 0}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPerPage, f.PerPage)
	assert.Equal(t, "created_at", f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)

	f = ListingFilter{Page: 2, PerPage: 500, SortBy: "asking_price", SortOrder: "asc"}
	f.Normalize()
	assert.Equal(t, MaxPerPage, f.PerPage)
	assert.Equal(t, "asking_price", f.SortBy)
	assert.Equal(t, "asc", f.SortOrder)
	assert.Equal(t, 100, f.Offset())

	f = ListingFilter{SortOrder: "sideways"}
	f.Normalize()
	assert.Equal(t, "desc", f.SortOrder, "unknown sort orders fall back to desc")
}
