package usecase

import (
	"context"
	"testing"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftListing(t *testing.T) *domain.Listing {
	t.Helper()
	listing, err := domain.NewListing(domain.NewListingParams{
		SellerID:     "seller-1",
		Title:        "Dental practice in Leeds",
		Description:  "Established three-surgery practice",
		PracticeType: "dental",
		Location:     "Leeds",
		Postcode:     "LS1 4AB",
		AskingPrice:  450_000,
	})
	require.NoError(t, err)
	listing.CQCRegistered = true
	listing.PatientListSize = 2400
	listing.BusinessExtras = map[string]any{"parking_spaces": int64(6)}
	return listing
}

func TestDiffListingFields_NoChangesForEquivalentValues(t *testing.T) {
	listing := draftListing(t)

	delta, err := diffListingFields(listing, map[string]any{
		"title":        "  Dental practice in Leeds ",
		"asking_price": float64(450_000),
		"price_masked": false,
		"business_details": map[string]any{
			"cqc_registered":    true,
			"patient_list_size": float64(2400),
			"parking_spaces":    6,
		},
	})

	require.NoError(t, err)
	assert.Empty(t, delta)
}

func TestDiffListingFields_KeepsOnlyChangedFields(t *testing.T) {
	listing := draftListing(t)

	delta, err := diffListingFields(listing, map[string]any{
		"title":       "Dental practice in Leeds city centre",
		"description": "Established three-surgery practice",
		"location":    "Leeds",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Dental practice in Leeds city centre"}, delta)
	assert.Equal(t, "Dental practice in Leeds", listing.Title, "diff must not mutate the live listing")
}

func TestDiffListingFields_GroupKeepsOnlyChangedKeys(t *testing.T) {
	listing := draftListing(t)

	delta, err := diffListingFields(listing, map[string]any{
		"business_details": map[string]any{
			"cqc_registered": true,
			"nhs_contract":   true,
			"staff_count":    float64(12),
		},
	})

	require.NoError(t, err)
	require.Contains(t, delta, "business_details")
	nested := delta["business_details"].(map[string]any)
	assert.Len(t, nested, 2)
	assert.Contains(t, nested, "nhs_contract")
	assert.Contains(t, nested, "staff_count")
	assert.NotContains(t, nested, "cqc_registered")
}

func TestDiffListingFields_SkipsUnknownKeys(t *testing.T) {
	listing := draftListing(t)

	delta, err := diffListingFields(listing, map[string]any{
		"status":     "published",
		"view_count": 9999,
		"seller_id":  "someone-else",
		"title":      "New title",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "New title"}, delta)
}

func TestDiffListingFields_ValidatesChangedValues(t *testing.T) {
	listing := draftListing(t)

	cases := map[string]map[string]any{
		"negative price":   {"asking_price": float64(-5)},
		"fractional price": {"asking_price": 49_999.5},
		"empty title":      {"title": "   "},
		"group not object": {"business_details": "twelve staff"},
		"wrong type":       {"price_masked": "yes"},
	}
	for name, proposed := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := diffListingFields(listing, proposed)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestDiffListingFields_EqualInvalidValueIsNotValidated(t *testing.T) {
	listing := draftListing(t)

	// The proposed value equals the live one, so it never reaches the
	// setter and cannot fail validation.
	delta, err := diffListingFields(listing, map[string]any{
		"description": "Established three-surgery practice",
	})

	require.NoError(t, err)
	assert.Empty(t, delta)
}

func TestNormalizeString_DateSpellings(t *testing.T) {
	assert.Equal(t, normalizeString("2025-06-01"), normalizeString("2025-06-01T00:00:00Z"))
	assert.Equal(t, "Leeds", normalizeString("  Leeds "))
	assert.NotEqual(t, normalizeString("2025-06-01"), normalizeString("2025-06-02"))
}

func TestNormalizeValue_NumericSpellings(t *testing.T) {
	assert.Equal(t, normalizeValue(int64(1)), normalizeValue(float64(1.0)))
	assert.Equal(t, normalizeValue(450_000), normalizeValue(float64(450_000)))
	assert.NotEqual(t, normalizeValue(int64(1)), normalizeValue(float64(1.5)))
	assert.Equal(t, "", normalizeValue(nil))
}

func TestApplyListingChanges_RoutesTypedAndExtraKeys(t *testing.T) {
	listing := draftListing(t)

	err := applyListingChanges(listing, map[string]any{
		"title": "Modern dental practice",
		"business_details": map[string]any{
			"staff_count":  float64(14),
			"has_basement": true,
		},
		"financial_data": map[string]any{
			"annual_revenue": float64(820_000),
			"ebitda_note":    "verified",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Modern dental practice", listing.Title)
	assert.Equal(t, int64(14), listing.StaffCount)
	assert.Equal(t, true, listing.BusinessExtras["has_basement"])
	assert.Equal(t, int64(820_000), listing.AnnualRevenue)
	assert.Equal(t, "verified", listing.FinancialExtras["ebitda_note"])
}

func TestStageListingChanges_SinglePendingEditPerListing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	listing := draftListing(t)
	listing.Status = domain.StatusPublished
	store.listings[listing.ID] = listing

	first, err := stageListingChanges(ctx, store, listing, map[string]any{"title": "First retitle"}, "typo")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, domain.EditStatusPending, first.Status)
	assert.Equal(t, "typo", first.Reason)

	second, err := stageListingChanges(ctx, store, listing, map[string]any{"asking_price": float64(500_000)}, "price change")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID, "resubmission replaces the delta, not the edit")
	assert.Equal(t, map[string]any{"asking_price": float64(500_000)}, second.Changes)
	assert.Equal(t, "price change", second.Reason)
	assert.Len(t, store.edits, 1)
}

func TestStageListingChanges_NoOpWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	listing := draftListing(t)
	listing.Status = domain.StatusPublished
	store.listings[listing.ID] = listing

	edit, err := stageListingChanges(ctx, store, listing, map[string]any{
		"title": listing.Title,
	}, "")

	require.NoError(t, err)
	assert.Nil(t, edit)
	assert.Empty(t, store.edits)
}

func TestPendingEditRows_LabelsAndCurrentValues(t *testing.T) {
	listing := draftListing(t)
	edit, err := domain.NewPendingEdit(listing.ID, listing.SellerID, map[string]any{
		"asking_price": float64(500_000),
		"business_details": map[string]any{
			"cqc_registered": false,
			"nhs_contract":   true,
		},
	}, "")
	require.NoError(t, err)

	rows := pendingEditRows(listing, edit)

	require.Len(t, rows, 3)
	assert.Equal(t, "asking_price", rows[0].Field)
	assert.Equal(t, "Asking Price", rows[0].Label)
	assert.Equal(t, int64(450_000), rows[0].CurrentValue)
	assert.Equal(t, float64(500_000), rows[0].NewValue)

	assert.Equal(t, "business_details.cqc_registered", rows[1].Field)
	assert.Equal(t, "Business Details: CQC Registered", rows[1].Label)
	assert.Equal(t, true, rows[1].CurrentValue)

	assert.Equal(t, "business_details.nhs_contract", rows[2].Field)
	assert.Equal(t, "Business Details: NHS Contract", rows[2].Label)
	assert.Equal(t, false, rows[2].CurrentValue)
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "Asking Price", fieldLabel("asking_price"))
	assert.Equal(t, "CQC Registered", fieldLabel("cqc_registered"))
	assert.Equal(t, "NHS Contract", fieldLabel("nhs_contract"))
	assert.Equal(t, "Title", fieldLabel("title"))
}
