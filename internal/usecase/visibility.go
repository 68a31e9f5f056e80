package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"go.uber.org/zap"
)

// VisibilityPolicy decides what a viewer may see of a listing: whether the
// listing is visible at all, whether the exact price shows or only its
// band, and whether the private detail and performance sections appear.
type VisibilityPolicy struct {
	store  domain.UnitOfWork
	logger *logger.Logger
}

func NewVisibilityPolicy(store domain.UnitOfWork, log *logger.Logger) *VisibilityPolicy {
	return &VisibilityPolicy{store: store, logger: log.Named("VisibilityPolicy")}
}

// Viewership is the resolved relationship between one viewer and one
// listing. Resolve it once per request and pass it to the checks below.
type Viewership struct {
	Actor          domain.Actor
	IsOwner        bool
	IsAdmin        bool
	Connected      bool
	IncludePrivate bool
}

// ResolveViewership works out ownership and connection state for a viewer.
// The include-private flag is honored only for the owner or an admin; for
// anyone else it is dropped rather than rejected.
func (p *VisibilityPolicy) ResolveViewership(ctx context.Context, listing *domain.Listing, actor domain.Actor, includePrivate bool) (Viewership, error) {
	v := Viewership{Actor: actor, IsAdmin: actor.IsAdmin()}

	if actor.IsSeller() {
		seller, err := p.store.Sellers().FindByUserID(ctx, actor.UserID)
		switch {
		case err == nil:
			v.IsOwner = seller.ID == listing.SellerID
		case errors.Is(err, domain.ErrNotFound):
			// an unregistered seller owns nothing
		default:
			return v, fmt.Errorf("%w: failed to resolve seller profile: %v", domain.ErrRepository, err)
		}
	}

	if actor.IsBuyer() {
		buyer, err := p.store.Buyers().FindByUserID(ctx, actor.UserID)
		switch {
		case err == nil:
			connected, err := p.store.Connections().HasApproved(ctx, buyer.ID, listing.SellerID)
			if err != nil {
				return v, fmt.Errorf("%w: failed to check connection: %v", domain.ErrRepository, err)
			}
			v.Connected = connected
		case errors.Is(err, domain.ErrNotFound):
			// no profile, no connections
		default:
			return v, fmt.Errorf("%w: failed to resolve buyer profile: %v", domain.ErrRepository, err)
		}
	}

	v.IncludePrivate = includePrivate && (v.IsOwner || v.IsAdmin)
	return v, nil
}

// EnsureDetailViewable applies the platform read rules for a single
// listing, before any masking. Unpublished listings do not exist for
// anyone but the owner and admins; sellers may never view other sellers'
// listings.
func (p *VisibilityPolicy) EnsureDetailViewable(listing *domain.Listing, v Viewership) error {
	if !listing.IsPublished() && !v.IsOwner && !v.IsAdmin {
		return fmt.Errorf("%w: listing %s", domain.ErrNotFound, listing.ID)
	}
	if v.Actor.IsSeller() && !v.IsOwner && !v.IsAdmin {
		return fmt.Errorf("%w: sellers cannot view other sellers' listings", domain.ErrForbidden)
	}
	return nil
}

// EnsureBrowseAllowed rejects seller-typed viewers from the marketplace
// feed; sellers manage their own listings through their dashboard.
func (p *VisibilityPolicy) EnsureBrowseAllowed(actor domain.Actor) error {
	if actor.IsSeller() && !actor.IsAdmin() {
		return fmt.Errorf("%w: sellers cannot browse the marketplace", domain.ErrForbidden)
	}
	return nil
}

// CanSeePrivateSections reports whether the detail sections (business
// details, financials, seller contact) are shown.
func (v Viewership) CanSeePrivateSections() bool {
	return v.IsOwner || v.IsAdmin || v.Connected
}

// CanSeePerformance reports whether view/connection/save counters are
// shown.
func (v Viewership) CanSeePerformance() bool {
	return v.IsOwner || v.IsAdmin || v.IncludePrivate
}

// priceUnmasked reports whether the viewer sees the exact asking price.
func (v Viewership) priceUnmasked(listing *domain.Listing) bool {
	if !listing.PriceMasked {
		return true
	}
	return v.IsOwner || v.IsAdmin || v.Connected || v.IncludePrivate
}

// Price bands for masked listings. Lower bounds are inclusive, upper
// bounds exclusive: 49,999 is "Under £50k", 50,000 is "£50k - £100k",
// 999,999 is "£500k - £1M" and 1,000,000 is "Over £1M".
const (
	BandUnder50k   = "Under £50k"
	Band50kTo100k  = "£50k - £100k"
	Band100kTo250k = "£100k - £250k"
	Band250kTo500k = "£250k - £500k"
	Band500kTo1M   = "£500k - £1M"
	BandOver1M     = "Over £1M"
)

func PriceBand(price int64) string {
	switch {
	case price < 50_000:
		return BandUnder50k
	case price < 100_000:
		return Band50kTo100k
	case price < 250_000:
		return Band100kTo250k
	case price < 500_000:
		return Band250kTo500k
	case price < 1_000_000:
		return Band500kTo1M
	default:
		return BandOver1M
	}
}

// formatPounds renders an exact price for display, e.g. "£1,250,000".
func formatPounds(price int64) string {
	digits := strconv.FormatInt(price, 10)
	neg := false
	if len(digits) > 0 && digits[0] == '-' {
		neg = true
		digits = digits[1:]
	}
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	if neg {
		return "-£" + string(out)
	}
	return "£" + string(out)
}

// MaskPrice builds the price block for one viewer.
func MaskPrice(listing *domain.Listing, v Viewership) PriceView {
	if v.priceUnmasked(listing) {
		price := listing.AskingPrice
		return PriceView{Masked: false, AskingPrice: &price, Display: formatPounds(price)}
	}
	return PriceView{Masked: true, Display: PriceBand(listing.AskingPrice)}
}

// Project builds the full projection for a detail read. Media always
// rides along; private sections and counters depend on the viewership.
func (p *VisibilityPolicy) Project(ctx context.Context, listing *domain.Listing, v Viewership) (*ListingProjection, error) {
	media, err := p.store.Media().ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load media: %v", domain.ErrRepository, err)
	}
	proj := p.project(listing, media, v)

	if v.CanSeePrivateSections() {
		if err := p.attachSellerContact(ctx, listing, proj); err != nil {
			return nil, err
		}
	}
	if v.CanSeePerformance() {
		if err := p.attachPerformance(ctx, listing, proj); err != nil {
			return nil, err
		}
	}
	if v.IsOwner || v.IsAdmin {
		if err := p.attachPendingEdit(ctx, listing, proj); err != nil {
			return nil, err
		}
	}
	return proj, nil
}

// ProjectPage builds projections for a page of listings with batched
// media and connection lookups.
func (p *VisibilityPolicy) ProjectPage(ctx context.Context, listings []*domain.Listing, actor domain.Actor, includePrivate bool) ([]*ListingProjection, error) {
	if len(listings) == 0 {
		return []*ListingProjection{}, nil
	}

	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	media, err := p.store.Media().ListByListings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load media: %v", domain.ErrRepository, err)
	}
	mediaByListing := make(map[string][]*domain.ListingMedia, len(listings))
	for _, m := range media {
		mediaByListing[m.ListingID] = append(mediaByListing[m.ListingID], m)
	}

	connectedSellers := map[string]bool{}
	if actor.IsBuyer() {
		buyer, err := p.store.Buyers().FindByUserID(ctx, actor.UserID)
		if err == nil {
			sellerIDs, err := p.store.Connections().ApprovedSellerIDs(ctx, buyer.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to load connections: %v", domain.ErrRepository, err)
			}
			for _, id := range sellerIDs {
				connectedSellers[id] = true
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: failed to resolve buyer profile: %v", domain.ErrRepository, err)
		}
	}

	var ownSellerID string
	if actor.IsSeller() {
		seller, err := p.store.Sellers().FindByUserID(ctx, actor.UserID)
		if err == nil {
			ownSellerID = seller.ID
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: failed to resolve seller profile: %v", domain.ErrRepository, err)
		}
	}

	projections := make([]*ListingProjection, 0, len(listings))
	for _, l := range listings {
		v := Viewership{
			Actor:     actor,
			IsAdmin:   actor.IsAdmin(),
			IsOwner:   ownSellerID != "" && ownSellerID == l.SellerID,
			Connected: connectedSellers[l.SellerID],
		}
		v.IncludePrivate = includePrivate && (v.IsOwner || v.IsAdmin)

		proj := p.project(l, mediaByListing[l.ID], v)
		if v.CanSeePerformance() {
			if err := p.attachPerformance(ctx, l, proj); err != nil {
				return nil, err
			}
		}
		if v.IsOwner || v.IsAdmin {
			if err := p.attachPendingEdit(ctx, l, proj); err != nil {
				return nil, err
			}
		}
		projections = append(projections, proj)
	}
	return projections, nil
}

func (p *VisibilityPolicy) project(listing *domain.Listing, media []*domain.ListingMedia, v Viewership) *ListingProjection {
	proj := &ListingProjection{
		ID:           listing.ID,
		SellerID:     listing.SellerID,
		Title:        listing.Title,
		Description:  listing.Description,
		PracticeType: listing.PracticeType,
		Location:     listing.Location,
		Postcode:     listing.Postcode,
		Price:        MaskPrice(listing, v),
		CreatedAt:    listing.CreatedAt,
		UpdatedAt:    listing.UpdatedAt,
		Media:        mediaViews(media),
	}
	if v.IsOwner || v.IsAdmin {
		proj.Status = string(listing.Status)
	}
	if v.CanSeePrivateSections() {
		proj.BusinessDetails = businessDetailsView(listing)
		proj.FinancialData = financialDataView(listing)
	}
	return proj
}

func (p *VisibilityPolicy) attachSellerContact(ctx context.Context, listing *domain.Listing, proj *ListingProjection) error {
	seller, err := p.store.Sellers().FindByID(ctx, listing.SellerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.logger.Warn("listing references missing seller",
				zap.String("listing_id", listing.ID), zap.String("seller_id", listing.SellerID))
			return nil
		}
		return fmt.Errorf("%w: failed to load seller: %v", domain.ErrRepository, err)
	}
	proj.Seller = &SellerContact{SellerID: seller.ID, PracticeName: seller.PracticeName, Phone: seller.Phone}
	return nil
}

func (p *VisibilityPolicy) attachPerformance(ctx context.Context, listing *domain.Listing, proj *ListingProjection) error {
	savedCount, err := p.store.Saved().CountByListing(ctx, listing.ID)
	if err != nil {
		return fmt.Errorf("%w: failed to count saves: %v", domain.ErrRepository, err)
	}
	proj.Performance = &PerformanceView{
		ViewCount:       listing.ViewCount,
		ConnectionCount: listing.ConnectionCount,
		SavedCount:      savedCount,
	}
	return nil
}

func (p *VisibilityPolicy) attachPendingEdit(ctx context.Context, listing *domain.Listing, proj *ListingProjection) error {
	edit, err := p.store.PendingEdits().FindPendingByListing(ctx, listing.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: failed to load pending edit: %v", domain.ErrRepository, err)
	}
	proj.PendingEdit = newPendingEditSummary(edit)
	return nil
}
