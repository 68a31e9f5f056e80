package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Trailing windows for the summary, in days.
const (
	viewWindowTotal = 365
	viewWindowMonth = 30
	viewWindowWeek  = 7

	viewerLocationCap = 50
)

// AnalyticsUsecase ingests view events and computes per-listing
// performance summaries live from the event log.
type AnalyticsUsecase struct {
	store  domain.UnitOfWork
	logger *logger.Logger
	tracer trace.Tracer
}

func NewAnalyticsUsecase(store domain.UnitOfWork, log *logger.Logger) *AnalyticsUsecase {
	return &AnalyticsUsecase{
		store:  store,
		logger: log.Named("AnalyticsUsecase"),
		tracer: otel.Tracer("usecase/analytics"),
	}
}

// AnalyticsSummary is the owner-facing performance report for one
// listing. UniqueViews counts distinct authenticated viewers and can
// never exceed TotalViews.
type AnalyticsSummary struct {
	ListingID           string                  `json:"listing_id"`
	TotalViews          int64                   `json:"total_views"`
	UniqueViews         int64                   `json:"unique_views"`
	ViewsThisWeek       int64                   `json:"views_this_week"`
	ViewsThisMonth      int64                   `json:"views_this_month"`
	ViewTrend           []domain.DailyViewCount `json:"view_trend"`
	ViewerLocations     []ViewerLocation        `json:"viewer_locations"`
	ApprovedConnections int64                   `json:"approved_connections"`
}

// ViewerLocation is one distinct recent viewer with their lifetime view
// count for the listing and last-seen client metadata.
type ViewerLocation struct {
	ViewerID     string    `json:"viewer_id"`
	Views        int64     `json:"views"`
	Country      string    `json:"country,omitempty"`
	City         string    `json:"city,omitempty"`
	IP           string    `json:"ip,omitempty"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

// Summarize builds the analytics report. Only the owning seller and
// admins may read it.
func (uc *AnalyticsUsecase) Summarize(ctx context.Context, actor domain.Actor, listingID string) (*AnalyticsSummary, error) {
	ctx, span := uc.tracer.Start(ctx, "Summarize")
	defer span.End()

	listing, err := uc.store.Listings().FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := uc.authorize(ctx, actor, listing); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	yearAgo := now.AddDate(0, 0, -viewWindowTotal)
	monthAgo := now.AddDate(0, 0, -viewWindowMonth)
	weekAgo := now.AddDate(0, 0, -viewWindowWeek)

	views := uc.store.Views()

	total, err := views.CountSince(ctx, listingID, yearAgo)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count views: %v", domain.ErrRepository, err)
	}
	unique, err := views.CountDistinctViewersSince(ctx, listingID, yearAgo)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count unique views: %v", domain.ErrRepository, err)
	}
	week, err := views.CountSince(ctx, listingID, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count weekly views: %v", domain.ErrRepository, err)
	}
	month, err := views.CountSince(ctx, listingID, monthAgo)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count monthly views: %v", domain.ErrRepository, err)
	}
	trend, err := views.DailyCountsSince(ctx, listingID, monthAgo)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load view trend: %v", domain.ErrRepository, err)
	}

	locations, err := uc.viewerLocations(ctx, listingID, monthAgo)
	if err != nil {
		return nil, err
	}

	approved, err := uc.store.Connections().CountApprovedByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count connections: %v", domain.ErrRepository, err)
	}

	if trend == nil {
		trend = []domain.DailyViewCount{}
	}
	return &AnalyticsSummary{
		ListingID:           listingID,
		TotalViews:          total,
		UniqueViews:         unique,
		ViewsThisWeek:       week,
		ViewsThisMonth:      month,
		ViewTrend:           trend,
		ViewerLocations:     locations,
		ApprovedConnections: approved,
	}, nil
}

// viewerLocations reduces the most recent authenticated view events to
// one row per distinct viewer, most recent first, with lifetime counts.
func (uc *AnalyticsUsecase) viewerLocations(ctx context.Context, listingID string, since time.Time) ([]ViewerLocation, error) {
	recent, err := uc.store.Views().RecentAuthenticatedSince(ctx, listingID, since, viewerLocationCap)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load recent views: %v", domain.ErrRepository, err)
	}
	if len(recent) == 0 {
		return []ViewerLocation{}, nil
	}

	seen := make(map[string]*domain.ListingView, len(recent))
	order := make([]string, 0, len(recent))
	for _, v := range recent {
		if v.ViewerID == nil {
			continue
		}
		if _, ok := seen[*v.ViewerID]; ok {
			continue
		}
		seen[*v.ViewerID] = v
		order = append(order, *v.ViewerID)
	}
	if len(order) == 0 {
		return []ViewerLocation{}, nil
	}

	counts, err := uc.store.Views().CountByViewers(ctx, listingID, order)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count viewer views: %v", domain.ErrRepository, err)
	}

	locations := make([]ViewerLocation, 0, len(order))
	for _, viewerID := range order {
		v := seen[viewerID]
		locations = append(locations, ViewerLocation{
			ViewerID:     viewerID,
			Views:        counts[viewerID],
			Country:      v.Country,
			City:         v.City,
			IP:           v.IP,
			LastViewedAt: v.CreatedAt,
		})
	}
	return locations, nil
}

// TrackView appends a view event and bumps the listing's counter in one
// transaction. Callers treat failures as non-fatal.
func (uc *AnalyticsUsecase) TrackView(ctx context.Context, listing *domain.Listing, actor domain.Actor, geo domain.ViewerGeo) error {
	var viewerID *string
	if !actor.IsAnonymous() {
		id := actor.UserID
		viewerID = &id
	}
	view := domain.NewListingView(listing.ID, viewerID, geo)

	err := uc.store.Within(ctx, func(r domain.Repositories) error {
		if err := r.Views().Insert(ctx, view); err != nil {
			return fmt.Errorf("%w: failed to insert view: %v", domain.ErrRepository, err)
		}
		if err := r.Listings().IncrementViewCount(ctx, listing.ID); err != nil {
			return fmt.Errorf("%w: failed to increment view count: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.Debug("view tracked", zap.String("listing_id", listing.ID), zap.Bool("authenticated", viewerID != nil))
	return nil
}

func (uc *AnalyticsUsecase) authorize(ctx context.Context, actor domain.Actor, listing *domain.Listing) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsSeller() {
		seller, err := uc.store.Sellers().FindByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: analytics are visible to the owner only", domain.ErrForbidden)
			}
			return fmt.Errorf("%w: failed to resolve seller profile: %v", domain.ErrRepository, err)
		}
		if seller.ID == listing.SellerID {
			return nil
		}
	}
	return fmt.Errorf("%w: analytics are visible to the owner only", domain.ErrForbidden)
}
