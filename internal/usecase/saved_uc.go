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

// SavedUsecase manages buyer bookmarks.
type SavedUsecase struct {
	store     domain.UnitOfWork
	policy    *VisibilityPolicy
	publisher domain.EventPublisher
	logger    *logger.Logger
	tracer    trace.Tracer
}

func NewSavedUsecase(store domain.UnitOfWork, policy *VisibilityPolicy, publisher domain.EventPublisher, log *logger.Logger) *SavedUsecase {
	return &SavedUsecase{
		store:     store,
		policy:    policy,
		publisher: publisher,
		logger:    log.Named("SavedUsecase"),
		tracer:    otel.Tracer("usecase/saved"),
	}
}

// Save bookmarks a published listing for the calling buyer. Saving twice
// returns the same bookmark; a non-empty note on a repeat save replaces
// the stored note.
func (uc *SavedUsecase) Save(ctx context.Context, actor domain.Actor, listingID, note string) (*domain.SavedListing, error) {
	ctx, span := uc.tracer.Start(ctx, "Save")
	defer span.End()

	buyer, err := uc.resolveBuyer(ctx, actor)
	if err != nil {
		return nil, err
	}

	listing, err := uc.store.Listings().FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsPublished() {
		return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, listingID)
	}

	var (
		saved   *domain.SavedListing
		created bool
	)
	err = uc.store.Within(ctx, func(r domain.Repositories) error {
		existing, err := r.Saved().FindByBuyerAndListing(ctx, buyer.ID, listingID)
		switch {
		case err == nil:
			if note != "" && note != existing.Note {
				existing.Note = note
				if err := r.Saved().Update(ctx, existing); err != nil {
					return fmt.Errorf("%w: failed to update saved listing: %v", domain.ErrRepository, err)
				}
			}
			saved = existing
			return nil
		case errors.Is(err, domain.ErrNotFound):
			saved, err = domain.NewSavedListing(buyer.ID, listingID, note)
			if err != nil {
				return err
			}
			if err := r.Saved().Create(ctx, saved); err != nil {
				return fmt.Errorf("%w: failed to save listing: %v", domain.ErrRepository, err)
			}
			created = true
			return nil
		default:
			return fmt.Errorf("%w: failed to load saved listing: %v", domain.ErrRepository, err)
		}
	})
	if err != nil {
		uc.logger.Error("failed to save listing", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}

	if created {
		uc.logger.Info("listing saved", zap.String("listing_id", listingID), zap.String("buyer_id", buyer.ID))
		uc.publish(ctx, SubjectListingSaved, ListingEvent{
			ListingID: listingID, SellerID: listing.SellerID, OccurredAt: time.Now().UTC(),
		})
	}
	return saved, nil
}

// Unsave removes the bookmark; NotFound when it does not exist.
func (uc *SavedUsecase) Unsave(ctx context.Context, actor domain.Actor, listingID string) error {
	ctx, span := uc.tracer.Start(ctx, "Unsave")
	defer span.End()

	buyer, err := uc.resolveBuyer(ctx, actor)
	if err != nil {
		return err
	}

	err = uc.store.Within(ctx, func(r domain.Repositories) error {
		return r.Saved().Delete(ctx, buyer.ID, listingID)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.logger.Error("failed to unsave listing", zap.String("listing_id", listingID), zap.Error(err))
		}
		return err
	}
	uc.logger.Info("listing unsaved", zap.String("listing_id", listingID), zap.String("buyer_id", buyer.ID))
	return nil
}

// SavedItem is one bookmark joined with its listing projection. Listings
// that have been unpublished since saving come back as unavailable
// placeholders instead of leaking their details.
type SavedItem struct {
	ID        string             `json:"id"`
	ListingID string             `json:"listing_id"`
	Note      string             `json:"note,omitempty"`
	SavedAt   time.Time          `json:"saved_at"`
	Available bool               `json:"available"`
	Listing   *ListingProjection `json:"listing,omitempty"`
}

// ListSaved pages the buyer's bookmarks, newest first.
func (uc *SavedUsecase) ListSaved(ctx context.Context, actor domain.Actor, page, perPage int) ([]SavedItem, domain.Pagination, error) {
	ctx, span := uc.tracer.Start(ctx, "ListSaved")
	defer span.End()

	buyer, err := uc.resolveBuyer(ctx, actor)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > domain.MaxPerPage {
		perPage = domain.DefaultPerPage
	}

	saved, total, err := uc.store.Saved().ListByBuyer(ctx, buyer.ID, page, perPage)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("%w: failed to list saved listings: %v", domain.ErrRepository, err)
	}

	ids := make([]string, 0, len(saved))
	for _, s := range saved {
		ids = append(ids, s.ListingID)
	}

	available := make([]*domain.Listing, 0, len(ids))
	if len(ids) > 0 {
		listings, err := uc.store.Listings().FindByIDs(ctx, ids)
		if err != nil {
			return nil, domain.Pagination{}, fmt.Errorf("%w: failed to load listings: %v", domain.ErrRepository, err)
		}
		for _, l := range listings {
			if l.IsPublished() {
				available = append(available, l)
			}
		}
	}

	projections, err := uc.policy.ProjectPage(ctx, available, actor, false)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	byID := make(map[string]*ListingProjection, len(projections))
	for _, p := range projections {
		byID[p.ID] = p
	}

	items := make([]SavedItem, 0, len(saved))
	for _, s := range saved {
		proj := byID[s.ListingID]
		items = append(items, SavedItem{
			ID:        s.ID,
			ListingID: s.ListingID,
			Note:      s.Note,
			SavedAt:   s.CreatedAt,
			Available: proj != nil,
			Listing:   proj,
		})
	}
	return items, domain.NewPagination(page, perPage, total), nil
}

func (uc *SavedUsecase) resolveBuyer(ctx context.Context, actor domain.Actor) (*domain.Buyer, error) {
	if !actor.IsBuyer() {
		return nil, fmt.Errorf("%w: buyer role required", domain.ErrForbidden)
	}
	buyer, err := uc.store.Buyers().FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: buyer profile not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to resolve buyer profile: %v", domain.ErrRepository, err)
	}
	return buyer, nil
}

func (uc *SavedUsecase) publish(ctx context.Context, subject string, event any) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
