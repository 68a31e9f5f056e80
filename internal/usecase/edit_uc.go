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

// EditUsecase serves the staged-edit review side: reading the diff,
// applying it, rejecting it, and the moderation queue.
type EditUsecase struct {
	store     domain.UnitOfWork
	cache     domain.ListingCache
	index     domain.ListingIndex
	publisher domain.EventPublisher
	logger    *logger.Logger
	tracer    trace.Tracer
}

func NewEditUsecase(
	store domain.UnitOfWork,
	cache domain.ListingCache,
	index domain.ListingIndex,
	publisher domain.EventPublisher,
	log *logger.Logger,
) *EditUsecase {
	return &EditUsecase{
		store:     store,
		cache:     cache,
		index:     index,
		publisher: publisher,
		logger:    log.Named("EditUsecase"),
		tracer:    otel.Tracer("usecase/edit"),
	}
}

// EditReview is a pending edit rendered for review: one row per changed
// field with the live current value next to the proposed one.
type EditReview struct {
	ID          string               `json:"id"`
	ListingID   string               `json:"listing_id"`
	Status      string               `json:"status"`
	Reason      string               `json:"reason,omitempty"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Changes     []domain.FieldChange `json:"changes"`
}

// GetPendingEdit returns the review view of a listing's pending edit.
// Owner and admins only; NotFound when nothing is staged.
func (uc *EditUsecase) GetPendingEdit(ctx context.Context, actor domain.Actor, listingID string) (*EditReview, error) {
	ctx, span := uc.tracer.Start(ctx, "GetPendingEdit")
	defer span.End()

	listing, err := uc.store.Listings().FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := uc.authorizeReview(ctx, actor, listing); err != nil {
		return nil, err
	}

	edit, err := uc.store.PendingEdits().FindPendingByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	return &EditReview{
		ID:          edit.ID,
		ListingID:   edit.ListingID,
		Status:      string(edit.Status),
		Reason:      edit.Reason,
		SubmittedAt: edit.UpdatedAt,
		Changes:     pendingEditRows(listing, edit),
	}, nil
}

// ApplyPendingEdit writes the staged delta onto the listing and closes
// the edit as approved, in one transaction. Admin only.
func (uc *EditUsecase) ApplyPendingEdit(ctx context.Context, actor domain.Actor, listingID, note string) (*domain.Listing, error) {
	ctx, span := uc.tracer.Start(ctx, "ApplyPendingEdit")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: applying edits requires admin role", domain.ErrForbidden)
	}

	var (
		listing *domain.Listing
		edit    *domain.PendingEdit
	)
	err := uc.store.Within(ctx, func(r domain.Repositories) error {
		var err error
		listing, err = r.Listings().FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		edit, err = r.PendingEdits().FindPendingByListing(ctx, listingID)
		if err != nil {
			return err
		}

		if err := applyListingChanges(listing, edit.Changes); err != nil {
			return err
		}
		listing.UpdatedAt = time.Now().UTC()
		if err := r.Listings().Update(ctx, listing); err != nil {
			return fmt.Errorf("%w: failed to update listing: %v", domain.ErrRepository, err)
		}

		edit.MarkReviewed(domain.EditStatusApproved, actor.UserID, note)
		if err := r.PendingEdits().Update(ctx, edit); err != nil {
			return fmt.Errorf("%w: failed to close pending edit: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to apply pending edit", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}

	uc.invalidate(ctx, listingID)
	uc.syncIndex(ctx, listing)

	uc.logger.Info("pending edit applied",
		zap.String("listing_id", listingID), zap.String("edit_id", edit.ID))
	uc.publish(ctx, SubjectEditApplied, EditEvent{
		EditID: edit.ID, ListingID: listingID, SellerID: edit.SellerID,
		Fields: sortedKeys(edit.Changes), OccurredAt: time.Now().UTC(),
	})
	return listing, nil
}

// RejectPendingEdit closes the edit as rejected with the moderator's
// note; the listing keeps its live values. Admin only.
func (uc *EditUsecase) RejectPendingEdit(ctx context.Context, actor domain.Actor, listingID, note string) error {
	ctx, span := uc.tracer.Start(ctx, "RejectPendingEdit")
	defer span.End()

	if !actor.IsAdmin() {
		return fmt.Errorf("%w: rejecting edits requires admin role", domain.ErrForbidden)
	}

	var edit *domain.PendingEdit
	err := uc.store.Within(ctx, func(r domain.Repositories) error {
		var err error
		edit, err = r.PendingEdits().FindPendingByListing(ctx, listingID)
		if err != nil {
			return err
		}
		edit.MarkReviewed(domain.EditStatusRejected, actor.UserID, note)
		if err := r.PendingEdits().Update(ctx, edit); err != nil {
			return fmt.Errorf("%w: failed to close pending edit: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to reject pending edit", zap.String("listing_id", listingID), zap.Error(err))
		return err
	}

	uc.logger.Info("pending edit rejected",
		zap.String("listing_id", listingID), zap.String("edit_id", edit.ID))
	uc.publish(ctx, SubjectEditRejected, EditEvent{
		EditID: edit.ID, ListingID: listingID, SellerID: edit.SellerID, OccurredAt: time.Now().UTC(),
	})
	return nil
}

// EditQueueItem is one row of the moderation queue.
type EditQueueItem struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title,omitempty"`
	SellerID     string    `json:"seller_id"`
	Reason       string    `json:"reason,omitempty"`
	Fields       []string  `json:"fields"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// ListPendingEdits pages the moderation queue, oldest first. Admin only.
func (uc *EditUsecase) ListPendingEdits(ctx context.Context, actor domain.Actor, page, perPage int) ([]EditQueueItem, domain.Pagination, error) {
	ctx, span := uc.tracer.Start(ctx, "ListPendingEdits")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, domain.Pagination{}, fmt.Errorf("%w: the moderation queue requires admin role", domain.ErrForbidden)
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > domain.MaxPerPage {
		perPage = domain.DefaultPerPage
	}

	edits, total, err := uc.store.PendingEdits().ListPending(ctx, page, perPage)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("%w: failed to list pending edits: %v", domain.ErrRepository, err)
	}

	ids := make([]string, 0, len(edits))
	for _, e := range edits {
		ids = append(ids, e.ListingID)
	}
	titles := map[string]string{}
	if len(ids) > 0 {
		listings, err := uc.store.Listings().FindByIDs(ctx, ids)
		if err != nil {
			return nil, domain.Pagination{}, fmt.Errorf("%w: failed to load listings: %v", domain.ErrRepository, err)
		}
		for _, l := range listings {
			titles[l.ID] = l.Title
		}
	}

	items := make([]EditQueueItem, 0, len(edits))
	for _, e := range edits {
		items = append(items, EditQueueItem{
			ID:           e.ID,
			ListingID:    e.ListingID,
			ListingTitle: titles[e.ListingID],
			SellerID:     e.SellerID,
			Reason:       e.Reason,
			Fields:       sortedKeys(e.Changes),
			SubmittedAt:  e.UpdatedAt,
		})
	}
	return items, domain.NewPagination(page, perPage, total), nil
}

func (uc *EditUsecase) authorizeReview(ctx context.Context, actor domain.Actor, listing *domain.Listing) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsSeller() {
		seller, err := uc.store.Sellers().FindByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: staged edits are visible to the owner only", domain.ErrForbidden)
			}
			return fmt.Errorf("%w: failed to resolve seller profile: %v", domain.ErrRepository, err)
		}
		if seller.ID == listing.SellerID {
			return nil
		}
	}
	return fmt.Errorf("%w: staged edits are visible to the owner only", domain.ErrForbidden)
}

func (uc *EditUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warn("listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}

func (uc *EditUsecase) syncIndex(ctx context.Context, listing *domain.Listing) {
	if uc.index == nil || listing == nil {
		return
	}
	var err error
	if listing.IsPublished() {
		err = uc.index.IndexListing(ctx, listing)
	} else {
		err = uc.index.RemoveListing(ctx, listing.ID)
	}
	if err != nil {
		uc.logger.Warn("search index sync failed", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

func (uc *EditUsecase) publish(ctx context.Context, subject string, event any) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
