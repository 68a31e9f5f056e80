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

// Outcome messages for the update flow. Exactly one is returned per
// update; the first matching branch wins.
const (
	MsgSubmitted = "Listing submitted for approval."
	MsgReverted  = "Listing reverted to draft."
	MsgStaged    = "Changes submitted for review. Your listing remains live with its current details until the changes are approved."
	MsgUpdated   = "Listing updated."
	MsgNoChanges = "No changes detected."
)

// ListingUsecase orchestrates the listing lifecycle over the store, the
// visibility policy and the staging engine.
type ListingUsecase struct {
	store     domain.UnitOfWork
	policy    *VisibilityPolicy
	analytics *AnalyticsUsecase
	cache     domain.ListingCache
	index     domain.ListingIndex
	storage   domain.MediaStorage
	publisher domain.EventPublisher
	logger    *logger.Logger
	tracer    trace.Tracer
}

func NewListingUsecase(
	store domain.UnitOfWork,
	policy *VisibilityPolicy,
	analytics *AnalyticsUsecase,
	cache domain.ListingCache,
	index domain.ListingIndex,
	storage domain.MediaStorage,
	publisher domain.EventPublisher,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		store:     store,
		policy:    policy,
		analytics: analytics,
		cache:     cache,
		index:     index,
		storage:   storage,
		publisher: publisher,
		logger:    log.Named("ListingUsecase"),
		tracer:    otel.Tracer("usecase/listing"),
	}
}

// CreateListingInput carries a new listing's fields. The two group maps
// are validated through the same field registry as updates.
type CreateListingInput struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	PracticeType    string         `json:"practice_type"`
	Location        string         `json:"location"`
	Postcode        string         `json:"postcode"`
	AskingPrice     int64          `json:"asking_price"`
	PriceMasked     bool           `json:"price_masked"`
	SubmitNow       bool           `json:"submit_now"`
	BusinessDetails map[string]any `json:"business_details"`
	FinancialData   map[string]any `json:"financial_data"`
}

// CreateListing creates a draft (or, with SubmitNow, a pending-approval)
// listing for the calling seller and returns the owner's projection.
func (uc *ListingUsecase) CreateListing(ctx context.Context, actor domain.Actor, in CreateListingInput) (*ListingProjection, error) {
	ctx, span := uc.tracer.Start(ctx, "CreateListing")
	defer span.End()

	seller, err := uc.resolveSeller(ctx, actor)
	if err != nil {
		return nil, err
	}

	listing, err := domain.NewListing(domain.NewListingParams{
		SellerID:     seller.ID,
		Title:        in.Title,
		Description:  in.Description,
		PracticeType: in.PracticeType,
		Location:     in.Location,
		Postcode:     in.Postcode,
		AskingPrice:  in.AskingPrice,
		PriceMasked:  in.PriceMasked,
	})
	if err != nil {
		return nil, err
	}

	groups := map[string]any{}
	if len(in.BusinessDetails) > 0 {
		groups[domain.GroupBusinessDetails] = in.BusinessDetails
	}
	if len(in.FinancialData) > 0 {
		groups[domain.GroupFinancialData] = in.FinancialData
	}
	if len(groups) > 0 {
		if err := applyListingChanges(listing, groups); err != nil {
			return nil, err
		}
	}

	submitted := false
	if in.SubmitNow {
		submitted = listing.SubmitForApproval()
	}

	err = uc.store.Within(ctx, func(r domain.Repositories) error {
		if err := r.Listings().Create(ctx, listing); err != nil {
			return fmt.Errorf("%w: failed to create listing: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to create listing", zap.Error(err), zap.String("seller_id", seller.ID))
		return nil, err
	}

	uc.logger.Info("listing created",
		zap.String("listing_id", listing.ID),
		zap.String("seller_id", seller.ID),
		zap.String("status", string(listing.Status)))

	uc.publish(ctx, SubjectListingCreated, ListingEvent{
		ListingID: listing.ID, SellerID: seller.ID, Status: string(listing.Status), OccurredAt: time.Now().UTC(),
	})
	if submitted {
		uc.publish(ctx, SubjectListingSubmitted, ListingEvent{
			ListingID: listing.ID, SellerID: seller.ID, Status: string(listing.Status), OccurredAt: time.Now().UTC(),
		})
	}

	return uc.policy.Project(ctx, listing, Viewership{
		Actor:          actor,
		IsOwner:        true,
		IncludePrivate: true,
	})
}

// GetListing returns the projection of a listing for the given viewer
// and records the view for non-owner, non-admin reads.
func (uc *ListingUsecase) GetListing(ctx context.Context, actor domain.Actor, id string, includePrivate bool, geo domain.ViewerGeo) (*ListingProjection, error) {
	ctx, span := uc.tracer.Start(ctx, "GetListing")
	defer span.End()

	listing, err := uc.fetchListing(ctx, id)
	if err != nil {
		return nil, err
	}

	viewership, err := uc.policy.ResolveViewership(ctx, listing, actor, includePrivate)
	if err != nil {
		return nil, err
	}
	if err := uc.policy.EnsureDetailViewable(listing, viewership); err != nil {
		return nil, err
	}

	proj, err := uc.policy.Project(ctx, listing, viewership)
	if err != nil {
		return nil, err
	}

	if !viewership.IsOwner && !viewership.IsAdmin {
		if err := uc.analytics.TrackView(ctx, listing, actor, geo); err != nil {
			// view tracking never fails a read
			uc.logger.Warn("failed to track view", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return proj, nil
}

// UpdatePatch is the seller's edit submission: an optional draft-state
// toggle plus the fields to change.
type UpdatePatch struct {
	IsDraft *bool
	Reason  string
	Fields  map[string]any
}

// UpdateOutcome reports what an update did. RequiresApproval is true
// exactly when the fields were staged for review instead of applied.
type UpdateOutcome struct {
	ListingID        string `json:"listing_id"`
	Status           string `json:"status"`
	Message          string `json:"message"`
	StatusChanged    bool   `json:"status_changed"`
	RequiresApproval bool   `json:"requires_approval"`
}

// UpdateListing runs the seller edit flow: optional state transition
// first, then the remaining fields either apply directly (drafts) or go
// through staging (everything else). The whole flow is one transaction.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, actor domain.Actor, id string, patch UpdatePatch) (*UpdateOutcome, error) {
	ctx, span := uc.tracer.Start(ctx, "UpdateListing")
	defer span.End()

	seller, err := uc.resolveSeller(ctx, actor)
	if err != nil {
		return nil, err
	}

	var (
		outcome *UpdateOutcome
		listing *domain.Listing
		staged  *domain.PendingEdit
	)
	err = uc.store.Within(ctx, func(r domain.Repositories) error {
		var err error
		listing, err = r.Listings().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if listing.SellerID != seller.ID {
			return fmt.Errorf("%w: listing belongs to another seller", domain.ErrForbidden)
		}

		statusChanged := false
		if patch.IsDraft != nil {
			if *patch.IsDraft {
				statusChanged = listing.RevertToDraft()
			} else {
				statusChanged = listing.SubmitForApproval()
			}
		}

		fieldsApplied := false
		if len(patch.Fields) > 0 {
			if listing.IsDraft() {
				delta, err := diffListingFields(listing, patch.Fields)
				if err != nil {
					return err
				}
				if len(delta) > 0 {
					if err := applyListingChanges(listing, delta); err != nil {
						return err
					}
					fieldsApplied = true
				}
			} else {
				staged, err = stageListingChanges(ctx, r, listing, patch.Fields, patch.Reason)
				if err != nil {
					return err
				}
			}
		}

		if statusChanged || fieldsApplied {
			listing.UpdatedAt = time.Now().UTC()
			if err := r.Listings().Update(ctx, listing); err != nil {
				return fmt.Errorf("%w: failed to update listing: %v", domain.ErrRepository, err)
			}
		}

		outcome = composeOutcome(listing, statusChanged, staged != nil, fieldsApplied)
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to update listing", zap.String("listing_id", id), zap.Error(err))
		return nil, err
	}

	uc.invalidate(ctx, id)
	uc.syncIndex(ctx, listing)

	uc.logger.Info("listing update processed",
		zap.String("listing_id", id),
		zap.Bool("status_changed", outcome.StatusChanged),
		zap.Bool("requires_approval", outcome.RequiresApproval))

	switch {
	case outcome.StatusChanged && listing.Status == domain.StatusPendingApproval:
		uc.publish(ctx, SubjectListingSubmitted, ListingEvent{
			ListingID: id, SellerID: seller.ID, Status: string(listing.Status), OccurredAt: time.Now().UTC(),
		})
	case staged != nil:
		uc.publish(ctx, SubjectEditStaged, EditEvent{
			EditID: staged.ID, ListingID: id, SellerID: seller.ID,
			Fields: sortedKeys(staged.Changes), OccurredAt: time.Now().UTC(),
		})
	default:
		uc.publish(ctx, SubjectListingUpdated, ListingEvent{
			ListingID: id, SellerID: seller.ID, Status: string(listing.Status), OccurredAt: time.Now().UTC(),
		})
	}
	return outcome, nil
}

func composeOutcome(listing *domain.Listing, statusChanged, staged, fieldsApplied bool) *UpdateOutcome {
	out := &UpdateOutcome{
		ListingID:        listing.ID,
		Status:           string(listing.Status),
		StatusChanged:    statusChanged,
		RequiresApproval: staged,
	}
	switch {
	case statusChanged && listing.Status == domain.StatusPendingApproval:
		out.Message = MsgSubmitted
	case statusChanged && listing.Status == domain.StatusDraft:
		out.Message = MsgReverted
	case staged:
		out.Message = MsgStaged
	case fieldsApplied:
		out.Message = MsgUpdated
	default:
		out.Message = MsgNoChanges
	}
	return out
}

// DeleteListing removes a listing and its dependents. Deletion is
// refused while approved connections exist; view events are kept as
// history.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := uc.tracer.Start(ctx, "DeleteListing")
	defer span.End()

	var ownSellerID string
	if !actor.IsAdmin() {
		seller, err := uc.resolveSeller(ctx, actor)
		if err != nil {
			return err
		}
		ownSellerID = seller.ID
	}

	var (
		listing *domain.Listing
		media   []*domain.ListingMedia
	)
	err := uc.store.Within(ctx, func(r domain.Repositories) error {
		var err error
		listing, err = r.Listings().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && listing.SellerID != ownSellerID {
			return fmt.Errorf("%w: listing belongs to another seller", domain.ErrForbidden)
		}

		approved, err := r.Connections().CountApprovedByListing(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: failed to count connections: %v", domain.ErrRepository, err)
		}
		if approved > 0 {
			return fmt.Errorf("%w: listing has %d approved connections", domain.ErrConflict, approved)
		}

		media, err = r.Media().ListByListing(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: failed to load media: %v", domain.ErrRepository, err)
		}

		if err := r.PendingEdits().DeleteByListing(ctx, id); err != nil {
			return fmt.Errorf("%w: failed to delete pending edits: %v", domain.ErrRepository, err)
		}
		if err := r.Saved().DeleteByListing(ctx, id); err != nil {
			return fmt.Errorf("%w: failed to delete saved listings: %v", domain.ErrRepository, err)
		}
		if err := r.Connections().DeleteByListing(ctx, id); err != nil {
			return fmt.Errorf("%w: failed to delete connections: %v", domain.ErrRepository, err)
		}
		if err := r.Media().DeleteByListing(ctx, id); err != nil {
			return fmt.Errorf("%w: failed to delete media: %v", domain.ErrRepository, err)
		}
		if err := r.Listings().Delete(ctx, id); err != nil {
			return fmt.Errorf("%w: failed to delete listing: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return err
	}

	uc.invalidate(ctx, id)
	if uc.index != nil {
		if err := uc.index.RemoveListing(ctx, id); err != nil {
			uc.logger.Warn("failed to remove listing from search index", zap.String("listing_id", id), zap.Error(err))
		}
	}
	if uc.storage != nil {
		for _, m := range media {
			if err := uc.storage.Remove(ctx, m.ObjectKey); err != nil {
				uc.logger.Warn("failed to remove media object",
					zap.String("listing_id", id), zap.String("object_key", m.ObjectKey), zap.Error(err))
			}
		}
	}

	uc.logger.Info("listing deleted", zap.String("listing_id", id))
	uc.publish(ctx, SubjectListingDeleted, ListingEvent{
		ListingID: id, SellerID: listing.SellerID, OccurredAt: time.Now().UTC(),
	})
	return nil
}

// BrowseListings is the marketplace feed. Buyers and anonymous viewers
// see published listings only; sellers are rejected outright; admins may
// filter any status. Free-text queries use the search index when one is
// configured, falling back to the store.
func (uc *ListingUsecase) BrowseListings(ctx context.Context, actor domain.Actor, filter domain.ListingFilter) ([]*ListingProjection, domain.Pagination, error) {
	ctx, span := uc.tracer.Start(ctx, "BrowseListings")
	defer span.End()

	if err := uc.policy.EnsureBrowseAllowed(actor); err != nil {
		return nil, domain.Pagination{}, err
	}

	filter.SellerID = ""
	if !actor.IsAdmin() {
		filter.Status = domain.StatusPublished
	}
	filter.Normalize()

	listings, total, err := uc.searchListings(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	projections, err := uc.policy.ProjectPage(ctx, listings, actor, false)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return projections, domain.NewPagination(filter.Page, filter.PerPage, total), nil
}

// MyListings is the seller dashboard: own listings of any status with
// exact prices and counters.
func (uc *ListingUsecase) MyListings(ctx context.Context, actor domain.Actor, filter domain.ListingFilter) ([]*ListingProjection, domain.Pagination, error) {
	ctx, span := uc.tracer.Start(ctx, "MyListings")
	defer span.End()

	seller, err := uc.resolveSeller(ctx, actor)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	filter.SellerID = seller.ID
	filter.Query = ""
	filter.Normalize()

	listings, total, err := uc.store.Listings().FindByFilter(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("%w: failed to list listings: %v", domain.ErrRepository, err)
	}
	projections, err := uc.policy.ProjectPage(ctx, listings, actor, true)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return projections, domain.NewPagination(filter.Page, filter.PerPage, total), nil
}

// ApproveListing publishes a pending submission. Admin only.
func (uc *ListingUsecase) ApproveListing(ctx context.Context, actor domain.Actor, id, note string) error {
	return uc.moderateListing(ctx, actor, id, note, true)
}

// RejectListing sends a pending submission back to draft with the
// moderator's note. Admin only.
func (uc *ListingUsecase) RejectListing(ctx context.Context, actor domain.Actor, id, note string) error {
	return uc.moderateListing(ctx, actor, id, note, false)
}

func (uc *ListingUsecase) moderateListing(ctx context.Context, actor domain.Actor, id, note string, approve bool) error {
	ctx, span := uc.tracer.Start(ctx, "ModerateListing")
	defer span.End()

	if !actor.IsAdmin() {
		return fmt.Errorf("%w: moderation requires admin role", domain.ErrForbidden)
	}

	var listing *domain.Listing
	err := uc.store.Within(ctx, func(r domain.Repositories) error {
		var err error
		listing, err = r.Listings().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if listing.Status != domain.StatusPendingApproval {
			return fmt.Errorf("%w: listing is not awaiting approval", domain.ErrConflict)
		}
		if approve {
			listing.Status = domain.StatusPublished
		} else {
			listing.Status = domain.StatusDraft
		}
		if note != "" {
			listing.AdminNotes = note
		}
		listing.UpdatedAt = time.Now().UTC()
		if err := r.Listings().Update(ctx, listing); err != nil {
			return fmt.Errorf("%w: failed to update listing: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to moderate listing", zap.String("listing_id", id), zap.Bool("approve", approve), zap.Error(err))
		return err
	}

	uc.invalidate(ctx, id)
	uc.syncIndex(ctx, listing)

	subject := SubjectListingApproved
	if !approve {
		subject = SubjectListingRejected
	}
	uc.logger.Info("listing moderated",
		zap.String("listing_id", id), zap.String("status", string(listing.Status)))
	uc.publish(ctx, subject, ListingEvent{
		ListingID: id, SellerID: listing.SellerID, Status: string(listing.Status), OccurredAt: time.Now().UTC(),
	})
	return nil
}

// fetchListing reads through the cache. Cache failures degrade to the
// store, never to an error.
func (uc *ListingUsecase) fetchListing(ctx context.Context, id string) (*domain.Listing, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("listing cache read failed", zap.String("listing_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	listing, err := uc.store.Listings().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetListing(ctx, listing); err != nil {
			uc.logger.Warn("listing cache write failed", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return listing, nil
}

func (uc *ListingUsecase) searchListings(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, int64, error) {
	if uc.indexServes(filter) {
		ids, total, err := uc.index.SearchIDs(ctx, filter)
		if err == nil {
			listings, err := uc.store.Listings().FindByIDs(ctx, ids)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: failed to hydrate search results: %v", domain.ErrRepository, err)
			}
			return orderByIDs(listings, ids), total, nil
		}
		uc.logger.Warn("search index query failed, falling back to store", zap.Error(err))
	}

	listings, total, err := uc.store.Listings().FindByFilter(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to list listings: %v", domain.ErrRepository, err)
	}
	return listings, total, nil
}

// indexServes reports whether the search index can answer the filter.
// The index only holds published listings and cannot express the
// location substring match, so those shapes stay on the store.
func (uc *ListingUsecase) indexServes(filter domain.ListingFilter) bool {
	return uc.index != nil &&
		filter.Query != "" &&
		filter.Location == "" &&
		filter.SellerID == "" &&
		filter.Status == domain.StatusPublished
}

// orderByIDs restores the index's ranking after hydration.
func orderByIDs(listings []*domain.Listing, ids []string) []*domain.Listing {
	byID := make(map[string]*domain.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	ordered := make([]*domain.Listing, 0, len(listings))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}
	return ordered
}

func (uc *ListingUsecase) resolveSeller(ctx context.Context, actor domain.Actor) (*domain.Seller, error) {
	if !actor.IsSeller() {
		return nil, fmt.Errorf("%w: seller role required", domain.ErrForbidden)
	}
	seller, err := uc.store.Sellers().FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: seller profile not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to resolve seller profile: %v", domain.ErrRepository, err)
	}
	return seller, nil
}

func (uc *ListingUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warn("listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}

// syncIndex keeps the search index in line with the listing's status:
// published listings are indexed, everything else is removed.
func (uc *ListingUsecase) syncIndex(ctx context.Context, listing *domain.Listing) {
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
		uc.logger.Warn("search index sync failed",
			zap.String("listing_id", listing.ID), zap.String("status", string(listing.Status)), zap.Error(err))
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, event any) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
