package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MediaUsecase attaches uploaded files to listings and removes them.
// Objects live in blob storage; rows in the store carry the bookkeeping.
type MediaUsecase struct {
	store   domain.UnitOfWork
	storage domain.MediaStorage
	logger  *logger.Logger
	tracer  trace.Tracer
}

func NewMediaUsecase(store domain.UnitOfWork, storage domain.MediaStorage, log *logger.Logger) *MediaUsecase {
	return &MediaUsecase{
		store:   store,
		storage: storage,
		logger:  log.Named("MediaUsecase"),
		tracer:  otel.Tracer("usecase/media"),
	}
}

// Attach uploads a file and records it against the listing. Owner only.
func (uc *MediaUsecase) Attach(ctx context.Context, actor domain.Actor, listingID, fileName, contentType string, data []byte) (*domain.ListingMedia, error) {
	ctx, span := uc.tracer.Start(ctx, "Attach")
	defer span.End()

	if uc.storage == nil {
		return nil, fmt.Errorf("%w: media storage is not configured", domain.ErrRepository)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}

	seller, err := uc.resolveSeller(ctx, actor)
	if err != nil {
		return nil, err
	}
	listing, err := uc.store.Listings().FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != seller.ID {
		return nil, fmt.Errorf("%w: listing belongs to another seller", domain.ErrForbidden)
	}

	existing, err := uc.store.Media().ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load media: %v", domain.ErrRepository, err)
	}

	objectKey, url, err := uc.storage.Upload(ctx, fileName, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("%w: upload failed: %v", domain.ErrRepository, err)
	}

	media, err := domain.NewListingMedia(listingID, objectKey, url, fileName, len(existing))
	if err != nil {
		return nil, err
	}

	err = uc.store.Within(ctx, func(r domain.Repositories) error {
		if err := r.Media().Create(ctx, media); err != nil {
			return fmt.Errorf("%w: failed to record media: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		// the row never landed, so drop the orphaned object
		if rmErr := uc.storage.Remove(ctx, objectKey); rmErr != nil {
			uc.logger.Warn("failed to remove orphaned media object",
				zap.String("object_key", objectKey), zap.Error(rmErr))
		}
		uc.logger.Error("failed to attach media", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("media attached",
		zap.String("listing_id", listingID), zap.String("media_id", media.ID), zap.String("object_key", objectKey))
	return media, nil
}

// Remove deletes a media row and best-effort removes its object. Owner
// or admin.
func (uc *MediaUsecase) Remove(ctx context.Context, actor domain.Actor, listingID, mediaID string) error {
	ctx, span := uc.tracer.Start(ctx, "Remove")
	defer span.End()

	media, err := uc.store.Media().FindByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if media.ListingID != listingID {
		return fmt.Errorf("%w: media %s", domain.ErrNotFound, mediaID)
	}

	if !actor.IsAdmin() {
		seller, err := uc.resolveSeller(ctx, actor)
		if err != nil {
			return err
		}
		listing, err := uc.store.Listings().FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.SellerID != seller.ID {
			return fmt.Errorf("%w: listing belongs to another seller", domain.ErrForbidden)
		}
	}

	err = uc.store.Within(ctx, func(r domain.Repositories) error {
		if err := r.Media().Delete(ctx, mediaID); err != nil {
			return fmt.Errorf("%w: failed to delete media: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to remove media", zap.String("media_id", mediaID), zap.Error(err))
		return err
	}

	if uc.storage != nil {
		if err := uc.storage.Remove(ctx, media.ObjectKey); err != nil {
			uc.logger.Warn("failed to remove media object",
				zap.String("object_key", media.ObjectKey), zap.Error(err))
		}
	}
	uc.logger.Info("media removed", zap.String("listing_id", listingID), zap.String("media_id", mediaID))
	return nil
}

func (uc *MediaUsecase) resolveSeller(ctx context.Context, actor domain.Actor) (*domain.Seller, error) {
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
