package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

type mediaRepo struct {
	db *gorm.DB
}

func (r *mediaRepo) Create(ctx context.Context, media *domain.ListingMedia) error {
	return r.db.WithContext(ctx).Create(toMediaModel(media)).Error
}

func (r *mediaRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&listingMediaModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: media %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *mediaRepo) FindByID(ctx context.Context, id string) (*domain.ListingMedia, error) {
	var m listingMediaModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: media %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return toDomainMedia(&m), nil
}

func (r *mediaRepo) ListByListing(ctx context.Context, listingID string) ([]*domain.ListingMedia, error) {
	var models []listingMediaModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("position ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	media := make([]*domain.ListingMedia, 0, len(models))
	for i := range models {
		media = append(media, toDomainMedia(&models[i]))
	}
	return media, nil
}

func (r *mediaRepo) ListByListings(ctx context.Context, listingIDs []string) ([]*domain.ListingMedia, error) {
	if len(listingIDs) == 0 {
		return []*domain.ListingMedia{}, nil
	}
	var models []listingMediaModel
	err := r.db.WithContext(ctx).
		Where("listing_id IN ?", listingIDs).
		Order("listing_id, position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	media := make([]*domain.ListingMedia, 0, len(models))
	for i := range models {
		media = append(media, toDomainMedia(&models[i]))
	}
	return media, nil
}

func (r *mediaRepo) DeleteByListing(ctx context.Context, listingID string) error {
	return r.db.WithContext(ctx).Delete(&listingMediaModel{}, "listing_id = ?", listingID).Error
}
