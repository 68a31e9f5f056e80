package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

type savedListingRepo struct {
	db *gorm.DB
}

func (r *savedListingRepo) Create(ctx context.Context, saved *domain.SavedListing) error {
	return r.db.WithContext(ctx).Create(toSavedModel(saved)).Error
}

func (r *savedListingRepo) Update(ctx context.Context, saved *domain.SavedListing) error {
	return r.db.WithContext(ctx).Save(toSavedModel(saved)).Error
}

func (r *savedListingRepo) Delete(ctx context.Context, buyerID, listingID string) error {
	res := r.db.WithContext(ctx).
		Delete(&savedListingModel{}, "buyer_id = ? AND listing_id = ?", buyerID, listingID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: saved listing %s", domain.ErrNotFound, listingID)
	}
	return nil
}

func (r *savedListingRepo) FindByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*domain.SavedListing, error) {
	var m savedListingModel
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND listing_id = ?", buyerID, listingID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: saved listing %s", domain.ErrNotFound, listingID)
		}
		return nil, err
	}
	return toDomainSaved(&m), nil
}

func (r *savedListingRepo) ListByBuyer(ctx context.Context, buyerID string, page, perPage int) ([]*domain.SavedListing, int64, error) {
	q := r.db.WithContext(ctx).Model(&savedListingModel{}).Where("buyer_id = ?", buyerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []savedListingModel
	err := q.Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	saved := make([]*domain.SavedListing, 0, len(models))
	for i := range models {
		saved = append(saved, toDomainSaved(&models[i]))
	}
	return saved, total, nil
}

func (r *savedListingRepo) CountByListing(ctx context.Context, listingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&savedListingModel{}).
		Where("listing_id = ?", listingID).
		Count(&count).Error
	return count, err
}

func (r *savedListingRepo) DeleteByListing(ctx context.Context, listingID string) error {
	return r.db.WithContext(ctx).Delete(&savedListingModel{}, "listing_id = ?", listingID).Error
}
