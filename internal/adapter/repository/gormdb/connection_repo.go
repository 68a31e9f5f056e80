package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

type connectionRepo struct {
	db *gorm.DB
}

func (r *connectionRepo) Create(ctx context.Context, conn *domain.Connection) error {
	return r.db.WithContext(ctx).Create(toConnectionModel(conn)).Error
}

func (r *connectionRepo) Update(ctx context.Context, conn *domain.Connection) error {
	return r.db.WithContext(ctx).Save(toConnectionModel(conn)).Error
}

func (r *connectionRepo) FindByID(ctx context.Context, id string) (*domain.Connection, error) {
	var m connectionModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: connection %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return toDomainConnection(&m), nil
}

func (r *connectionRepo) FindByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*domain.Connection, error) {
	var m connectionModel
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND listing_id = ?", buyerID, listingID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: connection for listing %s", domain.ErrNotFound, listingID)
		}
		return nil, err
	}
	return toDomainConnection(&m), nil
}

func (r *connectionRepo) HasApproved(ctx context.Context, buyerID, sellerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&connectionModel{}).
		Where("buyer_id = ? AND seller_id = ? AND status = ?",
			buyerID, sellerID, string(domain.ConnectionApproved)).
		Count(&count).Error
	return count > 0, err
}

func (r *connectionRepo) ApprovedSellerIDs(ctx context.Context, buyerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&connectionModel{}).
		Where("buyer_id = ? AND status = ?", buyerID, string(domain.ConnectionApproved)).
		Distinct().
		Pluck("seller_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *connectionRepo) CountApprovedByListing(ctx context.Context, listingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&connectionModel{}).
		Where("listing_id = ? AND status = ?", listingID, string(domain.ConnectionApproved)).
		Count(&count).Error
	return count, err
}

func (r *connectionRepo) ListByBuyer(ctx context.Context, buyerID string, page, perPage int) ([]*domain.Connection, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&connectionModel{}).Where("buyer_id = ?", buyerID), page, perPage)
}

func (r *connectionRepo) ListBySeller(ctx context.Context, sellerID string, page, perPage int) ([]*domain.Connection, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&connectionModel{}).Where("seller_id = ?", sellerID), page, perPage)
}

func (r *connectionRepo) List(ctx context.Context, page, perPage int) ([]*domain.Connection, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&connectionModel{}), page, perPage)
}

func (r *connectionRepo) list(_ context.Context, q *gorm.DB, page, perPage int) ([]*domain.Connection, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []connectionModel
	err := q.Order("updated_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	conns := make([]*domain.Connection, 0, len(models))
	for i := range models {
		conns = append(conns, toDomainConnection(&models[i]))
	}
	return conns, total, nil
}

func (r *connectionRepo) DeleteByListing(ctx context.Context, listingID string) error {
	return r.db.WithContext(ctx).Delete(&connectionModel{}, "listing_id = ?", listingID).Error
}
