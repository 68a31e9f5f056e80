package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

type sellerRepo struct {
	db *gorm.DB
}

func (r *sellerRepo) Create(ctx context.Context, seller *domain.Seller) error {
	return r.db.WithContext(ctx).Create(toSellerModel(seller)).Error
}

func (r *sellerRepo) Update(ctx context.Context, seller *domain.Seller) error {
	return r.db.WithContext(ctx).Save(toSellerModel(seller)).Error
}

func (r *sellerRepo) FindByID(ctx context.Context, id string) (*domain.Seller, error) {
	var m sellerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return toDomainSeller(&m), nil
}

func (r *sellerRepo) FindByUserID(ctx context.Context, userID string) (*domain.Seller, error) {
	var m sellerModel
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller for user %s", domain.ErrNotFound, userID)
		}
		return nil, err
	}
	return toDomainSeller(&m), nil
}

type buyerRepo struct {
	db *gorm.DB
}

func (r *buyerRepo) Create(ctx context.Context, buyer *domain.Buyer) error {
	return r.db.WithContext(ctx).Create(toBuyerModel(buyer)).Error
}

func (r *buyerRepo) Update(ctx context.Context, buyer *domain.Buyer) error {
	return r.db.WithContext(ctx).Save(toBuyerModel(buyer)).Error
}

func (r *buyerRepo) FindByID(ctx context.Context, id string) (*domain.Buyer, error) {
	var m buyerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: buyer %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return toDomainBuyer(&m), nil
}

func (r *buyerRepo) FindByUserID(ctx context.Context, userID string) (*domain.Buyer, error) {
	var m buyerModel
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: buyer for user %s", domain.ErrNotFound, userID)
		}
		return nil, err
	}
	return toDomainBuyer(&m), nil
}
