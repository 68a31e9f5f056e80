package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

// sortColumns whitelists ORDER BY targets; anything else falls back to
// created_at.
var sortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"asking_price": "asking_price",
	"view_count":   "view_count",
}

type listingRepo struct {
	db *gorm.DB
}

func (r *listingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	return r.db.WithContext(ctx).Create(toListingModel(listing)).Error
}

func (r *listingRepo) Update(ctx context.Context, listing *domain.Listing) error {
	return r.db.WithContext(ctx).Save(toListingModel(listing)).Error
}

func (r *listingRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&listingModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: listing %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *listingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var m listingModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return toDomainListing(&m), nil
}

func (r *listingRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Listing, error) {
	if len(ids) == 0 {
		return []*domain.Listing{}, nil
	}
	var models []listingModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	listings := make([]*domain.Listing, 0, len(models))
	for i := range models {
		listings = append(listings, toDomainListing(&models[i]))
	}
	return listings, nil
}

func (r *listingRepo) FindByFilter(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, int64, error) {
	q := r.db.WithContext(ctx).Model(&listingModel{})

	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.SellerID != "" {
		q = q.Where("seller_id = ?", filter.SellerID)
	}
	if filter.PracticeType != "" {
		q = q.Where("practice_type = ?", filter.PracticeType)
	}
	if filter.Location != "" {
		q = q.Where("location LIKE ?", "%"+filter.Location+"%")
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where("(title LIKE ? OR description LIKE ? OR location LIKE ?)", pattern, pattern, pattern)
	}
	if filter.MinPrice > 0 {
		q = q.Where("asking_price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		q = q.Where("asking_price <= ?", filter.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	var models []listingModel
	err := q.Order(column + " " + direction).
		Limit(filter.PerPage).
		Offset(filter.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	listings := make([]*domain.Listing, 0, len(models))
	for i := range models {
		listings = append(listings, toDomainListing(&models[i]))
	}
	return listings, total, nil
}

// IncrementViewCount bumps the counter in place without touching
// updated_at; a view is not a content change.
func (r *listingRepo) IncrementViewCount(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&listingModel{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: listing %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *listingRepo) IncrementConnectionCount(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&listingModel{}).Where("id = ?", id).
		UpdateColumn("connection_count", gorm.Expr("connection_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: listing %s", domain.ErrNotFound, id)
	}
	return nil
}
