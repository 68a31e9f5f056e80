package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

type pendingEditRepo struct {
	db *gorm.DB
}

func (r *pendingEditRepo) Create(ctx context.Context, edit *domain.PendingEdit) error {
	return r.db.WithContext(ctx).Create(toPendingEditModel(edit)).Error
}

func (r *pendingEditRepo) Update(ctx context.Context, edit *domain.PendingEdit) error {
	return r.db.WithContext(ctx).Save(toPendingEditModel(edit)).Error
}

func (r *pendingEditRepo) FindPendingByListing(ctx context.Context, listingID string) (*domain.PendingEdit, error) {
	var m pendingEditModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND status = ?", listingID, string(domain.EditStatusPending)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pending edit for listing %s", domain.ErrNotFound, listingID)
		}
		return nil, err
	}
	return toDomainPendingEdit(&m), nil
}

// ListPending returns the review queue oldest first.
func (r *pendingEditRepo) ListPending(ctx context.Context, page, perPage int) ([]*domain.PendingEdit, int64, error) {
	q := r.db.WithContext(ctx).Model(&pendingEditModel{}).
		Where("status = ?", string(domain.EditStatusPending))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []pendingEditModel
	err := q.Order("created_at ASC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	edits := make([]*domain.PendingEdit, 0, len(models))
	for i := range models {
		edits = append(edits, toDomainPendingEdit(&models[i]))
	}
	return edits, total, nil
}

func (r *pendingEditRepo) DeleteByListing(ctx context.Context, listingID string) error {
	return r.db.WithContext(ctx).Delete(&pendingEditModel{}, "listing_id = ?", listingID).Error
}
