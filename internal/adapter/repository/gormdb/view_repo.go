package gormdb

import (
	"context"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

type listingViewRepo struct {
	db *gorm.DB
}

func (r *listingViewRepo) Insert(ctx context.Context, view *domain.ListingView) error {
	return r.db.WithContext(ctx).Create(toViewModel(view)).Error
}

func (r *listingViewRepo) CountSince(ctx context.Context, listingID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&listingViewModel{}).
		Where("listing_id = ? AND created_at >= ?", listingID, since).
		Count(&count).Error
	return count, err
}

func (r *listingViewRepo) CountDistinctViewersSince(ctx context.Context, listingID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&listingViewModel{}).
		Where("listing_id = ? AND created_at >= ? AND viewer_id IS NOT NULL", listingID, since).
		Distinct("viewer_id").
		Count(&count).Error
	return count, err
}

// DailyCountsSince groups by calendar day; days without views produce
// no row. DATE_FORMAT keeps the bucket a plain string, which the DSN's
// parseTime option would otherwise turn into a timestamp.
func (r *listingViewRepo) DailyCountsSince(ctx context.Context, listingID string, since time.Time) ([]domain.DailyViewCount, error) {
	var rows []domain.DailyViewCount
	err := r.db.WithContext(ctx).Model(&listingViewModel{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') AS date, COUNT(*) AS count").
		Where("listing_id = ? AND created_at >= ?", listingID, since).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *listingViewRepo) RecentAuthenticatedSince(ctx context.Context, listingID string, since time.Time, limit int) ([]*domain.ListingView, error) {
	var models []listingViewModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND created_at >= ? AND viewer_id IS NOT NULL", listingID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	views := make([]*domain.ListingView, 0, len(models))
	for i := range models {
		views = append(views, toDomainView(&models[i]))
	}
	return views, nil
}

func (r *listingViewRepo) CountByViewers(ctx context.Context, listingID string, viewerIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(viewerIDs))
	if len(viewerIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ViewerID string
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&listingViewModel{}).
		Select("viewer_id, COUNT(*) AS count").
		Where("listing_id = ? AND viewer_id IN ?", listingID, viewerIDs).
		Group("viewer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ViewerID] = row.Count
	}
	return counts, nil
}
