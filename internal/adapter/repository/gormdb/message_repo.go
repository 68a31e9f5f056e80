package gormdb

import (
	"context"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

type messageRepo struct {
	db *gorm.DB
}

func (r *messageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(toMessageModel(msg)).Error
}

// ListByConnection returns messages oldest first so a page reads as a
// conversation.
func (r *messageRepo) ListByConnection(ctx context.Context, connectionID string, page, perPage int) ([]*domain.Message, int64, error) {
	q := r.db.WithContext(ctx).Model(&messageModel{}).Where("connection_id = ?", connectionID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []messageModel
	err := q.Order("created_at ASC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	msgs := make([]*domain.Message, 0, len(models))
	for i := range models {
		msgs = append(msgs, toDomainMessage(&models[i]))
	}
	return msgs, total, nil
}
