package repository

import (
	"context"

	"backoffice/internal/model"

	"gorm.io/gorm"
)

// ActivityFilter narrows activity queries. From/To are inclusive date-only
// bounds (YYYY-MM-DD) compared against the entry's creation date; Search is a
// case-insensitive substring match over description OR log name.
type ActivityFilter struct {
	CauserID string
	From     string
	To       string
	Search   string
}

type ActivityRepository interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, filter ActivityFilter, page, limit int) ([]model.ActivityLog, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Append writes a new entry. The log is a pure audit sink: there is no
// update or delete counterpart.
func (r *activityRepository) Append(ctx context.Context, entry *model.ActivityLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter, page, limit int) ([]model.ActivityLog, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.CauserID != "" {
			q = q.Where("causer_id = ?", filter.CauserID)
		}
		if filter.From != "" {
			q = q.Where("DATE(created_at) >= ?", filter.From)
		}
		if filter.To != "" {
			q = q.Where("DATE(created_at) <= ?", filter.To)
		}
		if filter.Search != "" {
			q = q.Where("description ILIKE ? OR log_name ILIKE ?",
				"%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.ActivityLog{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.ActivityLog
	offset := (page - 1) * limit
	err := apply(db.Model(&model.ActivityLog{})).
		Preload("Causer").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
