package repository

import (
	"context"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalendarEventFilter narrows the events listing. VisibleTo limits results
// to events the given user may see: their own plus anything shared.
type CalendarEventFilter struct {
	UserID    string
	EntityID  string
	VisibleTo string
	From      *time.Time
	To        *time.Time
}

type CalendarRepository interface {
	CreateEvent(ctx context.Context, event *model.CalendarEvent) error
	UpdateEvent(ctx context.Context, event *model.CalendarEvent) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	FindEventByID(ctx context.Context, id uuid.UUID) (*model.CalendarEvent, error)
	ListEvents(ctx context.Context, filter CalendarEventFilter) ([]model.CalendarEvent, error)
	ListTypes(ctx context.Context) ([]model.CalendarType, error)
	ListActions(ctx context.Context) ([]model.CalendarAction, error)
}

type calendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) CreateEvent(ctx context.Context, event *model.CalendarEvent) error {
	return GetDB(ctx, r.db).Create(event).Error
}

func (r *calendarRepository) UpdateEvent(ctx context.Context, event *model.CalendarEvent) error {
	return GetDB(ctx, r.db).Save(event).Error
}

func (r *calendarRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.CalendarEvent{}).Error
}

func (r *calendarRepository) FindEventByID(ctx context.Context, id uuid.UUID) (*model.CalendarEvent, error) {
	var event model.CalendarEvent
	err := GetDB(ctx, r.db).
		Preload("Entity").Preload("Type").Preload("Action").Preload("User").
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *calendarRepository) ListEvents(ctx context.Context, filter CalendarEventFilter) ([]model.CalendarEvent, error) {
	query := GetDB(ctx, r.db).
		Preload("Entity").Preload("Type").Preload("Action").Preload("User")

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.VisibleTo != "" {
		query = query.Where("shared = ? OR user_id = ?", true, filter.VisibleTo)
	}
	if filter.From != nil {
		query = query.Where("start_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_at < ?", *filter.To)
	}

	var events []model.CalendarEvent
	if err := query.Order("start_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *calendarRepository) ListTypes(ctx context.Context) ([]model.CalendarType, error) {
	var types []model.CalendarType
	err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("name ASC").Find(&types).Error
	return types, err
}

func (r *calendarRepository) ListActions(ctx context.Context) ([]model.CalendarAction, error) {
	var actions []model.CalendarAction
	err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("name ASC").Find(&actions).Error
	return actions, err
}
