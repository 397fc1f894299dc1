package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntityRepository interface {
	Create(ctx context.Context, entity *model.Entity) error
	Update(ctx context.Context, entity *model.Entity) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	NIFExists(ctx context.Context, nif string) (bool, error)
	List(ctx context.Context, entityType, search string) ([]model.Entity, error)
}

type entityRepository struct {
	db *gorm.DB
}

func NewEntityRepository(db *gorm.DB) EntityRepository {
	return &entityRepository{db: db}
}

func (r *entityRepository) Create(ctx context.Context, entity *model.Entity) error {
	return GetDB(ctx, r.db).Create(entity).Error
}

func (r *entityRepository) Update(ctx context.Context, entity *model.Entity) error {
	return GetDB(ctx, r.db).Save(entity).Error
}

func (r *entityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Entity{}).Error
}

func (r *entityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	var entity model.Entity
	if err := GetDB(ctx, r.db).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// NIFExists counts soft-deleted rows too: the unique index on nif has no
// soft-delete carve-out, so a deleted entity still holds its nif.
func (r *entityRepository) NIFExists(ctx context.Context, nif string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Unscoped().Model(&model.Entity{}).Where("nif = ?", nif).Count(&count).Error
	return count > 0, err
}

// List returns entities ordered by name. entityType filters on the
// client/supplier flags ("client", "supplier" or empty for all).
func (r *entityRepository) List(ctx context.Context, entityType, search string) ([]model.Entity, error) {
	query := GetDB(ctx, r.db).Model(&model.Entity{})

	switch entityType {
	case "client":
		query = query.Where("is_client = ?", true)
	case "supplier":
		query = query.Where("is_supplier = ?", true)
	}
	if search != "" {
		query = query.Where("name ILIKE ? OR nif ILIKE ? OR email ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	var entities []model.Entity
	if err := query.Order("name ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
