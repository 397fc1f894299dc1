package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
	List(ctx context.Context) ([]model.Article, error)
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *model.Article) error {
	return GetDB(ctx, r.db).Create(article).Error
}

func (r *articleRepository) Update(ctx context.Context, article *model.Article) error {
	return GetDB(ctx, r.db).Save(article).Error
}

func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Article{}).Error
}

func (r *articleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var article model.Article
	if err := GetDB(ctx, r.db).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}
