package service

import (
	"context"
	"strings"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ArticleRequest struct {
	Reference   string           `json:"reference"`
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
	Notes       string           `json:"notes"`
	IsActive    *bool            `json:"is_active"`
}

type ArticleService interface {
	Create(ctx context.Context, req ArticleRequest, meta RequestMeta) (*model.Article, error)
	Update(ctx context.Context, id uuid.UUID, req ArticleRequest, meta RequestMeta) (*model.Article, error)
	Delete(ctx context.Context, id uuid.UUID, meta RequestMeta) error
	Get(ctx context.Context, id uuid.UUID) (*model.Article, error)
	List(ctx context.Context) ([]model.Article, error)
	SetPhoto(ctx context.Context, id uuid.UUID, path string) (*model.Article, error)
}

type articleService struct {
	articles repository.ArticleRepository
	activity ActivityService
}

func NewArticleService(articles repository.ArticleRepository, activity ActivityService) ArticleService {
	return &articleService{articles: articles, activity: activity}
}

func (s *articleService) Create(ctx context.Context, req ArticleRequest, meta RequestMeta) (*model.Article, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("article name is required")
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation("price cannot be negative")
	}

	article := &model.Article{
		Reference:   req.Reference,
		Name:        name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		VATRate:     req.VATRate,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if req.IsActive != nil {
		article.IsActive = *req.IsActive
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogSettings,
		Meta:        meta,
		Subject:     &Subject{Kind: "article", ID: article.ID.String()},
		Description: "Criou artigo: " + article.Name,
	})

	return article, nil
}

func (s *articleService) Update(ctx context.Context, id uuid.UUID, req ArticleRequest, meta RequestMeta) (*model.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("article not found", err)
		}
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("article name is required")
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation("price cannot be negative")
	}

	article.Reference = req.Reference
	article.Name = name
	article.Description = req.Description
	article.Price = req.Price.Round(2)
	article.VATRate = req.VATRate
	article.Notes = req.Notes
	if req.IsActive != nil {
		article.IsActive = *req.IsActive
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogSettings,
		Meta:        meta,
		Subject:     &Subject{Kind: "article", ID: article.ID.String()},
		Description: "Atualizou artigo: " + article.Name,
	})

	return article, nil
}

func (s *articleService) Delete(ctx context.Context, id uuid.UUID, meta RequestMeta) error {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("article not found", err)
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogSettings,
		Meta:        meta,
		Subject:     &Subject{Kind: "article", ID: article.ID.String()},
		Description: "Removeu artigo: " + article.Name,
	})

	return s.articles.Delete(ctx, id)
}

func (s *articleService) Get(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("article not found", err)
		}
		return nil, err
	}
	return article, nil
}

func (s *articleService) List(ctx context.Context) ([]model.Article, error) {
	return s.articles.List(ctx)
}

func (s *articleService) SetPhoto(ctx context.Context, id uuid.UUID, path string) (*model.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("article not found", err)
		}
		return nil, err
	}
	article.Photo = path
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}
