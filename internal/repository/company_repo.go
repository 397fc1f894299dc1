package repository

import (
	"context"

	"backoffice/internal/model"

	"gorm.io/gorm"
)

type CompanyRepository interface {
	First(ctx context.Context) (*model.Company, error)
	Create(ctx context.Context, company *model.Company) error
	Update(ctx context.Context, company *model.Company) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) First(ctx context.Context) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).Order("created_at ASC").First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return GetDB(ctx, r.db).Create(company).Error
}

func (r *companyRepository) Update(ctx context.Context, company *model.Company) error {
	return GetDB(ctx, r.db).Save(company).Error
}
