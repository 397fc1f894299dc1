package service

import (
	"context"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"gorm.io/gorm"
)

type CompanyRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	Locality   string `json:"locality"`
	TaxNumber  string `json:"tax_number"`
}

// CompanyService manages the single company settings record. Get always
// succeeds: the row is created empty on first access.
type CompanyService interface {
	Get(ctx context.Context) (*model.Company, error)
	Update(ctx context.Context, req CompanyRequest, meta RequestMeta) (*model.Company, error)
	SetLogo(ctx context.Context, path string, meta RequestMeta) (*model.Company, error)
}

type companyService struct {
	companies repository.CompanyRepository
	activity  ActivityService
}

func NewCompanyService(companies repository.CompanyRepository, activity ActivityService) CompanyService {
	return &companyService{companies: companies, activity: activity}
}

func (s *companyService) Get(ctx context.Context) (*model.Company, error) {
	company, err := s.companies.First(ctx)
	if err == gorm.ErrRecordNotFound {
		company = &model.Company{}
		if err := s.companies.Create(ctx, company); err != nil {
			return nil, err
		}
		return company, nil
	}
	return company, err
}

func (s *companyService) Update(ctx context.Context, req CompanyRequest, meta RequestMeta) (*model.Company, error) {
	company, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	company.Name = req.Name
	company.Address = req.Address
	company.PostalCode = req.PostalCode
	company.Locality = req.Locality
	company.TaxNumber = req.TaxNumber

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogSettings,
		Meta:        meta,
		Subject:     &Subject{Kind: "company", ID: company.ID.String()},
		Description: "Atualizou dados da empresa",
	})

	return company, nil
}

func (s *companyService) SetLogo(ctx context.Context, path string, meta RequestMeta) (*model.Company, error) {
	company, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	company.Logo = path
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogSettings,
		Meta:        meta,
		Subject:     &Subject{Kind: "company", ID: company.ID.String()},
		Description: "Atualizou logotipo da empresa",
	})

	return company, nil
}
