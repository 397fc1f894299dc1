package service

import (
	"context"
	"strings"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EntityRequest struct {
	IsClient    bool    `json:"is_client"`
	IsSupplier  bool    `json:"is_supplier"`
	NIF         *string `json:"nif"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	PostalCode  string  `json:"postal_code"`
	City        string  `json:"city"`
	CountryID   *int64  `json:"country_id"`
	Phone       string  `json:"phone"`
	Mobile      string  `json:"mobile"`
	Website     string  `json:"website"`
	Email       string  `json:"email"`
	RGPDConsent bool    `json:"rgpd_consent"`
	Notes       string  `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

type EntityService interface {
	Create(ctx context.Context, req EntityRequest, meta RequestMeta) (*model.Entity, error)
	Update(ctx context.Context, id uuid.UUID, req EntityRequest, meta RequestMeta) (*model.Entity, error)
	Delete(ctx context.Context, id uuid.UUID, meta RequestMeta) error
	Get(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	List(ctx context.Context, entityType, search string) ([]model.Entity, error)
	NIFExists(ctx context.Context, nif string) (bool, error)
}

type entityService struct {
	entities  repository.EntityRepository
	allocator repository.NumberAllocator
	tx        repository.TransactionManager
	vies      ViesService
	activity  ActivityService
	log       *zap.Logger
}

func NewEntityService(
	entities repository.EntityRepository,
	allocator repository.NumberAllocator,
	tx repository.TransactionManager,
	vies ViesService,
	activity ActivityService,
	log *zap.Logger,
) EntityService {
	return &entityService{
		entities:  entities,
		allocator: allocator,
		tx:        tx,
		vies:      vies,
		activity:  activity,
		log:       log,
	}
}

func entityKind(e *model.Entity) string {
	switch {
	case e.IsClient && e.IsSupplier:
		return "Cliente/Fornecedor"
	case e.IsSupplier:
		return "Fornecedor"
	default:
		return "Cliente"
	}
}

func normalizeNIFPtr(nif *string) *string {
	if nif == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*nif)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *entityService) Create(ctx context.Context, req EntityRequest, meta RequestMeta) (*model.Entity, error) {
	if !req.IsClient && !req.IsSupplier {
		return nil, apperror.Validation("entity must be a client, a supplier, or both")
	}

	nif := normalizeNIFPtr(req.NIF)
	if nif != nil {
		exists, err := s.entities.NIFExists(ctx, *nif)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.Conflict("an entity with this nif already exists", nil)
		}
	}

	name := strings.TrimSpace(req.Name)
	address := req.Address
	// a lookup failure only skips the autofill, it never blocks creation
	if name == "" && nif != nil {
		if result, err := s.vies.Lookup(ctx, *nif); err == nil && result.Valid {
			if result.Name != nil {
				name = *result.Name
			}
			if address == "" && result.Address != nil {
				address = *result.Address
			}
		} else if err != nil {
			s.log.Warn("vies autofill skipped", zap.Error(err))
		}
	}
	if name == "" {
		return nil, apperror.Validation("entity name is required")
	}

	entity := &model.Entity{
		IsClient:    req.IsClient,
		IsSupplier:  req.IsSupplier,
		NIF:         nif,
		Name:        name,
		Address:     address,
		PostalCode:  req.PostalCode,
		City:        req.City,
		CountryID:   req.CountryID,
		Phone:       req.Phone,
		Mobile:      req.Mobile,
		Website:     req.Website,
		Email:       req.Email,
		RGPDConsent: req.RGPDConsent,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if req.IsActive != nil {
		entity.IsActive = *req.IsActive
	}

	if err := s.createNumbered(ctx, entity); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogManagement,
		Meta:        meta,
		Subject:     &Subject{Kind: "entity", ID: entity.ID.String()},
		Description: "Criou " + entityKind(entity) + ": " + entity.Name,
	})

	return entity, nil
}

// createNumbered allocates the next sequential number and inserts in one
// transaction. When two requests race for the same number the loser hits the
// unique index; one fresh allocation is attempted before giving up.
func (s *entityService) createNumbered(ctx context.Context, entity *model.Entity) error {
	insert := func(txCtx context.Context) error {
		number, err := s.allocator.NextNumber(txCtx, &model.Entity{})
		if err != nil {
			return err
		}
		entity.Number = number
		return s.entities.Create(txCtx, entity)
	}

	err := s.tx.RunInTx(ctx, insert)
	if err != nil && repository.IsDuplicateKey(err) {
		if nifErr := s.nifConflict(ctx, entity, err); nifErr != nil {
			return nifErr
		}
		entity.ID = uuid.Nil
		err = s.tx.RunInTx(ctx, insert)
		if err != nil && repository.IsDuplicateKey(err) {
			if nifErr := s.nifConflict(ctx, entity, err); nifErr != nil {
				return nifErr
			}
			return apperror.Conflict("number allocation conflict, please retry", err)
		}
	}
	return err
}

// nifConflict tells a nif collision apart from a lost number race, so a
// concurrent writer registering the same nif does not burn the retry and
// surface the wrong message.
func (s *entityService) nifConflict(ctx context.Context, entity *model.Entity, cause error) error {
	if entity.NIF == nil {
		return nil
	}
	exists, err := s.entities.NIFExists(ctx, *entity.NIF)
	if err != nil || !exists {
		return nil
	}
	return apperror.Conflict("an entity with this nif already exists", cause)
}

func (s *entityService) Update(ctx context.Context, id uuid.UUID, req EntityRequest, meta RequestMeta) (*model.Entity, error) {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("entity not found", err)
		}
		return nil, err
	}

	if !req.IsClient && !req.IsSupplier {
		return nil, apperror.Validation("entity must be a client, a supplier, or both")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("entity name is required")
	}

	nif := normalizeNIFPtr(req.NIF)
	if nif != nil && (entity.NIF == nil || *entity.NIF != *nif) {
		exists, err := s.entities.NIFExists(ctx, *nif)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.Conflict("an entity with this nif already exists", nil)
		}
	}

	entity.IsClient = req.IsClient
	entity.IsSupplier = req.IsSupplier
	entity.NIF = nif
	entity.Name = name
	entity.Address = req.Address
	entity.PostalCode = req.PostalCode
	entity.City = req.City
	entity.CountryID = req.CountryID
	entity.Phone = req.Phone
	entity.Mobile = req.Mobile
	entity.Website = req.Website
	entity.Email = req.Email
	entity.RGPDConsent = req.RGPDConsent
	entity.Notes = req.Notes
	if req.IsActive != nil {
		entity.IsActive = *req.IsActive
	}

	if err := s.entities.Update(ctx, entity); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogManagement,
		Meta:        meta,
		Subject:     &Subject{Kind: "entity", ID: entity.ID.String()},
		Description: "Atualizou " + entityKind(entity) + ": " + entity.Name,
	})

	return entity, nil
}

func (s *entityService) Delete(ctx context.Context, id uuid.UUID, meta RequestMeta) error {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("entity not found", err)
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogManagement,
		Meta:        meta,
		Subject:     &Subject{Kind: "entity", ID: entity.ID.String()},
		Description: "Removeu " + entityKind(entity) + ": " + entity.Name,
	})

	return s.entities.Delete(ctx, id)
}

func (s *entityService) Get(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("entity not found", err)
		}
		return nil, err
	}
	return entity, nil
}

func (s *entityService) List(ctx context.Context, entityType, search string) ([]model.Entity, error) {
	return s.entities.List(ctx, entityType, search)
}

func (s *entityService) NIFExists(ctx context.Context, nif string) (bool, error) {
	trimmed := strings.TrimSpace(nif)
	if trimmed == "" {
		return false, apperror.Validation("nif is required")
	}
	return s.entities.NIFExists(ctx, trimmed)
}
