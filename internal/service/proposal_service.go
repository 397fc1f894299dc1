package service

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProposalLineRequest struct {
	ArticleID   *uuid.UUID       `json:"article_id"`
	Reference   string           `json:"reference"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	SupplierID  *uuid.UUID       `json:"supplier_id"`
}

type ProposalRequest struct {
	EntityID   uuid.UUID             `json:"entity_id" binding:"required"`
	Date       *time.Time            `json:"date"`
	ValidUntil *time.Time            `json:"valid_until"`
	Status     string                `json:"status"`
	Lines      []ProposalLineRequest `json:"lines" binding:"required"`
}

type ProposalService interface {
	Create(ctx context.Context, req ProposalRequest, meta RequestMeta) (*model.Proposal, error)
	Update(ctx context.Context, id uuid.UUID, req ProposalRequest, meta RequestMeta) (*model.Proposal, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	List(ctx context.Context, page, limit int) ([]model.Proposal, int64, error)

	// Convert closes a draft proposal, stamping the close time. Closed
	// proposals are read-only afterwards.
	Convert(ctx context.Context, id uuid.UUID, meta RequestMeta) (*model.Proposal, error)
}

type proposalService struct {
	proposals repository.ProposalRepository
	entities  repository.EntityRepository
	allocator repository.NumberAllocator
	tx        repository.TransactionManager
	activity  ActivityService
}

func NewProposalService(
	proposals repository.ProposalRepository,
	entities repository.EntityRepository,
	allocator repository.NumberAllocator,
	tx repository.TransactionManager,
	activity ActivityService,
) ProposalService {
	return &proposalService{
		proposals: proposals,
		entities:  entities,
		allocator: allocator,
		tx:        tx,
		activity:  activity,
	}
}

// buildLines validates the request lines and computes each line total plus
// the proposal total, all in decimal arithmetic.
func buildLines(reqs []ProposalLineRequest) ([]model.ProposalLine, decimal.Decimal, error) {
	if len(reqs) == 0 {
		return nil, decimal.Zero, apperror.Validation("proposal needs at least one line")
	}

	total := decimal.Zero
	lines := make([]model.ProposalLine, 0, len(reqs))
	for i, lr := range reqs {
		if lr.Name == "" {
			return nil, decimal.Zero, apperror.Validation(fmt.Sprintf("line %d: name is required", i+1))
		}
		if lr.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, apperror.Validation(fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if lr.UnitPrice.IsNegative() {
			return nil, decimal.Zero, apperror.Validation(fmt.Sprintf("line %d: unit price cannot be negative", i+1))
		}

		lineTotal := lr.Quantity.Mul(lr.UnitPrice).Round(2)
		total = total.Add(lineTotal)
		lines = append(lines, model.ProposalLine{
			ArticleID:   lr.ArticleID,
			Reference:   lr.Reference,
			Name:        lr.Name,
			Description: lr.Description,
			Quantity:    lr.Quantity,
			UnitPrice:   lr.UnitPrice,
			CostPrice:   lr.CostPrice,
			SupplierID:  lr.SupplierID,
			LineTotal:   lineTotal,
		})
	}
	return lines, total.Round(2), nil
}

func (s *proposalService) Create(ctx context.Context, req ProposalRequest, meta RequestMeta) (*model.Proposal, error) {
	if _, err := s.entities.FindByID(ctx, req.EntityID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("entity not found", err)
		}
		return nil, err
	}

	lines, total, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	validUntil := req.ValidUntil
	if validUntil == nil {
		v := date.AddDate(0, 0, 30)
		validUntil = &v
	}

	status := model.ProposalDraft
	var closedAt *time.Time
	switch req.Status {
	case "", model.ProposalDraft:
	case model.ProposalClosed:
		status = model.ProposalClosed
		now := time.Now()
		closedAt = &now
	default:
		return nil, apperror.Validation("status must be draft or closed")
	}

	proposal := &model.Proposal{
		Date:       date,
		ValidUntil: validUntil,
		EntityID:   req.EntityID,
		Status:     status,
		ClosedAt:   closedAt,
		Total:      total,
		Lines:      lines,
	}

	insert := func(txCtx context.Context) error {
		number, err := s.allocator.NextNumber(txCtx, &model.Proposal{})
		if err != nil {
			return err
		}
		proposal.Number = number
		return s.proposals.Create(txCtx, proposal)
	}

	err = s.tx.RunInTx(ctx, insert)
	if err != nil && repository.IsDuplicateKey(err) {
		proposal.ID = uuid.Nil
		err = s.tx.RunInTx(ctx, insert)
		if err != nil && repository.IsDuplicateKey(err) {
			return nil, apperror.Conflict("number allocation conflict, please retry", err)
		}
	}
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogSales,
		Meta:        meta,
		Subject:     &Subject{Kind: "proposal", ID: proposal.ID.String()},
		Description: fmt.Sprintf("Criou proposta Nº %d", proposal.Number),
	})

	return s.proposals.FindByIDWithLines(ctx, proposal.ID)
}

func (s *proposalService) Update(ctx context.Context, id uuid.UUID, req ProposalRequest, meta RequestMeta) (*model.Proposal, error) {
	proposal, err := s.proposals.FindByIDWithLines(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("proposal not found", err)
		}
		return nil, err
	}
	if proposal.Status == model.ProposalClosed {
		return nil, apperror.Validation("closed proposals cannot be changed")
	}

	if req.EntityID != proposal.EntityID {
		if _, err := s.entities.FindByID(ctx, req.EntityID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperror.NotFound("entity not found", err)
			}
			return nil, err
		}
	}

	lines, total, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	proposal.EntityID = req.EntityID
	if req.Date != nil {
		proposal.Date = *req.Date
	}
	if req.ValidUntil != nil {
		proposal.ValidUntil = req.ValidUntil
	}
	proposal.Total = total
	proposal.Lines = nil

	if err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.proposals.Update(txCtx, proposal); err != nil {
			return err
		}
		return s.proposals.ReplaceLines(txCtx, proposal.ID, lines)
	}); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogSales,
		Meta:        meta,
		Subject:     &Subject{Kind: "proposal", ID: proposal.ID.String()},
		Description: fmt.Sprintf("Atualizou proposta Nº %d", proposal.Number),
	})

	return s.proposals.FindByIDWithLines(ctx, proposal.ID)
}

func (s *proposalService) Get(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	proposal, err := s.proposals.FindByIDWithLines(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("proposal not found", err)
		}
		return nil, err
	}
	return proposal, nil
}

func (s *proposalService) List(ctx context.Context, page, limit int) ([]model.Proposal, int64, error) {
	return s.proposals.List(ctx, page, limit)
}

func (s *proposalService) Convert(ctx context.Context, id uuid.UUID, meta RequestMeta) (*model.Proposal, error) {
	proposal, err := s.proposals.FindByIDWithLines(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("proposal not found", err)
		}
		return nil, err
	}
	if proposal.Status == model.ProposalClosed {
		return nil, apperror.Conflict("proposal is already closed", nil)
	}

	now := time.Now()
	proposal.Status = model.ProposalClosed
	proposal.ClosedAt = &now
	if err := s.proposals.Update(ctx, proposal); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogSales,
		Meta:        meta,
		Subject:     &Subject{Kind: "proposal", ID: proposal.ID.String()},
		Description: fmt.Sprintf("Fechou proposta Nº %d", proposal.Number),
	})

	return proposal, nil
}
