package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalRepository interface {
	Create(ctx context.Context, proposal *model.Proposal) error
	Update(ctx context.Context, proposal *model.Proposal) error
	ReplaceLines(ctx context.Context, proposalID uuid.UUID, lines []model.ProposalLine) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	List(ctx context.Context, page, limit int) ([]model.Proposal, int64, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *model.Proposal) error {
	return GetDB(ctx, r.db).Create(proposal).Error
}

func (r *proposalRepository) Update(ctx context.Context, proposal *model.Proposal) error {
	return GetDB(ctx, r.db).Save(proposal).Error
}

// ReplaceLines swaps the full line set of a proposal. Old rows are removed
// outright so reused line IDs never collide.
func (r *proposalRepository) ReplaceLines(ctx context.Context, proposalID uuid.UUID, lines []model.ProposalLine) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("proposal_id = ?", proposalID).Delete(&model.ProposalLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ProposalID = proposalID
	}
	return db.Create(&lines).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	if err := GetDB(ctx, r.db).First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	err := GetDB(ctx, r.db).
		Preload("Lines").
		Preload("Lines.Article").
		Preload("Entity").
		First(&proposal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) List(ctx context.Context, page, limit int) ([]model.Proposal, int64, error) {
	var proposals []model.Proposal
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Proposal{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("Entity").
		Order("date DESC, number DESC").
		Offset(offset).Limit(limit).
		Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}

	return proposals, total, nil
}
