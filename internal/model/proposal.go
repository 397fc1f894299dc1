package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Proposal status constants
const (
	ProposalDraft  = "draft"
	ProposalClosed = "closed"
)

// Proposal is a sales quote made of line items, convertible to an order.
// Number comes from the sequence allocator, unique across proposals.
type Proposal struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Number     int64           `gorm:"uniqueIndex;not null" json:"number"`
	Date       time.Time       `gorm:"type:date;not null;index" json:"date"`
	ValidUntil *time.Time      `gorm:"type:date" json:"valid_until"`
	EntityID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"entity_id"`
	Entity     *Entity         `gorm:"foreignKey:EntityID" json:"entity,omitempty"`
	Status     string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"` // draft, closed
	ClosedAt   *time.Time      `json:"closed_at"`
	Total      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	Lines      []ProposalLine  `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ProposalLine is a single quoted item. LineTotal = Quantity * UnitPrice.
type ProposalLine struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProposalID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"proposal_id"`
	ArticleID   *uuid.UUID       `gorm:"type:uuid;index" json:"article_id"`
	Article     *Article         `gorm:"foreignKey:ArticleID" json:"article,omitempty"`
	Reference   string           `gorm:"type:varchar(255)" json:"reference"`
	Name        string           `gorm:"type:varchar(255)" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"unit_price"`
	CostPrice   *decimal.Decimal `gorm:"type:decimal(18,2)" json:"cost_price"`
	SupplierID  *uuid.UUID       `gorm:"type:uuid" json:"supplier_id"`
	LineTotal   decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"line_total"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
