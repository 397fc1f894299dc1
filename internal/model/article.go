package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Article is a catalog item proposals can reference
type Article struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Reference   string           `gorm:"type:varchar(255)" json:"reference"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Price       decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"price"`
	VATRate     *decimal.Decimal `gorm:"type:decimal(5,2)" json:"vat_rate"`
	Photo       string           `gorm:"type:varchar(255)" json:"photo"` // stored path, bytes live in file storage
	Notes       string           `gorm:"type:text" json:"notes"`
	IsActive    bool             `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}
