package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity represents a business partner: a client, a supplier, or both.
// Number is assigned by the sequence allocator at creation time and never
// changes or gets reused afterwards, even when the row is deleted.
type Entity struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Number      int64          `gorm:"uniqueIndex;not null" json:"number"`
	IsClient    bool           `gorm:"default:false;index" json:"is_client"`
	IsSupplier  bool           `gorm:"default:false;index" json:"is_supplier"`
	NIF         *string        `gorm:"type:varchar(50);uniqueIndex" json:"nif"` // tax number, validated against VIES
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Address     string         `gorm:"type:varchar(1000)" json:"address"`
	PostalCode  string         `gorm:"type:varchar(20)" json:"postal_code"`
	City        string         `gorm:"type:varchar(255)" json:"city"`
	CountryID   *int64         `json:"country_id"`
	Phone       string         `gorm:"type:varchar(50)" json:"phone"`
	Mobile      string         `gorm:"type:varchar(50)" json:"mobile"`
	Website     string         `gorm:"type:varchar(255)" json:"website"`
	Email       string         `gorm:"type:varchar(255)" json:"email"`
	RGPDConsent bool           `gorm:"default:false" json:"rgpd_consent"`
	Notes       string         `gorm:"type:text" json:"notes"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
