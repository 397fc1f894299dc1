package model

import (
	"time"

	"github.com/google/uuid"
)

// Company holds the single-row company settings record. Logo stores only the
// path; the bytes live in file storage.
type Company struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255)" json:"name"`
	Logo       string    `gorm:"type:varchar(255)" json:"logo"`
	Address    string    `gorm:"type:varchar(1024)" json:"address"`
	PostalCode string    `gorm:"type:varchar(64)" json:"postal_code"`
	Locality   string    `gorm:"type:varchar(255)" json:"locality"`
	TaxNumber  string    `gorm:"type:varchar(64)" json:"tax_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
