package model

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a named permission group
type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	IsSystem    bool         `gorm:"default:false" json:"is_system"` // seeded roles cannot be deleted
	DeniedMenus string       `gorm:"type:varchar(255)" json:"denied_menus"` // comma-separated menu deny-list applied on seeding
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission is a single "<menu>:<action>" grant. Rows are created lazily on
// first use and never duplicated (unique index on name, first wins).
type Permission struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // e.g. "menu-sales:create"
	CreatedAt time.Time `json:"created_at"`
}
