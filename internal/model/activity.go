package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity categories (free-text channels, kept in line with the UI labels)
const (
	LogManagement = "gestão"
	LogSales      = "vendas"
	LogCalendar   = "calendário"
	LogSettings   = "configurações"
	LogAccess     = "acessos"
	LogAuth       = "autenticação"
)

// ActivityLog is an append-only record of a user action. Rows are never
// updated or deleted by application logic; there is no UpdatedAt on purpose.
type ActivityLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LogName     string     `gorm:"type:varchar(50);not null;index" json:"log_name"` // coarse channel, e.g. "vendas"
	CauserID    *uuid.UUID `gorm:"type:uuid;index" json:"causer_id"`                // nil for system actions
	Causer      *User      `gorm:"foreignKey:CauserID" json:"causer,omitempty"`
	SubjectType string     `gorm:"type:varchar(50);index" json:"subject_type"` // tagged union kind, e.g. "entity"
	SubjectID   string     `gorm:"type:varchar(50);index" json:"subject_id"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Properties  string     `gorm:"type:jsonb" json:"properties"` // {ip, user_agent, device?, ...extra}
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}
