package model

import (
	"time"

	"github.com/google/uuid"
)

// CalendarEvent state constants
const (
	EventPlanned   = "planned"
	EventConfirmed = "confirmed"
	EventDone      = "done"
	EventCancelled = "cancelled"
)

// CalendarEvent is an entry in the shared team calendar. The owning user
// cascades; entity, type and action references null out on delete.
type CalendarEvent struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	EntityID         *uuid.UUID      `gorm:"type:uuid;index" json:"entity_id"`
	Entity           *Entity         `gorm:"foreignKey:EntityID;constraint:OnDelete:SET NULL" json:"entity,omitempty"`
	CalendarTypeID   *uuid.UUID      `gorm:"type:uuid" json:"calendar_type_id"`
	Type             *CalendarType   `gorm:"foreignKey:CalendarTypeID;constraint:OnDelete:SET NULL" json:"type,omitempty"`
	CalendarActionID *uuid.UUID      `gorm:"type:uuid" json:"calendar_action_id"`
	Action           *CalendarAction `gorm:"foreignKey:CalendarActionID;constraint:OnDelete:SET NULL" json:"action,omitempty"`
	StartAt          time.Time       `gorm:"not null;index" json:"start_at"`
	EndAt            *time.Time      `json:"end_at"`
	DurationMinutes  *int            `json:"duration_minutes"`
	Shared           bool            `gorm:"default:false" json:"shared"`
	Knowledge        string          `gorm:"type:varchar(255)" json:"knowledge"`
	Description      string          `gorm:"type:text" json:"description"`
	State            string          `gorm:"type:varchar(20);not null;default:'planned'" json:"state"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CalendarType classifies events (meeting, visit, call...)
type CalendarType struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CalendarAction is the follow-up action attached to an event
type CalendarAction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
