package database

import (
	"backoffice/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey, which the sequence allocator retry relies on.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate auto-migrates the core models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Permission{},
		&model.Entity{},
		&model.Article{},
		&model.Proposal{},
		&model.ProposalLine{},
		&model.CalendarType{},
		&model.CalendarAction{},
		&model.CalendarEvent{},
		&model.Company{},
		&model.ActivityLog{},
	)
}
