package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// NumberAllocator hands out the next incremental business number for a record
// type (entities, proposals). The computed value is max(number)+1, or 1 when
// no rows exist. It MUST be called inside the same transaction as the insert
// that consumes the number; the unique index on the number column rejects the
// losing side of a race, and the caller retries the whole transaction once
// before giving up.
type NumberAllocator interface {
	NextNumber(ctx context.Context, recordType interface{}) (int64, error)
}

type numberAllocator struct {
	db *gorm.DB
}

func NewNumberAllocator(db *gorm.DB) NumberAllocator {
	return &numberAllocator{db: db}
}

func (a *numberAllocator) NextNumber(ctx context.Context, recordType interface{}) (int64, error) {
	var max int64
	// Unscoped: numbers of soft-deleted rows are never reused
	err := GetDB(ctx, a.db).
		Model(recordType).
		Unscoped().
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation. The
// string fallback covers drivers that bypass gorm's error translation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
