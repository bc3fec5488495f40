package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoredValue is one session entry in the stored_values table.
type StoredValue struct {
	StorageKey string `gorm:"column:storage_key;primaryKey;size:191"`
	Value      string `gorm:"type:text;not null"`
	UpdatedAt  time.Time
}

func (StoredValue) TableName() string {
	return "stored_values"
}

type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend migrates the stored_values table and returns a backend on db.
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&StoredValue{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stored_values: %w", err)
	}
	return &SQLBackend{db: db}, nil
}

func (s *SQLBackend) Get(ctx context.Context, key string) (string, error) {
	var row StoredValue
	if err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return row.Value, nil
}

func (s *SQLBackend) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&StoredValue{StorageKey: key, Value: value}).Error
}

func (s *SQLBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("storage_key IN ?", keys).Delete(&StoredValue{}).Error
}
