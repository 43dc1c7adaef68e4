package keyvalue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// slotRow is the single-row-per-key table backing the GORM store.
type slotRow struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (slotRow) TableName() string {
	return "cart_slots"
}

// GormStore persists slots in a relational table (sqlite or postgres).
type GormStore struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm handle required")
	}
	return &GormStore{db: db}, nil
}

// AutoMigrate creates the slot table; used by tests and dev bootstrap.
// Production postgres deployments run the goose migration instead.
func (s *GormStore) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&slotRow{})
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row slotRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading slot %q: %w", key, err)
	}
	return row.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	row := slotRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("writing slot %q: %w", key, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&slotRow{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("deleting slot %q: %w", key, err)
	}
	return nil
}
