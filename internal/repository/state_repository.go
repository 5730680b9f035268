package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateDocument is one whole persisted document (vehicles, schedule or logs).
type StateDocument struct {
	Key       string         `gorm:"type:varchar(128);primaryKey"`
	Body      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (StateDocument) TableName() string {
	return "app_state_documents"
}

type StateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Load decodes the document stored under key into dest. It reports false when
// no document has been written yet.
func (r *StateRepository) Load(ctx context.Context, key string, dest any) (bool, error) {
	var doc StateDocument
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(doc.Body, dest); err != nil {
		return false, fmt.Errorf("decode document %s: %w", key, err)
	}
	return true, nil
}

// Save replaces the document under key with value in a single upsert.
func (r *StateRepository) Save(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}
	doc := StateDocument{
		Key:  key,
		Body: datatypes.JSON(body),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).
		Create(&doc).Error
}
