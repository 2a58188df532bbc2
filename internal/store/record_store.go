package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"intervue/internal/models"
)

// RecordRepository is the transcript store: completed interviews land here
// once and are never mutated afterwards.
type RecordRepository struct {
	DB *gorm.DB
}

func NewRecordRepository(db *gorm.DB) (*RecordRepository, error) {
	if err := db.AutoMigrate(&models.InterviewRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate record store: %w", err)
	}
	return &RecordRepository{DB: db}, nil
}

// Commit writes the record, treating a re-commit of the same record ID as a
// no-op so the archival retry job stays idempotent.
func (r *RecordRepository) Commit(ctx context.Context, record *models.InterviewRecord) error {
	var existing models.InterviewRecord

	err := r.DB.WithContext(ctx).
		Where("record_id = ?", record.RecordID).
		First(&existing).Error

	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err // actual DB error
	}

	return r.DB.WithContext(ctx).Create(record).Error
}

// List returns committed records newest first, optionally filtered by a
// case-insensitive name or email match.
func (r *RecordRepository) List(ctx context.Context, search string) ([]models.InterviewRecord, error) {
	records := []models.InterviewRecord{}

	query := r.DB.WithContext(ctx).Order("completed_at DESC")
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(candidate_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	err := query.Find(&records).Error
	return records, err
}

// GetByRecordID retrieves one committed transcript.
func (r *RecordRepository) GetByRecordID(ctx context.Context, recordID string) (*models.InterviewRecord, error) {
	var record models.InterviewRecord
	err := r.DB.WithContext(ctx).
		Where("record_id = ?", recordID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
