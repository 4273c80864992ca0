package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tienda/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

// NewGORMProfileRepository creates a new instance of GORMProfileRepository.
func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{
		db: db,
	}
}

// GetBySubject retrieves the profile owned by subject.
func (r *GORMProfileRepository) GetBySubject(ctx context.Context, subject string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "subject = ?", subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile for subject %s: %w", subject, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile for subject %s: %w", subject, err)
	}
	return &profile, nil
}

// Upsert inserts the profile or, when the subject already exists, updates its
// contact fields. The id and creation time of an existing row are kept.
func (r *GORMProfileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	row := *profile
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	row.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "address", "postal_code", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile for subject %s: %w", profile.Subject, err)
	}
	return r.GetBySubject(ctx, profile.Subject)
}
