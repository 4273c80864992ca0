package repositories

import (
	"context"

	"tienda/internal/models"
)

// ProfileRepository defines the interface for profile data access.
type ProfileRepository interface {
	GetBySubject(ctx context.Context, subject string) (*models.Profile, error)
	// Upsert creates the profile for profile.Subject or updates it in place,
	// returning the stored record.
	Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}
