package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tienda/internal/models"

	"github.com/google/uuid"
)

// MemoryProfileRepository is an in-memory implementation of ProfileRepository
// keyed by identity subject.
type MemoryProfileRepository struct {
	profiles map[string]models.Profile
	mu       sync.RWMutex
}

// NewMemoryProfileRepository creates a new instance of MemoryProfileRepository.
func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{
		profiles: make(map[string]models.Profile),
	}
}

// GetBySubject returns the profile owned by subject.
func (r *MemoryProfileRepository) GetBySubject(_ context.Context, subject string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[subject]
	if !ok {
		return nil, fmt.Errorf("profile for subject %s: %w", subject, ErrNotFound)
	}
	return &profile, nil
}

// Upsert creates or updates the profile for profile.Subject.
func (r *MemoryProfileRepository) Upsert(_ context.Context, profile *models.Profile) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored, ok := r.profiles[profile.Subject]
	if !ok {
		stored = models.Profile{
			ID:        uuid.New().String(),
			Subject:   profile.Subject,
			CreatedAt: now,
		}
	}
	stored.Name = profile.Name
	stored.Email = profile.Email
	stored.Address = profile.Address
	stored.PostalCode = profile.PostalCode
	stored.UpdatedAt = now
	r.profiles[profile.Subject] = stored

	out := stored
	return &out, nil
}
