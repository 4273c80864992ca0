package services

import (
	"context"
	"errors"
	"strings"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProfileService reads and saves the profile of a verified identity.
type ProfileService struct {
	repo     repositories.ProfileRepository
	validate *validator.Validate
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo repositories.ProfileRepository) *ProfileService {
	return &ProfileService{
		repo:     repo,
		validate: newValidator(),
	}
}

// GetProfile returns the caller's profile, or nil when none was saved yet.
func (s *ProfileService) GetProfile(ctx context.Context, identity *models.AuthenticatedIdentity) (*models.Profile, error) {
	if identity == nil || identity.Subject == "" {
		return nil, ErrUnauthorized
	}
	profile, err := s.repo.GetBySubject(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// SaveProfile creates the caller's profile or updates it in place.
// Saving the values already stored leaves the record untouched.
func (s *ProfileService) SaveProfile(ctx context.Context, identity *models.AuthenticatedIdentity, in models.ProfileInput) (*models.Profile, error) {
	if identity == nil || identity.Subject == "" {
		return nil, ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(s.validate, "missing required profile fields", in); err != nil {
		return nil, err
	}

	existing, err := s.GetProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	if existing != nil && sameContact(existing, in) {
		return existing, nil
	}

	return s.repo.Upsert(ctx, &models.Profile{
		Subject:    identity.Subject,
		Name:       in.Name,
		Email:      in.Email,
		Address:    in.Address,
		PostalCode: in.PostalCode,
	})
}

func sameContact(p *models.Profile, in models.ProfileInput) bool {
	return p.Name == in.Name &&
		p.Email == in.Email &&
		p.Address == in.Address &&
		p.PostalCode == in.PostalCode
}
