package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// ProfileService handles the authenticated user's own profile.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile returns the caller's user row.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile sets the user's display name. Setting a non-empty name is
// what completes profile setup and unlocks recipe creation.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	if name == "" || len(name) > 255 {
		return nil, fmt.Errorf("%w: name is required and must be at most 255 characters", ErrInvalidInput)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if err := s.db.WithContext(ctx).Model(user).Update("name", name).Error; err != nil {
		return nil, err
	}
	return user, nil
}
