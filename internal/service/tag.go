package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// TagService handles the global tag catalog. Tags are not owned: any
// authenticated user may create one, and deleting a recipe never deletes a
// tag.
type TagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagService instance
func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// ListTags returns all tags ordered by name. Tag cardinality is assumed small
// enough that pagination is not worth it.
func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag inserts a tag. Name uniqueness is left to the database constraint;
// a duplicate insert comes back as ErrAlreadyExists. Color, when present, is
// only length-checked (7 characters, e.g. "#ff8800").
func (s *TagService) CreateTag(ctx context.Context, name, tagType, color string) (*models.Tag, error) {
	if name == "" || len(name) > 100 {
		return nil, fmt.Errorf("%w: tag name is required and must be at most 100 characters", ErrInvalidInput)
	}
	switch tagType {
	case models.TagTypeCuisine, models.TagTypeAllergen, models.TagTypeDietary:
	default:
		return nil, fmt.Errorf("%w: unknown tag type %q", ErrInvalidInput, tagType)
	}
	if color != "" && len(color) != 7 {
		return nil, fmt.Errorf("%w: color must be 7 characters", ErrInvalidInput)
	}

	tag := &models.Tag{
		Name:  name,
		Type:  tagType,
		Color: color,
	}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: tag %q", ErrAlreadyExists, name)
		}
		return nil, err
	}
	return tag, nil
}
