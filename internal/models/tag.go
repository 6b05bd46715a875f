package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag types. Tags are global: any authenticated user may create one and every
// recipe may reference it.
const (
	TagTypeCuisine  = "cuisine"
	TagTypeAllergen = "allergen"
	TagTypeDietary  = "dietary"
)

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Color     string    `gorm:"size:7" json:"color,omitempty"`
}

// RecipeTag is the join row between recipes and tags. Deleting either parent
// removes the row; the tag itself is never cascade-deleted by a recipe.
type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	TagID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"tag_id"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
