package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty levels accepted on a recipe.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Recipe is the aggregate root. Ingredients, steps and tag links live and die
// with it; tags themselves are global and survive recipe deletion.
type Recipe struct {
	ID              uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt       time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Title           string       `gorm:"size:255;not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description,omitempty"`
	Servings        *int         `json:"servings,omitempty"`
	PrepTimeMinutes *int         `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes *int         `json:"cook_time_minutes,omitempty"`
	Difficulty      string       `gorm:"size:20" json:"difficulty,omitempty"`
	ImageURL        string       `gorm:"size:500" json:"image_url,omitempty"`
	CreatedByID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"created_by_id"`
	CreatedBy       *User        `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Ingredients     []Ingredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	Steps           []RecipeStep `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"steps,omitempty"`
	Tags            []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
}

// Ingredient belongs to exactly one recipe. Amount is free text so callers can
// write "1/2" or "2-3" without a numeric schema fighting them.
type Ingredient struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Amount    string    `gorm:"size:50" json:"amount,omitempty"`
	Unit      string    `gorm:"size:50" json:"unit,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	SortOrder int       `gorm:"not null;default:0" json:"order"`
}

type RecipeStep struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RecipeID    uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	StepNumber  int       `gorm:"not null" json:"step_number"`
	Instruction string    `gorm:"type:text;not null" json:"instruction"`
	TimeMinutes *int      `json:"time_minutes,omitempty"`
	Temperature string    `gorm:"size:50" json:"temperature,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (s *RecipeStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
