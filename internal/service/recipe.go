package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// RecipeService handles recipe aggregate operations. A recipe and its
// children (ingredients, steps, tag links) are always written inside one
// transaction; readers never observe a partial aggregate.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientInput is one ingredient line of a recipe payload. Amount is free
// text ("1/2", "2-3") rather than a number.
type IngredientInput struct {
	Name   string
	Amount string
	Unit   string
	Notes  string
}

// StepInput is one instruction of a recipe payload. Any client-supplied step
// number is ignored; steps are renumbered from their position.
type StepInput struct {
	Instruction string
	TimeMinutes *int
	Temperature string
	Notes       string
}

// RecipeInput is the full aggregate payload for create and update.
type RecipeInput struct {
	Title           string
	Description     string
	Servings        *int
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Difficulty      string
	ImageURL        string
	Ingredients     []IngredientInput
	Steps           []StepInput
	TagIDs          []uuid.UUID
}

func (in *RecipeInput) validate() error {
	if in.Title == "" || len(in.Title) > 255 {
		return fmt.Errorf("%w: title is required and must be at most 255 characters", ErrInvalidInput)
	}
	if len(in.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrInvalidInput)
	}
	for i, ing := range in.Ingredients {
		if ing.Name == "" {
			return fmt.Errorf("%w: ingredient %d has no name", ErrInvalidInput, i)
		}
	}
	if len(in.Steps) == 0 {
		return fmt.Errorf("%w: at least one step is required", ErrInvalidInput)
	}
	for i, st := range in.Steps {
		if st.Instruction == "" {
			return fmt.Errorf("%w: step %d has no instruction", ErrInvalidInput, i)
		}
	}
	switch in.Difficulty {
	case "", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, in.Difficulty)
	}
	return nil
}

// assertOwner is the ownership precondition for update and delete. It runs
// before any mutating transaction opens so a non-owner can never cause a
// partial write.
func assertOwner(recipe *models.Recipe, userID uuid.UUID) error {
	if recipe.CreatedByID != userID {
		return fmt.Errorf("%w: only the recipe creator may modify it", ErrForbidden)
	}
	return nil
}

// CreateRecipe persists the aggregate atomically and returns the recipe row
// without children.
func (s *RecipeService) CreateRecipe(ctx context.Context, input *RecipeInput, userID uuid.UUID) (*models.Recipe, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:           input.Title,
		Description:     input.Description,
		Servings:        input.Servings,
		PrepTimeMinutes: input.PrepTimeMinutes,
		CookTimeMinutes: input.CookTimeMinutes,
		Difficulty:      input.Difficulty,
		ImageURL:        input.ImageURL,
		CreatedByID:     userID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return insertChildren(tx, recipe.ID, input)
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// UpdateRecipe replaces the recipe's mutable fields and all of its children.
// Children are deleted and reinserted wholesale; there is no diffing, so any
// child omitted from the payload is gone after the call.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, input *RecipeInput, userID uuid.UUID) (*models.Recipe, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var existing models.Recipe
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, id)
		}
		return nil, err
	}
	if err := assertOwner(&existing, userID); err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Servings = input.Servings
	existing.PrepTimeMinutes = input.PrepTimeMinutes
	existing.CookTimeMinutes = input.CookTimeMinutes
	existing.Difficulty = input.Difficulty
	existing.ImageURL = input.ImageURL

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		return insertChildren(tx, id, input)
	})
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// DeleteRecipe removes the recipe and its children. Tag rows themselves are
// left intact; only the join rows go.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	var existing models.Recipe
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: recipe %s", ErrNotFound, id)
		}
		return err
	}
	if err := assertOwner(&existing, userID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

// insertChildren writes ingredient, step and tag-link rows for a recipe.
// Ingredient order and step numbers are re-derived from array position,
// overriding whatever the client sent.
func insertChildren(tx *gorm.DB, recipeID uuid.UUID, input *RecipeInput) error {
	ingredients := make([]models.Ingredient, len(input.Ingredients))
	for i, ing := range input.Ingredients {
		ingredients[i] = models.Ingredient{
			RecipeID:  recipeID,
			Name:      ing.Name,
			Amount:    ing.Amount,
			Unit:      ing.Unit,
			Notes:     ing.Notes,
			SortOrder: i,
		}
	}
	if err := tx.Create(&ingredients).Error; err != nil {
		return fmt.Errorf("failed to create ingredients: %w", err)
	}

	steps := make([]models.RecipeStep, len(input.Steps))
	for i, st := range input.Steps {
		steps[i] = models.RecipeStep{
			RecipeID:    recipeID,
			StepNumber:  i + 1,
			Instruction: st.Instruction,
			TimeMinutes: st.TimeMinutes,
			Temperature: st.Temperature,
			Notes:       st.Notes,
		}
	}
	if err := tx.Create(&steps).Error; err != nil {
		return fmt.Errorf("failed to create steps: %w", err)
	}

	if len(input.TagIDs) > 0 {
		links := make([]models.RecipeTag, len(input.TagIDs))
		for i, tagID := range input.TagIDs {
			links[i] = models.RecipeTag{RecipeID: recipeID, TagID: tagID}
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("failed to link tags: %w", err)
		}
	}
	return nil
}

func deleteChildren(tx *gorm.DB, recipeID uuid.UUID) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Ingredient{}).Error; err != nil {
		return fmt.Errorf("failed to delete ingredients: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeStep{}).Error; err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("failed to delete tag links: %w", err)
	}
	return nil
}

// GetRecipe retrieves a recipe with its children, owner and tags. Readable by
// anyone; there is no ownership check on reads.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("CreatedBy", ownerColumns).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC")
		}).
		Preload("Tags").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &recipe, nil
}

// ownerColumns keeps the owner's email out of public recipe payloads.
func ownerColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "image")
}

// ListParams controls cursor pagination for ListRecipes.
type ListParams struct {
	// Limit defaults to 20 and is clamped to [1,100].
	Limit int
	// Cursor is the id of the first recipe of the requested page, as returned
	// in a previous call's next cursor.
	Cursor *uuid.UUID
	// TagIDs, when non-empty, restricts the list to recipes carrying at least
	// one of the tags.
	TagIDs []uuid.UUID
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListRecipes returns one page of recipes, most recent first, plus the cursor
// for the next page (nil at end of list). It fetches limit+1 rows and pops
// the extra one off to learn whether another page exists.
func (s *RecipeService) ListRecipes(ctx context.Context, params ListParams) ([]models.Recipe, *uuid.UUID, error) {
	limit := params.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Order("created_at DESC, id DESC")

	if params.Cursor != nil {
		// The cursor is the first row of the page, so the range filter is
		// inclusive of the cursor position. A cursor whose row has since been
		// deleted restarts from the top.
		var anchor models.Recipe
		err := s.db.WithContext(ctx).Select("id", "created_at").
			First(&anchor, "id = ?", *params.Cursor).Error
		switch {
		case err == nil:
			query = query.Where(
				"created_at < ? OR (created_at = ? AND id <= ?)",
				anchor.CreatedAt, anchor.CreatedAt, anchor.ID,
			)
		case err == gorm.ErrRecordNotFound:
			// fall through without a cursor filter
		default:
			return nil, nil, err
		}
	}

	if len(params.TagIDs) > 0 {
		tagged := s.db.Model(&models.RecipeTag{}).
			Select("recipe_id").
			Where("tag_id IN ?", params.TagIDs)
		query = query.Where("id IN (?)", tagged)
	}

	var recipes []models.Recipe
	err := query.Limit(limit + 1).
		Preload("CreatedBy", ownerColumns).
		Preload("Tags").
		Find(&recipes).Error
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *uuid.UUID
	if len(recipes) > limit {
		next := recipes[limit].ID
		nextCursor = &next
		recipes = recipes[:limit]
	}
	return recipes, nextCursor, nil
}
