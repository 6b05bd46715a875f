// Package api contains the HTTP handlers and their request/response shapes.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/service"
)

// IngredientRequest is one ingredient line in a recipe payload. Order is
// accepted for wire compatibility but re-derived from array position.
type IngredientRequest struct {
	Name   string `json:"name" binding:"required"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Notes  string `json:"notes"`
	Order  int    `json:"order" binding:"omitempty,min=0"`
}

// StepRequest is one instruction in a recipe payload. StepNumber is accepted
// but steps are renumbered 1..N from their position.
type StepRequest struct {
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction" binding:"required"`
	TimeMinutes *int   `json:"time_minutes" binding:"omitempty,min=0"`
	Temperature string `json:"temperature"`
	Notes       string `json:"notes"`
}

// RecipeRequest is the aggregate payload for create and update.
type RecipeRequest struct {
	Title           string              `json:"title" binding:"required,max=255"`
	Description     string              `json:"description"`
	Servings        *int                `json:"servings" binding:"omitempty,min=1"`
	PrepTimeMinutes *int                `json:"prep_time_minutes" binding:"omitempty,min=0"`
	CookTimeMinutes *int                `json:"cook_time_minutes" binding:"omitempty,min=0"`
	Difficulty      string              `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	ImageURL        string              `json:"image_url" binding:"omitempty,url"`
	Ingredients     []IngredientRequest `json:"ingredients" binding:"required,min=1,dive"`
	Steps           []StepRequest       `json:"steps" binding:"required,min=1,dive"`
	TagIDs          []uuid.UUID         `json:"tag_ids"`
}

func (r *RecipeRequest) toInput() *service.RecipeInput {
	input := &service.RecipeInput{
		Title:           r.Title,
		Description:     r.Description,
		Servings:        r.Servings,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Difficulty:      r.Difficulty,
		ImageURL:        r.ImageURL,
		TagIDs:          r.TagIDs,
	}
	for _, ing := range r.Ingredients {
		input.Ingredients = append(input.Ingredients, service.IngredientInput{
			Name:   ing.Name,
			Amount: ing.Amount,
			Unit:   ing.Unit,
			Notes:  ing.Notes,
		})
	}
	for _, st := range r.Steps {
		input.Steps = append(input.Steps, service.StepInput{
			Instruction: st.Instruction,
			TimeMinutes: st.TimeMinutes,
			Temperature: st.Temperature,
			Notes:       st.Notes,
		})
	}
	return input
}

// CreateTagRequest creates one global tag.
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Type  string `json:"type" binding:"required,oneof=cuisine allergen dietary"`
	Color string `json:"color" binding:"omitempty,len=7"`
}

// UpdateProfileRequest sets the caller's display name.
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// MagicLinkRequest asks for a sign-in link.
type MagicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyRequest exchanges a magic-link token for a session.
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// ListRecipesResponse is one page of recipes plus the cursor for the next.
type ListRecipesResponse struct {
	Recipes    []models.Recipe `json:"recipes"`
	NextCursor *uuid.UUID      `json:"next_cursor,omitempty"`
}

// respondError maps service sentinel errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// currentUserID pulls the authenticated user's id out of the gin context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	return userID, ok
}
