// Command seedtags inserts the starter tag catalog. Safe to re-run; tags
// that already exist are skipped.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/service"
)

var starterTags = []struct {
	name    string
	tagType string
	color   string
}{
	{"italian", models.TagTypeCuisine, "#2e8b57"},
	{"mexican", models.TagTypeCuisine, "#d2691e"},
	{"japanese", models.TagTypeCuisine, "#b22222"},
	{"indian", models.TagTypeCuisine, "#ff8c00"},
	{"french", models.TagTypeCuisine, "#4169e1"},
	{"gluten", models.TagTypeAllergen, "#cd5c5c"},
	{"dairy", models.TagTypeAllergen, "#deb887"},
	{"nuts", models.TagTypeAllergen, "#8b4513"},
	{"shellfish", models.TagTypeAllergen, "#e9967a"},
	{"vegetarian", models.TagTypeDietary, "#228b22"},
	{"vegan", models.TagTypeDietary, "#006400"},
	{"keto", models.TagTypeDietary, "#483d8b"},
	{"paleo", models.TagTypeDietary, "#a0522d"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	tags := service.NewTagService(db)
	ctx := context.Background()

	created := 0
	for _, t := range starterTags {
		_, err := tags.CreateTag(ctx, t.name, t.tagType, t.color)
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrAlreadyExists):
			// already seeded
		default:
			log.Fatalf("failed to create tag %q: %v", t.name, err)
		}
	}

	log.Printf("seeded %d tags (%d already present)", created, len(starterTags)-created)
}
