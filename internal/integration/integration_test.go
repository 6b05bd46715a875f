// Package integration exercises the service layer against a real PostgreSQL
// instance, including the SQL migrations the unit tests skip. Requires Docker;
// skipped when it is not available.
package integration

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/service"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available, skipping integration test")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections"),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test sslmode=disable",
		host, port.Port())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(db, "../../migrations"))
	return db
}

func TestRecipeLifecycleOnPostgres(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	recipes := service.NewRecipeService(db)
	tags := service.NewTagService(db)
	profiles := service.NewProfileService(db)

	owner := &models.User{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(owner).Error)

	vegan, err := tags.CreateTag(ctx, "vegan", models.TagTypeDietary, "#006400")
	require.NoError(t, err)

	// the unique constraint comes back as a conflict, not a raw pq error
	_, err = tags.CreateTag(ctx, "vegan", models.TagTypeDietary, "")
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	created, err := recipes.CreateRecipe(ctx, &service.RecipeInput{
		Title: "Minestrone",
		Ingredients: []service.IngredientInput{
			{Name: "Beans", Amount: "400", Unit: "g"},
			{Name: "Vegetable stock", Amount: "1", Unit: "l"},
		},
		Steps: []service.StepInput{
			{Instruction: "Simmer the stock"},
			{Instruction: "Add the beans"},
		},
		TagIDs: []uuid.UUID{vegan.ID},
	}, owner.ID)
	require.NoError(t, err)

	got, err := recipes.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "Beans", got.Ingredients[0].Name)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, 2, got.Steps[1].StepNumber)

	_, err = recipes.UpdateRecipe(ctx, created.ID, &service.RecipeInput{
		Title:       "Minestrone",
		Ingredients: []service.IngredientInput{{Name: "Beans"}},
		Steps:       []service.StepInput{{Instruction: "Simmer everything"}},
	}, owner.ID)
	require.NoError(t, err)

	page, next, err := recipes.ListRecipes(ctx, service.ListParams{})
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Nil(t, next)

	require.NoError(t, recipes.DeleteRecipe(ctx, created.ID, owner.ID))

	// tags survive recipe deletion
	remaining, err := tags.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, vegan.ID, remaining[0].ID)

	updated, err := profiles.UpdateProfile(ctx, owner.ID, "Alice B")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
}
