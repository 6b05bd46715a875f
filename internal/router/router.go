package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *api.AuthHandler
	Recipe  *api.RecipeHandler
	Tag     *api.TagHandler
	Profile *api.ProfileHandler
	Image   *api.ImageHandler
	Health  *api.HealthHandler
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, validator middleware.TokenValidator, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", h.Health.Health)

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/magic-link", h.Auth.RequestMagicLink)
		auth.GET("/verify", h.Auth.Verify)
		auth.POST("/verify", h.Auth.Verify)
	}

	// Public reads
	v1.GET("/recipes", h.Recipe.ListRecipes)
	v1.GET("/recipes/:id", h.Recipe.GetRecipe)
	v1.GET("/tags", h.Tag.ListTags)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		profile := protected.Group("/profile")
		{
			profile.GET("", h.Profile.GetProfile)
			profile.PUT("", h.Profile.UpdateProfile)
		}

		// Mutations additionally require a completed profile
		complete := protected.Group("")
		complete.Use(middleware.RequireCompleteProfile(db))
		{
			complete.POST("/recipes", h.Recipe.CreateRecipe)
			complete.PUT("/recipes/:id", h.Recipe.UpdateRecipe)
			complete.DELETE("/recipes/:id", h.Recipe.DeleteRecipe)
			complete.POST("/recipes/image", h.Image.UploadImage)
			complete.POST("/tags", h.Tag.CreateTag)
		}
	}

	return router
}
