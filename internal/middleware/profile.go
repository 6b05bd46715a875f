package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// RequireCompleteProfile blocks mutation routes for users who have not set a
// display name yet. The web client redirects them to profile setup; the API
// answers 403 with a stable code.
func RequireCompleteProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		userID, ok := userIDVal.(uuid.UUID)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		var user models.User
		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify user status"})
			c.Abort()
			return
		}

		if !user.HasCompleteProfile() {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "profile incomplete",
				"code":    "PROFILE_INCOMPLETE",
				"message": "Please set your name before creating content",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
