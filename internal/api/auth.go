package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

// AuthHandler exposes the magic-link sign-in flow.
type AuthHandler struct {
	auth    *service.AuthService
	limiter *middleware.RateLimiter
}

// NewAuthHandler creates a new AuthHandler instance. The limiter may be nil,
// which disables per-email throttling (tests).
func NewAuthHandler(auth *service.AuthService, limiter *middleware.RateLimiter) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

// RequestMagicLink handles POST /auth/magic-link. The response does not
// reveal whether the address was already registered.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if h.limiter != nil {
		allowed, _, _, err := h.limiter.IsAllowed(c.Request.Context(), email)
		if err == nil && !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many sign-in requests, try again later"})
			return
		}
	}

	if err := h.auth.RequestMagicLink(c.Request.Context(), email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "check your email for a sign-in link"})
}

// Verify handles POST /auth/verify and GET /auth/verify?token=. It exchanges
// a one-time magic-link token for a session token.
func (h *AuthHandler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		var req VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token = req.Token
	}

	sessionToken, user, err := h.auth.VerifyMagicLink(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": sessionToken,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"image": user.Image,
		},
	})
}
