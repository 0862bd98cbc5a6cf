package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
	apierrors "github.com/kdt5-3rd/kdt5-3rd-back/internal/errors"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/services"
)

// AccessTokenValidator verifies bearer tokens.
type AccessTokenValidator interface {
	ValidateAccessToken(token string) (*services.TokenClaims, error)
}

// RequireAuth checks for a valid bearer access token
func RequireAuth(validator AccessTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		claims, err := validator.ValidateAccessToken(token)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
