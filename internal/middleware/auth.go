package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/palengke-ph/backend/internal/auth"
)

const (
	// UserIDKey is the gin context key holding the authenticated user ID.
	UserIDKey = "user_id"
	// EmailKey is the gin context key holding the authenticated email.
	EmailKey = "email"
)

// GetUserID extracts the authenticated user ID from the request context.
// Returns empty string if the request is unauthenticated.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(UserIDKey)
	s, _ := userID.(string)
	return s
}

// RequireAuth validates the bearer token and stores the session identity
// on the request context. Requests without a valid token are rejected
// with 401.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := validate(c, jwtManager)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// OptionalAuth stores the session identity when a valid token is present
// but never rejects the request.
func OptionalAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := validate(c, jwtManager); err == nil {
			c.Set(UserIDKey, claims.UserID)
			c.Set(EmailKey, claims.Email)
		}
		c.Next()
	}
}

func validate(c *gin.Context, jwtManager *auth.JWTManager) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}
	return jwtManager.Validate(parts[1])
}
