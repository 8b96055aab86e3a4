package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumehub/api/internal/service"
)

const (
	ContextUser          = "current_user"
	ContextAccessClaims  = "access_claims"
	ContextRefreshClaims = "refresh_claims"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// Auth gates protected routes on a valid access token and loads the caller's
// account into the request context.
func Auth(sessions *service.SessionManager, users service.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := sessions.VerifyAccess(tokenStr)
		if err != nil {
			abortAuthError(c, err)
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		c.Set(ContextAccessClaims, *claims)
		c.Set(ContextUser, user)

		c.Next()
	}
}

// RefreshAuth gates the rotate and logout routes. The refresh token passes
// both the signature check and the stored-hash comparison before the
// handler runs.
func RefreshAuth(sessions *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := sessions.VerifyRefresh(c.Request.Context(), tokenStr)
		if err != nil {
			abortAuthError(c, err)
			return
		}

		c.Set(ContextRefreshClaims, *claims)

		c.Next()
	}
}

func abortAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token_expired"})
	case errors.Is(err, service.ErrPersistenceUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "persistence_unavailable"})
	default:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
	}
}
