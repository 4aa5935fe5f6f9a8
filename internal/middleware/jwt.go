package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admin-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
	"github.com/noah-isme/admin-dashboard-api/pkg/financeapi"
	"github.com/noah-isme/admin-dashboard-api/pkg/logger"
	"github.com/noah-isme/admin-dashboard-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// AccessTokenCookie is the cookie the admin panel stores its access token in.
	AccessTokenCookie = "access_token"
)

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects API routes by requiring a valid bearer token. The token is
// forwarded to the finance API on behalf of the caller.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token, ok := bearerFromHeader(header)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		authenticate(c, claims, token)
		c.Next()
	}
}

func authenticate(c *gin.Context, claims *models.JWTClaims, token string) {
	c.Set(ContextUserKey, claims)
	c.Set(logger.UserIDKey, claims.UserID)
	c.Request = c.Request.WithContext(financeapi.WithBearerToken(c.Request.Context(), token))
}

func bearerFromHeader(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// tokenFromRequest prefers the Authorization header and falls back to the session cookie.
func tokenFromRequest(c *gin.Context) string {
	if token, ok := bearerFromHeader(c.GetHeader("Authorization")); ok {
		return token
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// CurrentClaims returns the authenticated claims stored on the context.
func CurrentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}
