package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admin-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
	"github.com/noah-isme/admin-dashboard-api/pkg/response"
)

var localePattern = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z]{2})?$`)

// RequireRoles rejects API callers whose role is not listed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !models.IsAdminPanelRole(claims.Role, roles) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminPanelGuard protects admin panel pages. Callers without a valid token or
// without an admin panel role are redirected to the login page of their locale.
func AdminPanelGuard(tokens TokenValidator, roles []models.UserRole, defaultLocale string) gin.HandlerFunc {
	if len(roles) == 0 {
		roles = models.DefaultAdminPanelRoles
	}
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			redirectToLogin(c, defaultLocale)
			return
		}
		claims, err := tokens.ValidateToken(token)
		if err != nil || !models.IsAdminPanelRole(claims.Role, roles) {
			redirectToLogin(c, defaultLocale)
			return
		}
		authenticate(c, claims, token)
		c.Next()
	}
}

// LoginPath builds the login location for a locale.
func LoginPath(locale, defaultLocale string) string {
	if !localePattern.MatchString(locale) {
		locale = defaultLocale
	}
	return "/" + locale + "/login"
}

func redirectToLogin(c *gin.Context, defaultLocale string) {
	c.Redirect(http.StatusFound, LoginPath(c.Param("locale"), defaultLocale))
	c.Abort()
}
