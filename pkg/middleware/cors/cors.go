// Package cors configures cross-origin access for the admin dashboard UI.
package cors

import (
	"strings"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New returns CORS middleware that reflects allowed origins with credentials.
// An empty list allows any origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	return gincors.New(Config(allowedOrigins))
}

// Config builds the gin-contrib configuration used by New.
func Config(allowedOrigins []string) gincors.Config {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if trimmed := normalizeOrigin(origin); trimmed != "" {
			originSet[trimmed] = struct{}{}
		}
	}

	return gincors.Config{
		AllowOriginFunc: func(origin string) bool {
			if len(originSet) == 0 {
				return true
			}
			_, ok := originSet[normalizeOrigin(origin)]
			return ok
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
