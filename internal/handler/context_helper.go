package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admin-dashboard-api/internal/middleware"
	"github.com/noah-isme/admin-dashboard-api/internal/models"
	"github.com/noah-isme/admin-dashboard-api/pkg/response"
)

// statusClientClosedRequest is logged when the caller went away before the response was ready.
const statusClientClosedRequest = 499

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// writeError renders err unless the caller already disconnected.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}
	response.Error(c, err)
}
