package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	requestStartKey = "request_start"
	cacheHitKey     = "cache_hit"
	processingKey   = "processing_time_ms"
)

// WithResponseMeta records the request start and prepares the meta map that
// handlers attach to the response envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit marks whether the payload was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
}

// SetMeta stores an arbitrary meta entry for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ResponseMeta returns the collected meta with processing_time_ms stamped
// against the request start. Without WithResponseMeta the duration is zero.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	meta := ensureMeta(c)
	var elapsed time.Duration
	if raw, ok := c.Get(requestStartKey); ok {
		if start, ok := raw.(time.Time); ok {
			elapsed = time.Since(start)
		}
	}
	meta[processingKey] = elapsed.Milliseconds()
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if raw, ok := c.Get(responseMetaKey); ok {
		if typed, ok := raw.(map[string]interface{}); ok {
			return typed
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
