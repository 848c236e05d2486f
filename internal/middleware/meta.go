package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekplan-api/pkg/middleware/requestid"
	"github.com/noah-isme/weekplan-api/pkg/response"
)

const (
	// CacheHeader reports whether an analysis response was served from cache.
	CacheHeader = "X-Cache"
	cacheHitKey = "cache_hit"
)

// WithResponseMeta stamps the request start and id so every envelope carries them.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(response.StartKey, time.Now())
		if id := requestid.Value(c); id != "" {
			response.SetMeta(c, "request_id", id)
		}
		c.Next()
	}
}

// SetCacheHit records cache usage in the envelope meta and the X-Cache header.
func SetCacheHit(c *gin.Context, hit bool) {
	response.SetMeta(c, cacheHitKey, hit)
	if hit {
		c.Header(CacheHeader, "HIT")
		return
	}
	c.Header(CacheHeader, "MISS")
}
