package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaKey      = "tempo.meta"
	metaStartKey = "tempo.meta_start"
)

// WithResponseMeta stamps the request start so envelopes can report processing time.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStartKey, time.Now())
		c.Set(metaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta attaches one entry to the envelope meta of the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	meta, ok := c.Value(metaKey).(map[string]interface{})
	if !ok {
		meta = map[string]interface{}{}
		c.Set(metaKey, meta)
	}
	meta[key] = value
}

// ExtractMeta returns the meta collected so far, adding processing_time_ms when
// WithResponseMeta ran. Call it right before writing the body.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta, _ := c.Value(metaKey).(map[string]interface{})
	if start, ok := c.Value(metaStartKey).(time.Time); ok {
		if meta == nil {
			meta = map[string]interface{}{}
			c.Set(metaKey, meta)
		}
		meta["processing_time_ms"] = time.Since(start).Milliseconds()
	}
	return meta
}
