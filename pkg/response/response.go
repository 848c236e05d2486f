package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

const (
	// MetaKey is the gin context key under which middleware collects response metadata.
	MetaKey = "responseMeta"
	// StartKey holds the request start time; when set, envelopes carry processing_time_ms.
	StartKey = "responseStart"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// SetMeta records a metadata entry that the next envelope written for c will carry.
func SetMeta(c *gin.Context, key string, value interface{}) {
	meta, _ := c.Get(MetaKey)
	values, ok := meta.(map[string]interface{})
	if !ok {
		values = map[string]interface{}{}
	}
	values[key] = value
	c.Set(MetaKey, values)
}

func collectMeta(c *gin.Context, extra []map[string]interface{}) map[string]interface{} {
	var out map[string]interface{}
	if stored, ok := c.Get(MetaKey); ok {
		if values, ok := stored.(map[string]interface{}); ok && len(values) > 0 {
			out = make(map[string]interface{}, len(values))
			for k, v := range values {
				out[k] = v
			}
		}
	}
	if started, ok := c.Get(StartKey); ok {
		if at, ok := started.(time.Time); ok {
			if out == nil {
				out = map[string]interface{}{}
			}
			out["processing_time_ms"] = time.Since(at).Milliseconds()
		}
	}
	for _, m := range extra {
		for k, v := range m {
			if out == nil {
				out = map[string]interface{}{}
			}
			out[k] = v
		}
	}
	return out
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data, Meta: collectMeta(c, meta)})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Accepted responds with HTTP 202 for work handed to a background queue.
func Accepted(c *gin.Context, data interface{}) {
	JSON(c, http.StatusAccepted, data)
}

// Attachment streams a rendered file download.
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, body)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(appErr)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr, Meta: collectMeta(c, nil)})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
