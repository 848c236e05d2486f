package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekplan-api/internal/middleware"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
	"github.com/noah-isme/weekplan-api/pkg/response"
)

// requireUser returns the authenticated user id or writes 401.
func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

// bindJSON decodes the body into dest, writing 400 on failure. An empty body is
// accepted when optional is set.
func bindJSON(c *gin.Context, dest interface{}, optional bool, message string) bool {
	err := c.ShouldBindJSON(dest)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
	return false
}
