package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/pkg/response"
)

type preferenceService interface {
	Get(ctx context.Context, userID string) (*models.SchedulePreference, error)
	Upsert(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*models.SchedulePreference, error)
}

// PreferenceHandler exposes /me/preferences.
type PreferenceHandler struct {
	service preferenceService
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(service preferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// Get godoc
// @Summary Get stored schedule preferences
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	pref, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref)
}

// Update godoc
// @Summary Replace stored schedule preferences
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdatePreferencesRequest true "Preferences"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me/preferences [put]
func (h *PreferenceHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdatePreferencesRequest
	if !bindJSON(c, &req, false, "invalid preferences payload") {
		return
	}
	pref, err := h.service.Upsert(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref)
}
