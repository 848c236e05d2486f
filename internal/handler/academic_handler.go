package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/middleware"
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/pkg/response"
)

type academicService interface {
	DetectConflicts(ctx context.Context, req dto.CourseSetRequest) ([]models.CourseConflict, bool, error)
	EstimateWorkload(ctx context.Context, req dto.CourseSetRequest) (*dto.WorkloadResponse, bool, error)
	Recommend(ctx context.Context, ownerID string, req dto.RecommendationRequest) ([]models.CourseRecommendation, bool, error)
	Feasibility(ctx context.Context, ownerID string, req dto.FeasibilityRequest) (*models.FeasibilityReport, bool, error)
	AnalyzeStored(ctx context.Context, userID string) (*dto.CourseAnalysisResponse, bool, error)
}

// AcademicHandler exposes the course analysis endpoints.
type AcademicHandler struct {
	service academicService
}

// NewAcademicHandler constructs the handler.
func NewAcademicHandler(service academicService) *AcademicHandler {
	return &AcademicHandler{service: service}
}

// Conflicts godoc
// @Summary Detect course conflicts
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CourseSetRequest true "Course set"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/conflicts [post]
func (h *AcademicHandler) Conflicts(c *gin.Context) {
	var req dto.CourseSetRequest
	if !bindJSON(c, &req, false, "invalid course set") {
		return
	}
	conflicts, hit, err := h.service.DetectConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, conflicts, map[string]interface{}{"count": len(conflicts)})
}

// Workload godoc
// @Summary Estimate weekly workload
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CourseSetRequest true "Course set"
// @Success 200 {object} response.Envelope
// @Router /courses/workload [post]
func (h *AcademicHandler) Workload(c *gin.Context) {
	var req dto.CourseSetRequest
	if !bindJSON(c, &req, false, "invalid course set") {
		return
	}
	workload, hit, err := h.service.EstimateWorkload(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, workload)
}

// Recommendations godoc
// @Summary Recommend candidate courses
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.RecommendationRequest true "Current state and candidates"
// @Success 200 {object} response.Envelope
// @Router /courses/recommendations [post]
func (h *AcademicHandler) Recommendations(c *gin.Context) {
	var req dto.RecommendationRequest
	if !bindJSON(c, &req, false, "invalid recommendation payload") {
		return
	}
	recs, hit, err := h.service.Recommend(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, recs)
}

// Feasibility godoc
// @Summary Score semester feasibility
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.FeasibilityRequest true "Semester course set"
// @Success 200 {object} response.Envelope
// @Router /courses/feasibility [post]
func (h *AcademicHandler) Feasibility(c *gin.Context) {
	var req dto.FeasibilityRequest
	if !bindJSON(c, &req, false, "invalid feasibility payload") {
		return
	}
	report, hit, err := h.service.Feasibility(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, report)
}

// StoredAnalysis godoc
// @Summary Analyze the caller's stored courses
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/courses/analysis [get]
func (h *AcademicHandler) StoredAnalysis(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	analysis, hit, err := h.service.AnalyzeStored(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, analysis)
}
