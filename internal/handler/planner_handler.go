package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/middleware"
	"github.com/noah-isme/weekplan-api/internal/models"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
	"github.com/noah-isme/weekplan-api/pkg/response"
)

type plannerService interface {
	Synthesize(ctx context.Context, ownerID string, req dto.CreatePlanRequest) (*models.Plan, error)
	Get(ctx context.Context, ownerID, id string) (*models.Plan, error)
	Optimize(ctx context.Context, ownerID, id string, req dto.TransformPlanRequest) (*models.Plan, error)
	Suggest(ctx context.Context, ownerID, id string, req dto.TransformPlanRequest) (*models.Plan, error)
	Export(ctx context.Context, ownerID, id string, query dto.ExportPlanQuery) (*dto.ExportedFile, error)
}

type optimizeJobService interface {
	Submit(ctx context.Context, ownerID, planID string) (*models.OptimizeJob, error)
	Status(ctx context.Context, ownerID, id string) (*models.OptimizeJob, error)
}

// PlannerHandler exposes plan synthesis and transformation endpoints.
type PlannerHandler struct {
	planner plannerService
	jobs    optimizeJobService
}

// NewPlannerHandler constructs the handler. jobs may be nil when background optimization is off.
func NewPlannerHandler(planner plannerService, jobs optimizeJobService) *PlannerHandler {
	return &PlannerHandler{planner: planner, jobs: jobs}
}

// Create godoc
// @Summary Synthesize a weekly plan
// @Description Builds a grid from constraints, falling back to stored preferences when the caller is authenticated.
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.CreatePlanRequest false "Plan request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /plans [post]
func (h *PlannerHandler) Create(c *gin.Context) {
	var req dto.CreatePlanRequest
	if !bindJSON(c, &req, true, "invalid plan payload") {
		return
	}
	plan, err := h.planner.Synthesize(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Get godoc
// @Summary Get a plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/{id} [get]
func (h *PlannerHandler) Get(c *gin.Context) {
	plan, err := h.planner.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Optimize godoc
// @Summary Optimize a plan
// @Description Runs consolidation, energy alignment and work/life balance over the stored grid.
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body dto.TransformPlanRequest false "Expected revision and constraint overrides"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /plans/{id}/optimize [post]
func (h *PlannerHandler) Optimize(c *gin.Context) {
	h.transform(c, h.planner.Optimize)
}

// Suggest godoc
// @Summary Fill free time with suggestions
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body dto.TransformPlanRequest false "Expected revision and constraint overrides"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /plans/{id}/suggestions [post]
func (h *PlannerHandler) Suggest(c *gin.Context) {
	h.transform(c, h.planner.Suggest)
}

type planTransform func(ctx context.Context, ownerID, id string, req dto.TransformPlanRequest) (*models.Plan, error)

func (h *PlannerHandler) transform(c *gin.Context, fn planTransform) {
	var req dto.TransformPlanRequest
	if !bindJSON(c, &req, true, "invalid transform payload") {
		return
	}
	plan, err := fn(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Export godoc
// @Summary Download a plan
// @Tags Plans
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Plan ID"
// @Param format query string false "csv, pdf or xlsx" Enums(csv,pdf,xlsx)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /plans/{id}/export [get]
func (h *PlannerHandler) Export(c *gin.Context) {
	var query dto.ExportPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidFormat.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.planner.Export(c.Request.Context(), middleware.UserID(c), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// SubmitOptimizeJob godoc
// @Summary Optimize a plan in the background
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /plans/{id}/optimize-jobs [post]
func (h *PlannerHandler) SubmitOptimizeJob(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "background optimization is disabled"))
		return
	}
	job, err := h.jobs.Submit(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// OptimizeJobStatus godoc
// @Summary Get background optimization status
// @Tags Plans
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /optimize-jobs/{id} [get]
func (h *PlannerHandler) OptimizeJobStatus(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.ErrJobNotFound)
		return
	}
	job, err := h.jobs.Status(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}
