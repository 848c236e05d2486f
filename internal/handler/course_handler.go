package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
	"github.com/noah-isme/weekplan-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, ownerID string) ([]models.Course, error)
	Upsert(ctx context.Context, ownerID string, req dto.UpsertCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, ownerID, id string) error
	ImportICS(ctx context.Context, ownerID string, r io.Reader) (*dto.ImportCoursesResponse, error)
}

// CourseHandler exposes the caller's stored course set.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List godoc
// @Summary List stored courses
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	courses, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, map[string]interface{}{"count": len(courses)})
}

// Upsert godoc
// @Summary Create or replace a stored course
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpsertCourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me/courses [post]
func (h *CourseHandler) Upsert(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpsertCourseRequest
	if !bindJSON(c, &req, false, "invalid course payload") {
		return
	}
	course, err := h.service.Upsert(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a stored course
// @Tags Me
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /me/courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Import courses from an iCalendar file
// @Description Accepts a multipart "file" field or a raw text/calendar body.
// @Tags Me
// @Accept multipart/form-data,text/calendar
// @Produce json
// @Security BearerAuth
// @Param file formData file false "ICS file"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /me/courses/import [post]
func (h *CourseHandler) Import(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
			return
		}
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.service.ImportICS(c.Request.Context(), userID, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
