package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/response"
	"github.com/noah-isme/course-portal-api/pkg/storage"
)

type outlineService interface {
	Fetch(ctx context.Context, moduleID string) (*models.OutlineRecord, error)
	RenderPDF(ctx context.Context, moduleID string) ([]byte, error)
}

// OutlineHandler serves stored extraction results.
type OutlineHandler struct {
	service outlineService
}

// NewOutlineHandler constructs the handler.
func NewOutlineHandler(service outlineService) *OutlineHandler {
	return &OutlineHandler{service: service}
}

// Get godoc
// @Summary Fetch a module's extracted outline
// @Tags Outlines
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} dto.OutlineResponse
// @Failure 404 {object} response.ErrorBody "No outline uploaded yet"
// @Router /modules/{id}/outline [get]
func (h *OutlineHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "outline service not configured"))
		return
	}
	record, err := h.service.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.OutlineResponse{
		ModuleID:  record.ModuleID,
		Outline:   record.Result,
		UpdatedAt: record.UpdatedAt,
	})
}

// PDF godoc
// @Summary Download a printable outline
// @Tags Outlines
// @Produce application/pdf
// @Param id path string true "Module ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorBody
// @Router /modules/{id}/outline.pdf [get]
func (h *OutlineHandler) PDF(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "outline service not configured"))
		return
	}
	id := c.Param("id")
	out, err := h.service.RenderPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s-outline.pdf"`, storage.SanitizeSegment(id)))
	c.Data(http.StatusOK, "application/pdf", out)
}
