package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/response"
)

type moduleService interface {
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error)
	Create(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error)
	Delete(ctx context.Context, id string) error
	Terms(ctx context.Context) ([]models.TermOption, error)
}

type moduleExporter interface {
	WriteModulesCSV(ctx context.Context, w io.Writer, filter models.ModuleFilter) error
}

// ModuleHandler exposes module catalogue endpoints.
type ModuleHandler struct {
	service  moduleService
	exporter moduleExporter
}

// NewModuleHandler constructs the handler.
func NewModuleHandler(service moduleService, exporter moduleExporter) *ModuleHandler {
	return &ModuleHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List modules
// @Tags Modules
// @Produce json
// @Param year query string false "Academic year"
// @Param term query string false "Term"
// @Param search query string false "Matches id or name"
// @Success 200 {object} dto.ModuleListResponse
// @Failure 500 {object} response.ErrorBody
// @Router /modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	modules, err := h.service.List(c.Request.Context(), moduleFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ModuleListResponse{Modules: modules})
}

// Create godoc
// @Summary Add a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param payload body dto.CreateModuleRequest true "Module"
// @Success 201 {object} dto.ModuleCreatedResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Missing fields"))
		return
	}
	module, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ModuleCreatedResponse{Message: "Module added", Module: *module})
}

// Delete godoc
// @Summary Delete a module
// @Tags Modules
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.MessageBody
// @Failure 404 {object} response.ErrorBody
// @Router /modules/{id} [delete]
func (h *ModuleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Module deleted successfully")
}

// Terms godoc
// @Summary List year/term filter options
// @Tags Modules
// @Produce json
// @Success 200 {object} dto.TermOptionsResponse
// @Router /modules/terms [get]
func (h *ModuleHandler) Terms(c *gin.Context) {
	terms, err := h.service.Terms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.TermOptionsResponse{Terms: terms})
}

// ExportCSV godoc
// @Summary Export modules as CSV
// @Tags Modules
// @Produce text/csv
// @Param year query string false "Academic year"
// @Param term query string false "Term"
// @Param search query string false "Matches id or name"
// @Success 200 {file} binary
// @Router /modules/export.csv [get]
func (h *ModuleHandler) ExportCSV(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export not configured"))
		return
	}
	var buf strings.Builder
	if err := h.exporter.WriteModulesCSV(c.Request.Context(), &buf, moduleFilter(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="modules.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(buf.String()))
}

func moduleFilter(c *gin.Context) models.ModuleFilter {
	return models.ModuleFilter{
		Year:   strings.TrimSpace(c.Query("year")),
		Term:   strings.TrimSpace(c.Query("term")),
		Search: strings.TrimSpace(c.Query("search")),
	}
}
