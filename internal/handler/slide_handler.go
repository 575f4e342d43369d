package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/response"
	"github.com/noah-isme/course-portal-api/pkg/storage"
)

type slideService interface {
	Reference(ctx context.Context, moduleID, topic string) (*models.SlideReference, error)
}

// slideOpener resolves signed download tokens issued by the local slide store.
type slideOpener interface {
	OpenSigned(token string) (*os.File, string, error)
}

// SlideHandler hands out signed slide links and, for the local store, serves
// the files behind them.
type SlideHandler struct {
	service slideService
	files   slideOpener
}

// NewSlideHandler constructs the handler. files may be nil when slides are
// served directly by an object store.
func NewSlideHandler(service slideService, files slideOpener) *SlideHandler {
	return &SlideHandler{service: service, files: files}
}

// Reference godoc
// @Summary Get a signed link to a topic's slides
// @Tags Slides
// @Produce json
// @Param id path string true "Module ID"
// @Param topic path string true "Topic"
// @Success 200 {object} models.SlideReference
// @Failure 404 {object} response.ErrorBody
// @Router /modules/{id}/topics/{topic}/slides [get]
func (h *SlideHandler) Reference(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "slide service not configured"))
		return
	}
	ref, err := h.service.Reference(c.Request.Context(), c.Param("id"), c.Param("topic"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ref)
}

// Download godoc
// @Summary Stream a slide deck behind a signed link
// @Tags Slides
// @Produce application/pdf
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /slides/download [get]
func (h *SlideHandler) Download(c *gin.Context) {
	if h.files == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "slide downloads are served by the object store"))
		return
	}
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, key, err := h.files.OpenSigned(token)
	switch {
	case errors.Is(err, storage.ErrInvalidToken), errors.Is(err, storage.ErrTokenExpired):
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Invalid or expired link"))
		return
	case errors.Is(err, storage.ErrObjectNotFound):
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Slides not found"))
		return
	case err != nil:
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open slides"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read slides"))
		return
	}
	name := path.Base(key)
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
}
