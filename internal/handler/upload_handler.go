package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/pkg/backend"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/response"
)

// multipartOverhead allows for form boundaries and text fields on top of the file.
const multipartOverhead = 1 << 20

type processingService interface {
	ProcessOutline(ctx context.Context, moduleID string, file dto.UploadFile) (backend.Result, error)
	ProcessSlides(ctx context.Context, moduleID, topic string, file dto.UploadFile) (backend.Result, error)
	Chat(ctx context.Context, req dto.ChatRequest) (string, error)
}

// UploadHandler proxies outline and slide uploads to the processing backend.
type UploadHandler struct {
	service  processingService
	maxBytes int64
}

// NewUploadHandler constructs the handler. maxBytes bounds the uploaded file;
// zero disables the limit.
func NewUploadHandler(service processingService, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: service, maxBytes: maxBytes}
}

// UploadOutline godoc
// @Summary Upload a course outline for extraction
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Course outline PDF"
// @Param moduleId formData string true "Module ID"
// @Success 200 {object} models.ExtractionResult "Backend body, relayed"
// @Failure 400 {object} response.ErrorBody
// @Failure 502 {object} response.ErrorBody
// @Router /upload [post]
func (h *UploadHandler) UploadOutline(c *gin.Context) {
	file, closeFn, err := h.formFile(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFn()

	res, err := h.service.ProcessOutline(c.Request.Context(), c.PostForm("moduleId"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	relay(c, res)
}

// UploadSlides godoc
// @Summary Upload a topic's slide deck
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Slide deck"
// @Param moduleId formData string true "Module ID"
// @Param topic formData string true "Topic"
// @Success 200 {object} map[string]interface{} "Backend body, relayed"
// @Failure 400 {object} response.ErrorBody
// @Failure 502 {object} response.ErrorBody
// @Router /uploadppt [post]
func (h *UploadHandler) UploadSlides(c *gin.Context) {
	file, closeFn, err := h.formFile(c)
	if err != nil {
		if appErrors.FromError(err).Status == http.StatusBadRequest {
			err = appErrors.Clone(appErrors.ErrValidation,
				"Invalid input. Ensure 'file' is a File and both 'moduleId' and 'topic' are strings.")
		}
		response.Error(c, err)
		return
	}
	defer closeFn()

	res, err := h.service.ProcessSlides(c.Request.Context(), c.PostForm("moduleId"), c.PostForm("topic"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	relay(c, res)
}

// Chat godoc
// @Summary Ask the topic assistant
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body dto.ChatRequest true "Question with recent history"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 502 {object} response.ErrorBody
// @Router /chat [post]
func (h *UploadHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Missing parameters"))
		return
	}
	answer, err := h.service.Chat(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ChatResponse{Answer: answer})
}

func (h *UploadHandler) formFile(c *gin.Context) (dto.UploadFile, func(), error) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return dto.UploadFile{}, nil, appErrors.New("PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge, "File too large")
		}
		return dto.UploadFile{}, nil, appErrors.Clone(appErrors.ErrValidation, "No file uploaded")
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (dto.UploadFile, func(), error) {
	src, err := header.Open()
	if err != nil {
		return dto.UploadFile{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	closeFn := func() { _ = src.Close() }

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		closeFn()
		if readErr != nil {
			return dto.UploadFile{}, nil, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file")
		}
		reader = bytes.NewReader(buf)
		closeFn = func() {}
	}
	return dto.UploadFile{
		Name:        header.Filename,
		ContentType: strings.TrimSpace(header.Header.Get("Content-Type")),
		Size:        header.Size,
		Content:     reader,
	}, closeFn, nil
}

// relay writes a decoded backend result: the verbatim body on success, the
// extracted or synthesised message otherwise.
func relay(c *gin.Context, res backend.Result) {
	if res.OK() {
		response.Raw(c, res.Status, res.Body)
		return
	}
	response.Error(c, appErrors.WithStatus(appErrors.ErrUpstream, res.Status, res.Message))
}
