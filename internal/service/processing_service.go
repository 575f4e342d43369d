package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/backend"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/storage"
)

type processingBackend interface {
	ProcessOutline(ctx context.Context, moduleID string, file backend.File) (backend.Result, error)
	ProcessSlides(ctx context.Context, moduleID, topic string, file backend.File) (backend.Result, error)
	Chat(ctx context.Context, payload backend.ChatRequest) (backend.Result, error)
}

type outlineWriter interface {
	Upsert(ctx context.Context, record *models.OutlineRecord) error
}

type slideWriter interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

type uploadObserver interface {
	ObserveUpload(kind string, size int64)
}

// ProcessingConfig tunes the relay.
type ProcessingConfig struct {
	ChatHistoryPairs int
}

// ProcessingService forwards uploads and chat to the processing backend and
// persists successful outline and slide results.
type ProcessingService struct {
	backend  processingBackend
	outlines outlineWriter
	slides   slideWriter
	metrics  uploadObserver
	cfg      ProcessingConfig
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProcessingService constructs a ProcessingService.
func NewProcessingService(b processingBackend, outlines outlineWriter, slides slideWriter, metrics uploadObserver, cfg ProcessingConfig, logger *zap.Logger) *ProcessingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChatHistoryPairs <= 0 {
		cfg.ChatHistoryPairs = 5
	}
	return &ProcessingService{
		backend:  b,
		outlines: outlines,
		slides:   slides,
		metrics:  metrics,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

// ProcessOutline forwards a course outline PDF. On success the extraction
// result replaces the module's stored outline and the backend body is returned
// for relaying.
func (s *ProcessingService) ProcessOutline(ctx context.Context, moduleID string, file dto.UploadFile) (backend.Result, error) {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return backend.Result{}, appErrors.Clone(appErrors.ErrValidation, "Missing moduleId")
	}
	if file.Content == nil {
		return backend.Result{}, appErrors.Clone(appErrors.ErrValidation, "No file uploaded")
	}
	if mediaType(file.ContentType) != "application/pdf" {
		return backend.Result{}, appErrors.Clone(appErrors.ErrValidation, "Only PDF files are allowed")
	}
	s.observeUpload("outline", file.Size)

	res, err := s.backend.ProcessOutline(ctx, moduleID, toBackendFile(file))
	if err != nil {
		return backend.Result{}, s.transportError("outline", err)
	}
	if !res.OK() {
		return res, nil
	}

	extraction, err := DecodeExtraction(res.Body)
	switch {
	case errors.Is(err, errNotAnOutline):
		return backend.Result{
			Kind:    backend.KindStructuredError,
			Status:  http.StatusUnprocessableEntity,
			Message: "The uploaded document does not look like a course outline",
		}, nil
	case err != nil:
		s.logger.Warn("unusable outline extraction", zap.String("module_id", moduleID), zap.Error(err))
		return backend.Result{
			Kind:    backend.KindOpaqueError,
			Status:  http.StatusBadGateway,
			Message: fmt.Sprintf("Unexpected response format from processing backend. Status: %d", res.Status),
		}, nil
	}

	if err := s.outlines.Upsert(ctx, &models.OutlineRecord{ModuleID: moduleID, Result: extraction}); err != nil {
		s.logger.Error("store outline", zap.String("module_id", moduleID), zap.Error(err))
		return backend.Result{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to store outline")
	}
	s.logger.Info("outline stored", zap.String("module_id", moduleID), zap.Int("topics", len(extraction.Topics)))
	return res, nil
}

// ProcessSlides forwards a topic's slide deck and, once the backend accepts
// it, stores the deck under {module}/{topic}.pdf.
func (s *ProcessingService) ProcessSlides(ctx context.Context, moduleID, topic string, file dto.UploadFile) (backend.Result, error) {
	moduleID = strings.TrimSpace(moduleID)
	topic = strings.TrimSpace(topic)
	if moduleID == "" || topic == "" || file.Content == nil {
		return backend.Result{}, appErrors.Clone(appErrors.ErrValidation,
			"Invalid input. Ensure 'file' is a File and both 'moduleId' and 'topic' are strings.")
	}
	if !strings.HasPrefix(mediaType(file.ContentType), "application/") {
		return backend.Result{}, appErrors.Clone(appErrors.ErrValidation, "Invalid file type. Must be a document or presentation.")
	}
	s.observeUpload("slides", file.Size)

	res, err := s.backend.ProcessSlides(ctx, moduleID, topic, toBackendFile(file))
	if err != nil {
		return backend.Result{}, s.transportError("slides", err)
	}
	if !res.OK() {
		return res, nil
	}

	if _, err := file.Content.Seek(0, io.SeekStart); err != nil {
		return backend.Result{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to store slides")
	}
	key := storage.SlideKey(moduleID, topic)
	if err := s.slides.Put(ctx, key, file.Content, file.Size, file.ContentType); err != nil {
		s.logger.Error("store slides", zap.String("module_id", moduleID), zap.String("topic", topic), zap.Error(err))
		return backend.Result{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to store slides")
	}
	s.logger.Info("slides stored", zap.String("module_id", moduleID), zap.String("key", key))
	return res, nil
}

// Chat relays a question with its trimmed history and returns the answer.
func (s *ProcessingService) Chat(ctx context.Context, req dto.ChatRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.Topic) == "" ||
		strings.TrimSpace(req.ModuleID) == "" || req.ChatHistory == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "Missing parameters")
	}
	for _, m := range *req.ChatHistory {
		if err := s.validate.Struct(m); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				"Invalid chat history. Each entry needs a role of 'user' or 'assistant'.")
		}
	}

	history := TrimHistory(*req.ChatHistory, s.cfg.ChatHistoryPairs)
	turns := make([]backend.ChatTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, backend.ChatTurn{Role: m.Role, Text: m.Text})
	}

	res, err := s.backend.Chat(ctx, backend.ChatRequest{
		Message:     req.Message,
		Topic:       req.Topic,
		ModuleID:    req.ModuleID,
		ChatHistory: turns,
	})
	if err != nil {
		return "", s.transportError("chat", err)
	}
	if !res.OK() {
		return "", appErrors.WithStatus(appErrors.ErrUpstream, res.Status, res.Message)
	}

	var payload struct {
		Answer *string `json:"answer"`
	}
	if err := json.Unmarshal(res.Body, &payload); err != nil || payload.Answer == nil {
		return "", appErrors.WithStatus(appErrors.ErrUpstream, http.StatusBadGateway,
			fmt.Sprintf("Unexpected response format from processing backend. Status: %d", res.Status))
	}
	return *payload.Answer, nil
}

// TrimHistory keeps the last maxPairs user/assistant exchanges. A pair ends
// at an assistant entry; trailing user entries form a final partial pair.
func TrimHistory(history []models.ChatMessage, maxPairs int) []models.ChatMessage {
	if maxPairs <= 0 || len(history) == 0 {
		return []models.ChatMessage{}
	}
	var pairs [][]models.ChatMessage
	var current []models.ChatMessage
	for _, m := range history {
		current = append(current, m)
		if m.Role == models.RoleAssistant {
			pairs = append(pairs, current)
			current = nil
		}
	}
	if len(current) > 0 {
		pairs = append(pairs, current)
	}
	if len(pairs) > maxPairs {
		pairs = pairs[len(pairs)-maxPairs:]
	}
	out := make([]models.ChatMessage, 0, len(history))
	for _, p := range pairs {
		out = append(out, p...)
	}
	return out
}

func (s *ProcessingService) transportError(op string, err error) error {
	s.logger.Warn("processing backend call failed", zap.String("operation", op), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrBadGateway.Code, appErrors.ErrBadGateway.Status, appErrors.ErrBadGateway.Message)
}

func (s *ProcessingService) observeUpload(kind string, size int64) {
	if s.metrics != nil {
		s.metrics.ObserveUpload(kind, size)
	}
}

func toBackendFile(file dto.UploadFile) backend.File {
	return backend.File{Name: file.Name, ContentType: file.ContentType, Content: file.Content}
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
