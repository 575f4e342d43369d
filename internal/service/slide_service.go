package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/storage"
)

type slideLinker interface {
	Link(ctx context.Context, key string) (string, time.Time, error)
}

// SlideService derives signed links to uploaded slide decks.
type SlideService struct {
	store  slideLinker
	logger *zap.Logger
}

// NewSlideService constructs a SlideService.
func NewSlideService(store slideLinker, logger *zap.Logger) *SlideService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlideService{store: store, logger: logger}
}

// Reference returns a fresh time-limited link for the topic's deck. A topic
// without slides yields NOT_FOUND, which is expected until someone uploads.
func (s *SlideService) Reference(ctx context.Context, moduleID, topic string) (*models.SlideReference, error) {
	moduleID = strings.TrimSpace(moduleID)
	topic = strings.TrimSpace(topic)
	if moduleID == "" || topic == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Module ID and topic are required")
	}

	url, expiresAt, err := s.store.Link(ctx, storage.SlideKey(moduleID, topic))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No slides uploaded for this topic yet")
	}
	if err != nil {
		s.logger.Error("sign slide link", zap.String("module_id", moduleID), zap.String("topic", topic), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to create slide link")
	}
	return &models.SlideReference{ModuleID: moduleID, Topic: topic, URL: url, ExpiresAt: expiresAt}, nil
}
