package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/repository"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/storage"
)

type moduleRepository interface {
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error)
	Create(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
	Terms(ctx context.Context) ([]models.TermOption, error)
}

type outlineRemover interface {
	Delete(ctx context.Context, moduleID string) error
}

type slidePurger interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// ModuleService handles module catalogue workflows.
type ModuleService struct {
	repo      moduleRepository
	outlines  outlineRemover
	slides    slidePurger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService creates a new module service. outlines and slides may be
// nil, in which case deleting a module leaves derived data alone.
func NewModuleService(repo moduleRepository, outlines outlineRemover, slides slidePurger, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{repo: repo, outlines: outlines, slides: slides, validator: validate, logger: logger}
}

// List returns modules matching the filter.
func (s *ModuleService) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	filter.Year = strings.TrimSpace(filter.Year)
	filter.Term = strings.TrimSpace(filter.Term)
	filter.Search = strings.TrimSpace(filter.Search)

	modules, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list modules", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Internal Server Error")
	}
	return modules, nil
}

// Create validates and stores a module.
func (s *ModuleService) Create(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error) {
	req.ModuleID = strings.TrimSpace(req.ID())
	req.LegacyID = ""
	req.Name = strings.TrimSpace(req.Name)
	req.Year = strings.TrimSpace(req.Year)
	req.Term = strings.TrimSpace(req.Term)

	if req.ModuleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Missing fields")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Missing fields")
	}

	module := &models.Module{ID: req.ModuleID, Name: req.Name, Year: req.Year, Term: req.Term}
	if err := s.repo.Create(ctx, module); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Module already exists")
		}
		s.logger.Error("create module", zap.String("module_id", module.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Internal Server Error")
	}
	s.logger.Info("module created", zap.String("module_id", module.ID))
	return module, nil
}

// Delete removes a module together with its outline and slide decks.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "Module ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "Module not found")
		}
		s.logger.Error("delete module", zap.String("module_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to delete module")
	}

	// The module row is gone at this point; derived data failures are logged only.
	if s.outlines != nil {
		if err := s.outlines.Delete(ctx, id); err != nil {
			s.logger.Warn("delete module outline", zap.String("module_id", id), zap.Error(err))
		}
	}
	if s.slides != nil {
		if err := s.slides.DeletePrefix(ctx, storage.ModulePrefix(id)); err != nil {
			s.logger.Warn("delete module slides", zap.String("module_id", id), zap.Error(err))
		}
	}
	s.logger.Info("module deleted", zap.String("module_id", id))
	return nil
}

// Terms returns the "{year} {term}" filter options.
func (s *ModuleService) Terms(ctx context.Context) ([]models.TermOption, error) {
	terms, err := s.repo.Terms(ctx)
	if err != nil {
		s.logger.Error("list module terms", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Internal Server Error")
	}
	for i := range terms {
		terms[i].Label = strings.TrimSpace(terms[i].Year + " " + terms[i].Term)
	}
	return terms, nil
}
