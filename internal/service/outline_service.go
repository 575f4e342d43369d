package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/repository"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/export"
)

type outlineReader interface {
	Get(ctx context.Context, moduleID string) (*models.OutlineRecord, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// OutlineService reads stored extraction results. A module without an
// outline is reported as not found, which callers treat as a normal state.
type OutlineService struct {
	repo   outlineReader
	pdf    documentRenderer
	logger *zap.Logger
}

// NewOutlineService constructs an OutlineService.
func NewOutlineService(repo outlineReader, pdf documentRenderer, logger *zap.Logger) *OutlineService {
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutlineService{repo: repo, pdf: pdf, logger: logger}
}

// Fetch returns the module's outline, a NOT_FOUND error when none was
// uploaded yet, or an internal error.
func (s *OutlineService) Fetch(ctx context.Context, moduleID string) (*models.OutlineRecord, error) {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Module ID is required")
	}
	record, err := s.repo.Get(ctx, moduleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No outline uploaded for this module yet")
	}
	if err != nil {
		s.logger.Error("fetch outline", zap.String("module_id", moduleID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to load outline")
	}
	return record, nil
}

// RenderPDF produces a printable copy of the module's outline.
func (s *OutlineService) RenderPDF(ctx context.Context, moduleID string) ([]byte, error) {
	record, err := s.Fetch(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(outlineDocument(record))
	if err != nil {
		s.logger.Error("render outline pdf", zap.String("module_id", record.ModuleID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to render outline")
	}
	return out, nil
}

func outlineDocument(record *models.OutlineRecord) export.Document {
	r := record.Result
	doc := export.Document{
		Title:    record.ModuleID + " course outline",
		Subtitle: "Extracted " + record.UpdatedAt.UTC().Format("2 Jan 2006 15:04 MST"),
	}
	if r.Summary != "" {
		doc.Sections = append(doc.Sections, export.Section{Heading: "Summary", Paragraphs: []string{r.Summary}})
	}
	if len(r.Lecturers) > 0 {
		rows := make([][]string, 0, len(r.Lecturers))
		for _, l := range r.Lecturers {
			rows = append(rows, []string{l.Name, l.Email})
		}
		doc.Sections = append(doc.Sections, export.Section{
			Heading: "Lecturers",
			Table:   &export.Table{Headers: []string{"Name", "Email"}, Rows: rows},
		})
	}
	if len(r.Topics) > 0 {
		doc.Sections = append(doc.Sections, export.Section{Heading: "Topics", Bullets: r.Topics})
	}
	if len(r.Assessments) > 0 {
		rows := make([][]string, 0, len(r.Assessments))
		for _, a := range r.Assessments {
			rows = append(rows, []string{a.Method, formatWeighting(a.Weighting)})
		}
		doc.Sections = append(doc.Sections, export.Section{
			Heading: "Assessment",
			Table:   &export.Table{Headers: []string{"Method", "Weighting"}, Rows: rows},
		})
	}
	if len(r.LearningOutcomes) > 0 {
		doc.Sections = append(doc.Sections, export.Section{Heading: "Learning outcomes", Bullets: r.LearningOutcomes})
	}
	if tb := r.Textbook; tb != nil {
		lines := []string{tb.Title}
		if len(tb.Authors) > 0 {
			lines = append(lines, "Authors: "+strings.Join(tb.Authors, ", "))
		}
		details := strings.TrimSpace(strings.Join(compact([]string{edition(tb.Edition), tb.Publisher, tb.Year}), ", "))
		if details != "" {
			lines = append(lines, details)
		}
		doc.Sections = append(doc.Sections, export.Section{Heading: "Textbook", Paragraphs: lines})
	}
	return doc
}

func edition(e string) string {
	if e == "" {
		return ""
	}
	return "Edition " + e
}
