package service

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/export"
)

type moduleLister interface {
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error)
}

type tableWriter interface {
	Write(w io.Writer, data export.Table) error
}

// ExportService renders module listings for download.
type ExportService struct {
	modules moduleLister
	csv     tableWriter
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(modules moduleLister, csv tableWriter, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{modules: modules, csv: csv, logger: logger}
}

// WriteModulesCSV streams the filtered module list as CSV.
func (s *ExportService) WriteModulesCSV(ctx context.Context, w io.Writer, filter models.ModuleFilter) error {
	modules, err := s.modules.List(ctx, filter)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to export modules")
	}

	table := export.Table{Headers: []string{"moduleId", "name", "year", "term"}}
	for _, m := range modules {
		table.Rows = append(table.Rows, []string{m.ID, m.Name, m.Year, m.Term})
	}
	if err := s.csv.Write(w, table); err != nil {
		s.logger.Error("write modules csv", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to export modules")
	}
	return nil
}
