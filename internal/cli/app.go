// Package cli implements the student-facing terminal client.
package cli

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/upload"
	"github.com/noah-isme/course-portal-api/pkg/client"
)

// Portal is the API surface the commands use.
type Portal interface {
	ListModules(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error)
	CreateModule(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error)
	DeleteModule(ctx context.Context, id string) error
	Terms(ctx context.Context) ([]models.TermOption, error)
	Outline(ctx context.Context, moduleID string) (*dto.OutlineResponse, error)
	SlideLink(ctx context.Context, moduleID, topic string) (*models.SlideReference, error)
	UploadOutline(ctx context.Context, moduleID string, file client.File) error
	UploadSlides(ctx context.Context, moduleID, topic string, file client.File) error
	Chat(ctx context.Context, req dto.ChatRequest) (string, error)
}

// App carries the dependencies shared by every command.
type App struct {
	Portal Portal
	Limits upload.Limits
	Logger *zap.Logger
	In     io.Reader
	Out    io.Writer
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) in() io.Reader {
	if a.In == nil {
		return os.Stdin
	}
	return a.In
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
