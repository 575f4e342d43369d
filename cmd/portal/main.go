package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/cli"
	"github.com/noah-isme/course-portal-api/internal/upload"
	"github.com/noah-isme/course-portal-api/pkg/client"
	"github.com/noah-isme/course-portal-api/pkg/config"
	"github.com/noah-isme/course-portal-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// The terminal is for the transcript; diagnostics stay at warn and above.
	if cfg.Log.Level == "" || strings.EqualFold(cfg.Log.Level, "info") {
		cfg.Log.Level = "warn"
	}
	cfg.Log.Format = "console"

	logr, err := logger.New(cfg)
	if err != nil {
		logr = zap.NewNop()
	}
	defer logr.Sync() //nolint:errcheck

	apiURL := strings.TrimRight(cfg.Client.APIURL, "/") + cfg.APIPrefix
	app := &cli.App{
		Portal: client.New(apiURL, client.WithLogger(logr.Named("client"))),
		Limits: upload.Limits{MinBytes: cfg.Upload.MinBytes, MaxBytes: cfg.Upload.MaxBytes},
		Logger: logr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
