package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/course-portal-api/api/swagger"
	"github.com/noah-isme/course-portal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-portal-api/internal/middleware"
	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/repository"
	"github.com/noah-isme/course-portal-api/internal/service"
	"github.com/noah-isme/course-portal-api/pkg/backend"
	"github.com/noah-isme/course-portal-api/pkg/config"
	"github.com/noah-isme/course-portal-api/pkg/database"
	"github.com/noah-isme/course-portal-api/pkg/export"
	"github.com/noah-isme/course-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-portal-api/pkg/storage"
)

// @title Course Portal API
// @version 1.0.0
// @description Module catalogue, outline and slide uploads, and topic chat for the student course portal.
// @BasePath /api
// @schemes http

type moduleStore interface {
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error)
	Create(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
	Terms(ctx context.Context) ([]models.TermOption, error)
	Ping(ctx context.Context) error
}

type outlineStore interface {
	Get(ctx context.Context, moduleID string) (*models.OutlineRecord, error)
	Upsert(ctx context.Context, record *models.OutlineRecord) error
	Delete(ctx context.Context, moduleID string) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	modules, outlines, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	slides, files, slidesCheck, err := openSlides(ctx, cfg)
	if err != nil {
		return err
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	backendClient := backend.New(cfg.Backend.BaseURL,
		backend.WithLogger(logr.Named("backend")),
		backend.WithObserver(metricsSvc),
	)

	moduleSvc := service.NewModuleService(modules, outlines, slides, validate, logr.Named("modules"))
	exportSvc := service.NewExportService(modules, export.NewCSVExporter(), logr.Named("export"))
	processingSvc := service.NewProcessingService(backendClient, outlines, slides, metricsSvc,
		service.ProcessingConfig{ChatHistoryPairs: cfg.Backend.ChatHistoryPairs}, logr.Named("processing"))
	outlineSvc := service.NewOutlineService(outlines, export.NewPDFExporter(), logr.Named("outlines"))
	slideSvc := service.NewSlideService(slides, logr.Named("slides"))

	slideHandler := handler.NewSlideHandler(slideSvc, nil)
	if files != nil {
		slideHandler = handler.NewSlideHandler(slideSvc, files)
	}

	checks := map[string]handler.Pinger{"store": modules}
	if slidesCheck != nil {
		checks["slides"] = slidesCheck
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Modules:  handler.NewModuleHandler(moduleSvc, exportSvc),
		Uploads:  handler.NewUploadHandler(processingSvc, cfg.Upload.MaxBytes),
		Outlines: handler.NewOutlineHandler(outlineSvc),
		Slides:   slideHandler,
		Metrics:  metricsHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Sugar().Infow("server starting",
			"addr", srv.Addr,
			"env", cfg.Env,
			"store", cfg.StoreDriver,
			"slides", cfg.Slides.Driver,
			"backend", cfg.Backend.BaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logr.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (moduleStore, outlineStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return repository.NewMongoModuleRepository(db), repository.NewMongoOutlineRepository(db), closeFn, nil
	default:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closeFn := func() { _ = db.Close() }
		return repository.NewModuleRepository(db), repository.NewOutlineRepository(db), closeFn, nil
	}
}

// openSlides returns the slide store, the local file opener when slides are
// served by this process, and a readiness check for remote stores.
func openSlides(ctx context.Context, cfg *config.Config) (storage.SlideStore, *storage.LocalSlideStore, handler.Pinger, error) {
	switch cfg.Slides.Driver {
	case config.SlidesDriverMinio:
		m := cfg.Slides.Minio
		store, err := storage.NewMinioStore(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL, cfg.Slides.SignedURLTTL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect minio: %w", err)
		}
		return store, nil, store, nil
	default:
		files, err := storage.NewLocalStorage(cfg.Slides.StorageDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open slide directory: %w", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Slides.SignedURLSecret, cfg.Slides.SignedURLTTL)
		store := storage.NewLocalSlideStore(files, signer, cfg.APIPrefix+handler.DownloadPath)
		return store, store, nil, nil
	}
}
