package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"records-service/common/logger"
	"records-service/common/telemetry"
	"records-service/internal/auth"
	"records-service/internal/config"
	"records-service/internal/db"
	"records-service/internal/events"
	"records-service/internal/grpcserver"
	"records-service/internal/health"
	"records-service/internal/metrics"
	"records-service/internal/student"
	"records-service/internal/teacher"

	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	server    *http.Server
	grpc      *grpcserver.Server
	db        *bun.DB
	publisher events.Publisher
	telemetry *telemetry.Telemetry
	logger    *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.WithServiceContext(
		logger.NewWithOptions(logger.Options{Format: cfg.Log.Format, Level: cfg.Log.Level}),
		ServiceName, Version,
	)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "env", cfg.Env, "commit", GitCommit, "build_time", BuildTime)

	tel, err := telemetry.Init(ctx, telemetry.Options{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ExportInterval: time.Duration(cfg.Telemetry.ExportIntervalSeconds) * time.Second,
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
	}, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	m := tel.Metrics

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := m.Database.RegisterDB(database.DB, m.Meter()); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}
	if err := m.Health.RegisterDependencies(ctx, m.Meter(), []string{health.DependencyDatabase}); err != nil {
		slogLogger.Warn("failed to register dependency metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, (*student.Student)(nil), (*teacher.Teacher)(nil)); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	domainMetrics := metrics.NewMock()
	if meter := m.Meter(); meter != nil {
		if domainMetrics, err = metrics.New(meter); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to initialize domain metrics: %w", err)
		}
	}

	publisher, err := events.New(cfg.Events, m, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize event publisher, events disabled", "driver", cfg.Events.Driver, "error", err)
		publisher = events.Noop{}
	}

	teacherService := teacher.NewService(teacher.NewRepository(database, m), domainMetrics, slogLogger)
	studentService := student.NewService(student.NewRepository(database, m), publisher, domainMetrics, slogLogger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	if !cfg.Auth.Enforce {
		slogLogger.Warn("auth.enforce is false, student routes are open")
	}

	router := NewRouter(RouterDeps{
		Student:     student.NewHandler(studentService, slogLogger, domainMetrics),
		Teacher:     teacher.NewHandler(teacherService, slogLogger),
		Auth:        auth.NewHandler(auth.NewService(teacherService, tokens), slogLogger, cfg.Auth.SecureCookies),
		Health:      health.NewHandler(database, m, slogLogger),
		Tokens:      tokens,
		Metrics:     m,
		Logger:      slogLogger,
		CORSOrigins: cfg.Server.CORSOrigins,
		StaticDir:   cfg.Server.StaticDir,
		EnforceAuth: cfg.Auth.Enforce,
	})

	app := &App{
		config: cfg,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		},
		db:        database,
		publisher: publisher,
		telemetry: tel,
		logger:    slogLogger,
	}

	if cfg.GRPC.Enabled {
		app.grpc = grpcserver.New(m, slogLogger)
	}

	slogLogger.Info("application initialized successfully")

	return app, nil
}

// Run blocks until the HTTP server stops. The gRPC health server runs alongside it.
func (a *App) Run() error {
	if a.grpc != nil {
		go func() {
			if err := a.grpc.ListenAndServe(a.config.GRPC.Port); err != nil {
				a.logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	if a.grpc != nil {
		a.grpc.SetServing(false)
	}

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if a.grpc != nil {
		a.grpc.GracefulStop()
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("event publisher close error", "error", err)
	}

	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}

	db.Close(a.db)

	return errors.Join(errs...)
}
