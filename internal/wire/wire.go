// Package wire provides dependency injection for the socialcli application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/example/socialcli/internal/adapters/sqlite"
	"github.com/example/socialcli/internal/app"
	"github.com/example/socialcli/internal/config"
	"github.com/example/socialcli/internal/db"
	"github.com/example/socialcli/internal/parser"
	"github.com/example/socialcli/internal/ports/primary"
	"github.com/example/socialcli/internal/ports/secondary"
	"github.com/example/socialcli/internal/providers/linkedin"
)

var (
	cfg              *config.Config
	logger           *slog.Logger
	scheduleService  primary.ScheduleService
	schedulerService primary.SchedulerService
	once             sync.Once
)

// ScheduleService returns the singleton ScheduleService instance.
func ScheduleService() primary.ScheduleService {
	once.Do(initServices)
	return scheduleService
}

// SchedulerService returns the singleton SchedulerService instance.
func SchedulerService() primary.SchedulerService {
	once.Do(initServices)
	return schedulerService
}

// Config returns the loaded application configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	logger = newLogger()

	path, err := config.DefaultPath()
	if err != nil {
		log.Fatalf("failed to locate config: %v", err)
	}
	cfg, err = config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	repo := sqlite.NewScheduleRepository(database)

	scheduleService = app.NewScheduleService(repo)
	schedulerService = app.NewSchedulerService(
		repo,
		buildPublishers(cfg, logger),
		parser.NewResolver(),
		app.SystemClock{},
		logger,
	)
}

// buildPublishers constructs a publisher per configured provider. Providers
// with missing credentials are skipped; their entries fail at publish time
// with an unsupported-provider error instead of blocking startup.
func buildPublishers(cfg *config.Config, logger *slog.Logger) map[string]secondary.Publisher {
	publishers := make(map[string]secondary.Publisher)

	if pc := cfg.Provider(linkedin.Name); pc != nil {
		pub, err := linkedin.New(pc)
		if err != nil {
			logger.Warn("provider not available", "provider", linkedin.Name, "error", err)
		} else {
			publishers[linkedin.Name] = pub
		}
	}

	return publishers
}

// newLogger builds the slog logger from SOCIALCLI_LOG_LEVEL and
// SOCIALCLI_LOG_FORMAT. Defaults: info level, text format.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("SOCIALCLI_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("SOCIALCLI_LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
