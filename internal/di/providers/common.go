// Package providers contains dependency injection providers for the Folllow server.
package providers

import (
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"github.com/folllow/folllow-server/internal/config"
	"github.com/folllow/folllow-server/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Folllow Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"base_url", cfg.App.BaseURL,
		"data_dir", cfg.Database.DataDir,
	)

	return log, nil
}

// ProvideSlogLogger provides the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
