// Package app wires configuration, logging, and services into a single
// application core shared by the server binary and tests.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantfold/stratview/internal/common"
	"github.com/quantfold/stratview/internal/params"
	"github.com/quantfold/stratview/internal/services/analysis"
)

// App holds the initialized configuration, logger, and services.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Parser          *params.Parser
	AnalysisService *analysis.Service
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes the application core. configPath may be empty, in which
// case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, STRATVIEW_CONFIG, then
	// binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("STRATVIEW_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "stratview.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stratview.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	a := &App{
		Config:          config,
		Logger:          logger,
		Parser:          params.NewParser(logger, config.Analysis.ValidatePayload),
		AnalysisService: analysis.NewService(logger, config.Analysis.Currency),
		StartupTime:     time.Now(),
	}

	logger.Debug().
		Str("config", configPath).
		Bool("validate_payload", config.Analysis.ValidatePayload).
		Msg("Application core initialized")

	return a, nil
}

// NewTestApp builds an app with defaults and a silent logger, for tests.
func NewTestApp() *App {
	config := common.NewDefaultConfig()
	logger := common.NewSilentLogger()
	return &App{
		Config:          config,
		Logger:          logger,
		Parser:          params.NewParser(logger, config.Analysis.ValidatePayload),
		AnalysisService: analysis.NewService(logger, config.Analysis.Currency),
		StartupTime:     time.Now(),
	}
}

// Close releases application resources. Nothing is held open today; the
// method exists so callers shut down uniformly.
func (a *App) Close() {
}
