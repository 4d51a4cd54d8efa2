package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"cryptoLedger/config"
	"cryptoLedger/internal/adapters/logger"
	"cryptoLedger/internal/adapters/sheet"
	"cryptoLedger/internal/adapters/sqlite"
	"cryptoLedger/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{
		"level":  cfg.LogLevel.String(),
		"format": cfg.LogFormat,
	})

	// 3. Initialize Repository (Ledger Store)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.LedgerDBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize ledger repository")
		log.Fatalf("FATAL: Failed to initialize ledger repository: %v", err) // Also log to stderr
	}

	// 4. Initialize Application Service
	importService, err := app.NewImportService(
		cfg,
		appLogger,
		sheet.NewReader(),
		repo, // ledger store
		repo, // import run audit
	)
	if err != nil {
		repo.Close()
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize import service")
		log.Fatalf("FATAL: Failed to initialize import service: %v", err)
	}

	// 5. Run the import, stopping between reports on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	run, err := importService.Run(ctx)
	stop()
	if closeErr := repo.Close(); closeErr != nil {
		appLogger.Error(context.Background(), closeErr, "Error closing ledger repository")
	}
	if err != nil {
		appLogger.Error(context.Background(), err, "Import run failed")
		log.Fatalf("FATAL: Import run failed: %v", err)
	}

	if run == nil {
		appLogger.Info(context.Background(), "Nothing imported.")
		return
	}
	appLogger.Info(context.Background(), "Application finished gracefully.", map[string]interface{}{
		"importID": run.ID,
		"appended": run.Appended,
	})
}
