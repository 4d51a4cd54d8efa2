package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"cryptoLedger/config"
	"cryptoLedger/internal/adapters/logger"
	"cryptoLedger/internal/adapters/sheet"
	"cryptoLedger/internal/adapters/sqlite"
	"cryptoLedger/internal/utils"
)

const (
	ledgerSheetName = "Transactions"
	recentImports   = 5
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	// 3. Open the ledger
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.LedgerDBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize ledger repository")
		log.Fatalf("FATAL: Failed to initialize ledger repository: %v", err)
	}
	defer repo.Close()

	entries, err := repo.LoadAll(ctx)
	if err != nil {
		appLogger.Error(ctx, err, "Error loading ledger")
		log.Fatalf("Error loading ledger: %v", err)
	}
	appLogger.Info(ctx, "Loaded ledger", map[string]interface{}{"count": len(entries)})

	// 4. Write CSV and XLSX copies
	stamp := time.Now().Format("20060102_150405")
	csvPath := filepath.Join(cfg.ResultsDir, fmt.Sprintf("Master_Ledger_%s.csv", stamp))
	if err := utils.WriteLedgerCSV(csvPath, entries); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}

	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, utils.LedgerRow(e))
	}
	xlsxPath := filepath.Join(cfg.ResultsDir, fmt.Sprintf("Master_Ledger_%s.xlsx", stamp))
	if err := sheet.WriteXLSX(xlsxPath, ledgerSheetName, utils.LedgerHeader, records); err != nil {
		appLogger.Error(ctx, err, "Error writing XLSX")
		log.Fatalf("Error writing XLSX: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"csv": csvPath, "xlsx": xlsxPath})

	// 5. Recent import runs
	runs, err := repo.FindImports(ctx, recentImports)
	if err != nil {
		appLogger.Error(ctx, err, "Error loading import runs")
		return
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  reports=%d skipped=%d submitted=%d appended=%d duplicates=%d\n",
			run.StartedAt.Local().Format(time.DateTime), run.ID,
			run.Reports, run.Skipped, run.Submitted, run.Appended, run.Duplicates)
	}
}
