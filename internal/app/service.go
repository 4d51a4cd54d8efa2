package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"cryptoLedger/config"
	"cryptoLedger/internal/adapters/sheet"
	"cryptoLedger/internal/classify"
	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ledger"
	"cryptoLedger/internal/normalize"
	"cryptoLedger/internal/ports"
	"cryptoLedger/internal/utils"
)

const (
	formattedSheetName = "Formatted"
	// date part of output file names, followed by microseconds
	fileStampLayout = "02Jan2006_150405"
)

// ReportResult describes one report file found in the reports directory.
type ReportResult struct {
	Path         string
	Kind         domain.ReportKind
	Rows         int
	Transactions []domain.Transaction
}

// Recognized reports whether the report matched a known exchange signature.
func (r *ReportResult) Recognized() bool {
	return r.Kind != domain.ReportUnrecognized
}

// ImportService runs one import: normalize every report, reconcile the batch into the
// ledger and write the outputs.
type ImportService struct {
	cfg        *config.Config
	logger     ports.Logger
	reader     ports.SheetReader
	reconciler *ledger.Reconciler
	runs       ports.ImportRunRepository

	now   func() time.Time
	newID func() string
}

// NewImportService creates a new application service instance.
func NewImportService(
	cfg *config.Config,
	logger ports.Logger,
	reader ports.SheetReader,
	store ports.LedgerStore,
	runs ports.ImportRunRepository,
) (*ImportService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || reader == nil || store == nil || runs == nil {
		return nil, fmt.Errorf("missing required dependencies for ImportService: %w", ports.ErrInvalidRequest)
	}
	if cfg.ReportsDir == "" || cfg.ResultsDir == "" {
		return nil, fmt.Errorf("reports and results directories must be set: %w", ports.ErrConfigurationError)
	}

	reconciler, err := ledger.NewReconciler(store, logger)
	if err != nil {
		return nil, err
	}

	return &ImportService{
		cfg:        cfg,
		logger:     logger,
		reader:     reader,
		reconciler: reconciler,
		runs:       runs,
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

// Inspect classifies and normalizes every report without touching the ledger or
// writing any output. Unrecognized reports are returned with no transactions.
func (s *ImportService) Inspect(ctx context.Context) ([]*ReportResult, error) {
	paths, err := s.discoverReports()
	if err != nil {
		return nil, err
	}

	results := make([]*ReportResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.loadReport(ctx, path)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Run performs one import and returns its audit record. A nil record with a nil error
// means there was nothing to import.
func (s *ImportService) Run(ctx context.Context) (*domain.ImportRun, error) {
	run := &domain.ImportRun{ID: s.newID(), StartedAt: s.now().UTC()}
	s.logger.Info(ctx, "Starting import run", map[string]interface{}{
		"importID":   run.ID,
		"reportsDir": s.cfg.ReportsDir,
		"resultsDir": s.cfg.ResultsDir,
	})

	// --- 1. Directories ---
	for _, dir := range []string{s.cfg.ReportsDir, s.cfg.ResultsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory '%s': %v: %w", dir, err, ports.ErrSheetIO)
		}
	}

	// --- 2. Normalize reports one at a time ---
	reports, err := s.Inspect(ctx)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		s.logger.Info(ctx, "No reports found, nothing to import", map[string]interface{}{"reportsDir": s.cfg.ReportsDir})
		return nil, nil
	}

	var batch []domain.Transaction
	var recognized []*ReportResult
	for _, rep := range reports {
		if !rep.Recognized() {
			run.Skipped++
			continue
		}
		run.Reports++
		recognized = append(recognized, rep)
		batch = append(batch, rep.Transactions...)

		if s.cfg.WriteFormattedReports {
			if err := s.writeFormatted(ctx, rep); err != nil {
				return nil, err
			}
		}
	}
	if run.Reports == 0 {
		s.logger.Warn(ctx, "No recognized reports, nothing to import", map[string]interface{}{"skipped": run.Skipped})
		return nil, nil
	}

	// --- 3. Reconcile into the ledger ---
	result, err := s.reconciler.Reconcile(ctx, run.ID, batch)
	if err != nil {
		return nil, fmt.Errorf("ledger reconciliation failed: %w", err)
	}
	run.Submitted = result.Submitted
	run.Appended = result.Appended
	run.Duplicates = result.Duplicates

	// --- 4. Summary of net-new transactions ---
	summaryPath := uniquePath(filepath.Join(s.cfg.ResultsDir, "Cointracker_Import_Txs_"+s.fileStamp()), ".csv")
	if err := utils.WriteSummaryCSV(summaryPath, result.Accepted); err != nil {
		return nil, fmt.Errorf("failed to write summary '%s': %v: %w", summaryPath, err, ports.ErrSheetIO)
	}
	s.logger.Info(ctx, "Summary file written", map[string]interface{}{
		"path":         summaryPath,
		"transactions": len(result.Accepted),
	})

	// --- 5. Archive processed reports ---
	if s.cfg.ArchiveReports {
		if err := s.archive(ctx, recognized); err != nil {
			return nil, err
		}
	}

	// --- 6. Audit record ---
	run.FinishedAt = s.now().UTC()
	if err := s.runs.RecordImport(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record import run: %w", err)
	}

	s.logger.Info(ctx, "Import run finished", map[string]interface{}{
		"importID":   run.ID,
		"reports":    run.Reports,
		"skipped":    run.Skipped,
		"submitted":  run.Submitted,
		"appended":   run.Appended,
		"duplicates": run.Duplicates,
	})
	return run, nil
}

// discoverReports lists readable report files in name order.
func (s *ImportService) discoverReports() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.ReportsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list reports in '%s': %v: %w", s.cfg.ReportsDir, err, ports.ErrSheetIO)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.cfg.ReportsDir, e.Name())
		if s.reader.Supports(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *ImportService) loadReport(ctx context.Context, path string) (*ReportResult, error) {
	sh, err := s.reader.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	res := &ReportResult{Path: path, Kind: classify.Report(sh), Rows: sh.NumRows()}
	fields := map[string]interface{}{"report": sh.Name(), "rows": res.Rows}
	if !res.Recognized() {
		s.logger.Warn(ctx, "Unrecognized report format, skipping", fields)
		return res, nil
	}

	n, err := normalize.For(res.Kind, s.logger)
	if err != nil {
		return nil, err
	}
	res.Transactions, err = n.Normalize(ctx, sh)
	if err != nil {
		return nil, err
	}

	fields["kind"] = string(res.Kind)
	fields["transactions"] = len(res.Transactions)
	s.logger.Info(ctx, "Report normalized", fields)
	return res, nil
}

func (s *ImportService) writeFormatted(ctx context.Context, rep *ReportResult) error {
	records := make([][]string, 0, len(rep.Transactions))
	for i := range rep.Transactions {
		records = append(records, utils.FormattedRow(&rep.Transactions[i]))
	}

	path := uniquePath(filepath.Join(s.cfg.ResultsDir, fmt.Sprintf("%s_Txs_%s", rep.Kind.Exchange(), s.fileStamp())), ".xlsx")
	if err := sheet.WriteXLSX(path, formattedSheetName, utils.FormattedHeader, records); err != nil {
		return err
	}
	s.logger.Debug(ctx, "Formatted report written", map[string]interface{}{"path": path})
	return nil
}

func (s *ImportService) archive(ctx context.Context, reports []*ReportResult) error {
	dir := s.cfg.ProcessedDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory '%s': %v: %w", dir, err, ports.ErrSheetIO)
	}
	for _, rep := range reports {
		base := filepath.Base(rep.Path)
		ext := filepath.Ext(base)
		dst := uniquePath(filepath.Join(dir, base[:len(base)-len(ext)]), ext)
		if err := os.Rename(rep.Path, dst); err != nil {
			return fmt.Errorf("failed to archive report '%s': %v: %w", rep.Path, err, ports.ErrSheetIO)
		}
		s.logger.Debug(ctx, "Report archived", map[string]interface{}{"from": rep.Path, "to": dst})
	}
	return nil
}

// fileStamp renders the current time like "15Oct2026_093012" followed by microseconds.
func (s *ImportService) fileStamp() string {
	t := s.now()
	return fmt.Sprintf("%s%06d", t.Format(fileStampLayout), t.Nanosecond()/1000)
}

// uniquePath returns base+ext, or base_N+ext when that file already exists.
func uniquePath(base, ext string) string {
	path := base + ext
	for n := 2; ; n++ {
		if _, err := os.Stat(path); err != nil {
			return path
		}
		path = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
}
