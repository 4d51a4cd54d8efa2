package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// Repository implements the ports.LedgerStore and ports.ImportRunRepository interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/ledger.db" // Default path
	}

	dsn := ":memory:"
	if dbPath != ":memory:" {
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			err = fmt.Errorf("failed to create data directory '%s': %v: %w", filepath.Dir(dbPath), err, ports.ErrLedgerIO)
			cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
			return nil, err
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %v: %w", dbPath, err, ports.ErrLedgerIO)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %v: %w", dbPath, err, ports.ErrLedgerIO)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// One connection: the ledger is written by a single run, and ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite ledger opened", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// Quantities are stored as TEXT so decimals round-trip exactly.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS ledger (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		received_qty TEXT NULL,
		received_currency TEXT NULL,
		sent_qty TEXT NULL,
		sent_currency TEXT NULL,
		fee_amount TEXT NULL,
		fee_currency TEXT NULL,
		tag TEXT NOT NULL DEFAULT '',
		cost_basis TEXT NULL,
		cost_basis_units TEXT NOT NULL DEFAULT '',
		exchange TEXT NOT NULL,
		tx_id TEXT NOT NULL DEFAULT '',
		import_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		reports INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		submitted INTEGER NOT NULL,
		appended INTEGER NOT NULL,
		duplicates INTEGER NOT NULL
	);
	-- Identifiers are unique when present; transactions without one are never matched.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_tx_id ON ledger (tx_id) WHERE tx_id <> '';
	CREATE INDEX IF NOT EXISTS idx_ledger_import_id ON ledger (import_id);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %v: %w", err, ports.ErrLedgerIO)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite ledger")
		return r.db.Close()
	}
	return nil
}

// --- LedgerStore Implementation ---

// LoadAll returns every ledger entry in append order.
func (r *Repository) LoadAll(ctx context.Context) ([]*domain.LedgerEntry, error) {
	const query = `
	SELECT position, date, received_qty, received_currency, sent_qty, sent_currency,
	       fee_amount, fee_currency, cost_basis, cost_basis_units, exchange, tx_id, import_id
	FROM ledger
	ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %v: %w", err, ports.ErrLedgerIO)
	}
	defer rows.Close()

	entries := make([]*domain.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %v: %w", err, ports.ErrLedgerIO)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %v: %w", err, ports.ErrLedgerIO)
	}
	return entries, nil
}

// Append inserts the transactions one by one in the given order. Rows written before a
// failure stay in the ledger; a rerun skips them by identifier.
func (r *Repository) Append(ctx context.Context, importID string, txs []domain.Transaction) (int, error) {
	const query = `
	INSERT INTO ledger (date, received_qty, received_currency, sent_qty, sent_currency,
	                    fee_amount, fee_currency, cost_basis, cost_basis_units, exchange, tx_id, import_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare ledger insert: %v: %w", err, ports.ErrLedgerIO)
	}
	defer stmt.Close()

	for i := range txs {
		tx := &txs[i]
		receivedQty, receivedCurrency := amountColumns(tx.Received)
		sentQty, sentCurrency := amountColumns(tx.Sent)
		feeQty, feeCurrency := amountColumns(tx.Fee)

		_, err := stmt.ExecContext(ctx,
			tx.Date, receivedQty, receivedCurrency, sentQty, sentCurrency,
			feeQty, feeCurrency, tx.CostBasis, tx.CostBasisUnits, string(tx.Exchange), tx.TxID, importID)
		if err != nil {
			if isUniqueViolation(err) {
				return i, fmt.Errorf("transaction %s: %w", tx.TxID, ports.ErrDuplicateEntry)
			}
			return i, fmt.Errorf("failed to insert ledger row for transaction %q: %v: %w", tx.TxID, err, ports.ErrLedgerIO)
		}
	}
	r.logger.Debug(ctx, "Ledger rows appended", map[string]interface{}{"count": len(txs), "importID": importID})
	return len(txs), nil
}

// --- ImportRunRepository Implementation ---

// RecordImport saves a finished run.
func (r *Repository) RecordImport(ctx context.Context, run *domain.ImportRun) error {
	const query = `
	INSERT INTO import_runs (id, started_at, finished_at, reports, skipped, submitted, appended, duplicates)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, run.Reports, run.Skipped, run.Submitted, run.Appended, run.Duplicates)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("import run %s: %w", run.ID, ports.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert import run %s: %v: %w", run.ID, err, ports.ErrLedgerIO)
	}
	r.logger.Debug(ctx, "Import run recorded", map[string]interface{}{"importID": run.ID})
	return nil
}

// FindImports returns runs, most recent first, up to limit.
func (r *Repository) FindImports(ctx context.Context, limit int) ([]*domain.ImportRun, error) {
	const query = `
	SELECT id, started_at, finished_at, reports, skipped, submitted, appended, duplicates
	FROM import_runs
	ORDER BY started_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %v: %w", err, ports.ErrLedgerIO)
	}
	defer rows.Close()

	runs := make([]*domain.ImportRun, 0)
	for rows.Next() {
		run := &domain.ImportRun{}
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Reports, &run.Skipped,
			&run.Submitted, &run.Appended, &run.Duplicates); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %v: %w", err, ports.ErrLedgerIO)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import runs: %v: %w", err, ports.ErrLedgerIO)
	}
	return runs, nil
}

// --- Helper Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func amountColumns(a *domain.Amount) (qty, currency sql.NullString) {
	if a == nil {
		return qty, currency
	}
	return sql.NullString{String: a.Qty.String(), Valid: true}, sql.NullString{String: a.Currency, Valid: true}
}

func amountFromColumns(qty, currency sql.NullString) (*domain.Amount, error) {
	if !qty.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(qty.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored quantity %q: %w", qty.String, err)
	}
	return &domain.Amount{Qty: d, Currency: currency.String}, nil
}

// scanEntry scans a row into a domain.LedgerEntry.
func scanEntry(s scanner) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{}
	var (
		receivedQty, receivedCurrency sql.NullString
		sentQty, sentCurrency         sql.NullString
		feeQty, feeCurrency           sql.NullString
		exchange                      string
	)
	err := s.Scan(
		&e.Position, &e.Date, &receivedQty, &receivedCurrency, &sentQty, &sentCurrency,
		&feeQty, &feeCurrency, &e.CostBasis, &e.CostBasisUnits, &exchange, &e.TxID, &e.ImportID)
	if err != nil {
		return nil, err
	}
	e.Exchange = domain.Exchange(exchange)
	if e.Received, err = amountFromColumns(receivedQty, receivedCurrency); err != nil {
		return nil, err
	}
	if e.Sent, err = amountFromColumns(sentQty, sentCurrency); err != nil {
		return nil, err
	}
	if e.Fee, err = amountFromColumns(feeQty, feeCurrency); err != nil {
		return nil, err
	}
	return e, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
