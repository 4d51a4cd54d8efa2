package ports

import (
	"context"

	"cryptoLedger/internal/domain"
)

// LedgerStore owns the persisted, append-only ledger.
type LedgerStore interface {
	// LoadAll returns every persisted entry in append order.
	LoadAll(ctx context.Context) ([]*domain.LedgerEntry, error)
	// Append persists the transactions in the given order, stamping them with importID.
	// It returns the number of rows written; on error some rows may already be persisted.
	Append(ctx context.Context, importID string, txs []domain.Transaction) (int, error)
}

// ImportRunRepository records the audit trail of processing runs.
type ImportRunRepository interface {
	// RecordImport saves a finished run.
	RecordImport(ctx context.Context, run *domain.ImportRun) error
	// FindImports returns runs, most recent first, up to limit.
	FindImports(ctx context.Context, limit int) ([]*domain.ImportRun, error)
}
