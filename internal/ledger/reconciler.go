// Package ledger merges newly normalized transactions into the persisted ledger.
package ledger

import (
	"context"
	"fmt"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// Result reports what one reconciliation did with the submitted batch.
type Result struct {
	Submitted  int
	Appended   int
	Duplicates int
	// Accepted holds the net-new transactions in the order they were appended.
	Accepted []domain.Transaction
}

// Consistent reports whether every submitted transaction was either appended or
// counted as a duplicate.
func (r Result) Consistent() bool {
	return r.Appended+r.Duplicates == r.Submitted
}

// Reconciler appends a batch to the ledger, skipping transactions whose identifier
// is already recorded.
type Reconciler struct {
	store  ports.LedgerStore
	logger ports.Logger
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(store ports.LedgerStore, logger ports.Logger) (*Reconciler, error) {
	if store == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Reconciler: %w", ports.ErrInvalidRequest)
	}
	return &Reconciler{store: store, logger: logger}, nil
}

// Partition splits batch into transactions to append and duplicates, preserving order.
// A transaction is a duplicate when its non-empty TxID is in known or earlier in the batch.
// Transactions without an identifier can never be matched and are always accepted.
func Partition(known map[string]struct{}, batch []domain.Transaction) (accepted []domain.Transaction, duplicates []domain.Transaction) {
	seen := make(map[string]struct{}, len(known)+len(batch))
	for id := range known {
		seen[id] = struct{}{}
	}
	accepted = make([]domain.Transaction, 0, len(batch))
	for _, tx := range batch {
		if tx.TxID != "" {
			if _, ok := seen[tx.TxID]; ok {
				duplicates = append(duplicates, tx)
				continue
			}
			seen[tx.TxID] = struct{}{}
		}
		accepted = append(accepted, tx)
	}
	return accepted, duplicates
}

// KnownTxIDs returns the set of non-empty identifiers present in entries.
func KnownTxIDs(entries []*domain.LedgerEntry) map[string]struct{} {
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.TxID != "" {
			ids[e.TxID] = struct{}{}
		}
	}
	return ids
}

// Remember adds the non-empty identifiers of txs to known, so batches partitioned one after
// another see each other's transactions.
func Remember(known map[string]struct{}, txs []domain.Transaction) {
	for _, tx := range txs {
		if tx.TxID != "" {
			known[tx.TxID] = struct{}{}
		}
	}
}

// Reconcile loads the ledger once, then appends the batch's net-new transactions under importID.
func (r *Reconciler) Reconcile(ctx context.Context, importID string, batch []domain.Transaction) (Result, error) {
	res := Result{Submitted: len(batch)}

	entries, err := r.store.LoadAll(ctx)
	if err != nil {
		r.logger.Error(ctx, err, "Failed to load ledger")
		return res, fmt.Errorf("failed to load ledger: %w", err)
	}

	accepted, duplicates := Partition(KnownTxIDs(entries), batch)
	res.Duplicates = len(duplicates)
	r.logger.Info(ctx, "Starting ledger update", map[string]interface{}{
		"startRow":     len(entries) + 2,
		"transactions": len(batch),
		"duplicates":   len(duplicates),
	})

	if unidentified := countUnidentified(accepted); unidentified > 0 {
		r.logger.Warn(ctx, "Transactions without identifiers cannot be deduplicated", map[string]interface{}{
			"count": unidentified,
		})
	}

	if len(accepted) > 0 {
		n, err := r.store.Append(ctx, importID, accepted)
		res.Appended = n
		if err != nil {
			r.logger.Error(ctx, err, "Ledger append interrupted", map[string]interface{}{"appended": n, "pending": len(accepted)})
			return res, fmt.Errorf("failed to append %d transactions: %w", len(accepted), err)
		}
	}
	res.Accepted = accepted

	if !res.Consistent() {
		err := fmt.Errorf("appended %d + duplicates %d != submitted %d: %w", res.Appended, res.Duplicates, res.Submitted, ports.ErrLedgerIO)
		r.logger.Error(ctx, err, "Ledger consistency check failed")
		return res, err
	}
	r.logger.Info(ctx, "Ledger updated", map[string]interface{}{
		"appended":  res.Appended,
		"submitted": res.Submitted,
	})
	return res, nil
}

func countUnidentified(txs []domain.Transaction) int {
	n := 0
	for _, tx := range txs {
		if tx.TxID == "" {
			n++
		}
	}
	return n
}
