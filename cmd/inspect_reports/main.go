package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"cryptoLedger/config"
	"cryptoLedger/internal/adapters/logger"
	"cryptoLedger/internal/adapters/sheet"
	"cryptoLedger/internal/adapters/sqlite"
	"cryptoLedger/internal/app"
	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ledger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.LedgerDBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize ledger repository: %v", err)
	}
	defer repo.Close()

	svc, err := app.NewImportService(cfg, appLogger, sheet.NewReader(), repo, repo)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize import service: %v", err)
	}

	reports, err := svc.Inspect(ctx)
	if err != nil {
		log.Fatalf("Error inspecting reports: %v", err)
	}
	if len(reports) == 0 {
		log.Printf("No reports found in %s.", cfg.ReportsDir)
		return
	}

	// Dry run against the current ledger: nothing is appended.
	entries, err := repo.LoadAll(ctx)
	if err != nil {
		log.Fatalf("Error loading ledger: %v", err)
	}
	known := ledger.KnownTxIDs(entries)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tKind\tRows\tTxs\tNew\tDuplicates\tNoTxID\t")

	var all []domain.Transaction
	for _, row := range previewReports(known, reports) {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t\n",
			row.File, row.Kind, row.Rows, row.Transactions, row.New, row.Duplicates, row.Unidentified)
	}
	for _, rep := range reports {
		all = append(all, rep.Transactions...)
	}
	w.Flush()

	fmt.Println("\n## Net flow by currency")
	printFlows(calculateFlows(all))
}

// ReportPreview is one line of the dry-run table.
type ReportPreview struct {
	File         string
	Kind         domain.ReportKind
	Rows         int
	Transactions int
	New          int
	Duplicates   int
	Unidentified int
}

// previewReports partitions each report in import order. Identifiers accepted from earlier
// reports count as known, matching what a real run appends. known is updated in place.
func previewReports(known map[string]struct{}, reports []*app.ReportResult) []ReportPreview {
	rows := make([]ReportPreview, 0, len(reports))
	for _, rep := range reports {
		accepted, duplicates := ledger.Partition(known, rep.Transactions)
		ledger.Remember(known, accepted)
		rows = append(rows, ReportPreview{
			File:         filepath.Base(rep.Path),
			Kind:         rep.Kind,
			Rows:         rep.Rows,
			Transactions: len(rep.Transactions),
			New:          len(accepted),
			Duplicates:   len(duplicates),
			Unidentified: countUnidentified(rep.Transactions),
		})
	}
	return rows
}

// Flow totals what one currency moved across a set of transactions.
type Flow struct {
	Received decimal.Decimal
	Sent     decimal.Decimal
	Fees     decimal.Decimal
}

// Net is received minus sent and fees.
func (f Flow) Net() decimal.Decimal {
	return f.Received.Sub(f.Sent).Sub(f.Fees)
}

func calculateFlows(txs []domain.Transaction) map[string]*Flow {
	flows := make(map[string]*Flow)
	flow := func(currency string) *Flow {
		f, ok := flows[currency]
		if !ok {
			f = &Flow{}
			flows[currency] = f
		}
		return f
	}

	for _, tx := range txs {
		// Withdrawals are modeled as equal receive and send legs; only the fee leaves.
		if tx.Received != nil {
			f := flow(tx.Received.Currency)
			f.Received = f.Received.Add(tx.Received.Qty)
		}
		if tx.Sent != nil {
			f := flow(tx.Sent.Currency)
			f.Sent = f.Sent.Add(tx.Sent.Qty)
		}
		if tx.Fee != nil {
			f := flow(tx.Fee.Currency)
			f.Fees = f.Fees.Add(tx.Fee.Qty)
		}
	}
	return flows
}

func printFlows(flows map[string]*Flow) {
	currencies := make([]string, 0, len(flows))
	for c := range flows {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Currency\tReceived\tSent\tFees\tNet\t")
	for _, c := range currencies {
		f := flows[c]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", c, f.Received, f.Sent, f.Fees, f.Net())
	}
	w.Flush()
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
