package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"cryptoLedger/internal/domain"
)

// SummaryHeader is the import layout expected by the tax tool.
var SummaryHeader = []string{
	"Date", "Received Quantity", "Received Currency", "Sent Quantity",
	"Sent Currency", "Fee Amount", "Fee Currency", "Tag",
}

// LedgerHeader extends SummaryHeader with the columns kept only in the ledger.
var LedgerHeader = append(append([]string{}, SummaryHeader...),
	"Cost Basis", "Cost Basis Units", "Exchange", "Tx_Id")

// FormattedHeader is used by the per-report formatted workbooks (no Tag column).
var FormattedHeader = SummaryHeader[:7:7]

func amountCells(a *domain.Amount) (string, string) {
	if a == nil {
		return "", ""
	}
	return a.Qty.String(), a.Currency
}

// FormattedRow renders columns A-G of the import layout.
func FormattedRow(tx *domain.Transaction) []string {
	receivedQty, receivedCurrency := amountCells(tx.Received)
	sentQty, sentCurrency := amountCells(tx.Sent)
	feeQty, feeCurrency := amountCells(tx.Fee)
	return []string{tx.Date, receivedQty, receivedCurrency, sentQty, sentCurrency, feeQty, feeCurrency}
}

// SummaryRow renders one transaction in the summary layout. Tag is always blank.
func SummaryRow(tx *domain.Transaction) []string {
	return append(FormattedRow(tx), "")
}

// LedgerRow renders one persisted entry in the 12-column ledger layout.
func LedgerRow(e *domain.LedgerEntry) []string {
	costBasis := ""
	if e.CostBasis.Valid {
		costBasis = e.CostBasis.Decimal.StringFixed(3)
	}
	return append(SummaryRow(&e.Transaction), costBasis, e.CostBasisUnits, string(e.Exchange), e.TxID)
}

// WriteSummaryCSV writes the batch's transactions, header first.
func WriteSummaryCSV(path string, txs []domain.Transaction) error {
	records := make([][]string, 0, len(txs))
	for i := range txs {
		records = append(records, SummaryRow(&txs[i]))
	}
	return writeCSV(path, SummaryHeader, records)
}

// WriteLedgerCSV writes the full ledger in append order.
func WriteLedgerCSV(path string, entries []*domain.LedgerEntry) error {
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, LedgerRow(e))
	}
	return writeCSV(path, LedgerHeader, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := writer.WriteAll(records); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %d rows to %s: %w", len(records), path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
