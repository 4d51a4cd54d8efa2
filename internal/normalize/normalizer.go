// Package normalize turns exchange-specific report rows into canonical transactions.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// Normalizer converts every data row of one report kind into canonical transactions,
// in the order the ledger should receive them.
type Normalizer interface {
	Normalize(ctx context.Context, s ports.Sheet) ([]domain.Transaction, error)
}

// For returns the normalizer for a classified report.
func For(kind domain.ReportKind, logger ports.Logger) (Normalizer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for normalizers: %w", ports.ErrInvalidRequest)
	}
	switch kind {
	case domain.ReportNDAX:
		return &ndaxNormalizer{logger: logger}, nil
	case domain.ReportCoinsquareFundWithdraw:
		return &fundWithdrawNormalizer{logger: logger}, nil
	case domain.ReportCoinsquareQuickTrade:
		return &quickTradeNormalizer{logger: logger}, nil
	default:
		return nil, fmt.Errorf("report kind %q: %w", kind, ports.ErrUnrecognizedFormat)
	}
}

// rowError locates err at the spreadsheet row of data row i (header is row 1).
func rowError(s ports.Sheet, i int, err error) error {
	return fmt.Errorf("report '%s' row %d: %w", s.Name(), i+2, err)
}

// currencyCell reads a currency code, upper-cased so fee tables and fiat checks match it.
func currencyCell(row domain.RawRow, col int) string {
	return strings.ToUpper(row.Cell(col))
}

func rowFields(s ports.Sheet, i int) map[string]interface{} {
	return map[string]interface{}{"report": s.Name(), "row": i + 2}
}

// applyCostBasis sets the cost basis of a trade. Trades that cannot be priced against the fiat
// currency are still kept, with the cost basis left blank and a warning for the operator.
func applyCostBasis(ctx context.Context, logger ports.Logger, tx *domain.Transaction, side domain.TradeSide, fee decimal.Decimal, fields map[string]interface{}) {
	basis, units, err := CostBasis(side, *tx.Received, *tx.Sent, fee)
	if err != nil {
		msg := "Cost basis not computed"
		if errors.Is(err, ports.ErrAmbiguousTradeDirection) {
			msg = "Crypto-to-crypto trade, cost basis left blank"
		}
		fields["error"] = err.Error()
		logger.Warn(ctx, msg, fields)
		return
	}
	tx.CostBasis = decimal.NewNullDecimal(basis)
	tx.CostBasisUnits = units
}
