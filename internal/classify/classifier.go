// Package classify detects which exchange and report sub-format produced a sheet.
package classify

import (
	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// Header signatures of the supported exports.
const (
	ndaxSignature            = "txid"          // A1
	coinsquareTradeSignature = "btid"          // G1
	coinsquareQuickSignature = "to_amount"     // E1
	fundWithdrawSignature    = "description"   // B1
	quickTradeSignature      = "from_currency" // B1
)

// Report classifies a sheet by its header row. Unknown headers yield domain.ReportUnrecognized.
func Report(s ports.Sheet) domain.ReportKind {
	header := s.Header()

	if header.Cell(domain.ColA) == ndaxSignature {
		return domain.ReportNDAX
	}
	if header.Cell(domain.ColG) != coinsquareTradeSignature && header.Cell(domain.ColE) != coinsquareQuickSignature {
		return domain.ReportUnrecognized
	}

	switch header.Cell(domain.ColB) {
	case fundWithdrawSignature:
		return domain.ReportCoinsquareFundWithdraw
	case quickTradeSignature:
		return domain.ReportCoinsquareQuickTrade
	default:
		return domain.ReportUnrecognized
	}
}
