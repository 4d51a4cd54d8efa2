package normalize

import (
	"context"
	"fmt"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// NDAX ledger columns.
const (
	ndaxColID       = domain.ColA
	ndaxColDate     = domain.ColC
	ndaxColTime     = domain.ColD
	ndaxColType     = domain.ColE
	ndaxColCurrency = domain.ColF
	ndaxColAmount   = domain.ColH
)

// NDAX row types.
const (
	ndaxDeposit         = "Deposit"
	ndaxAffiliatePayout = "Affiliate Payout"
	ndaxTrade           = "Trade"
)

// tradeGroupSize is the number of rows one NDAX trade spans: two legs and a fee row.
const tradeGroupSize = 3

type ndaxState int

const (
	scanning ndaxState = iota
	inTradeGroup
)

// ndaxNormalizer reads the NDAX ledger export. The export lists the newest entry first, so rows
// are walked from the bottom up. A trade appears as three consecutive rows; walking upwards the
// first two are its legs and the third is the fee.
type ndaxNormalizer struct {
	logger ports.Logger
}

// tradeGroup holds the rows of one trade in the order they are met: primary leg, other leg, fee.
type tradeGroup struct {
	start int // data row index of the primary leg
	rows  []domain.RawRow
}

func (n *ndaxNormalizer) Normalize(ctx context.Context, s ports.Sheet) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, s.NumRows())
	state := scanning
	var group tradeGroup

	for cursor := s.NumRows() - 1; cursor >= 0; cursor-- {
		row := s.Row(cursor)

		if state == inTradeGroup {
			group.rows = append(group.rows, row)
			if len(group.rows) < tradeGroupSize {
				continue
			}
			tx, err := n.trade(ctx, s, group)
			if err != nil {
				return nil, err
			}
			txs = append(txs, tx)
			state = scanning
			continue
		}

		switch typ := row.Cell(ndaxColType); typ {
		case ndaxTrade:
			if cursor < tradeGroupSize-1 {
				return nil, rowError(s, cursor, fmt.Errorf("trade needs %d rows, %d left: %w", tradeGroupSize, cursor+1, ports.ErrMalformedReport))
			}
			group = tradeGroup{start: cursor, rows: []domain.RawRow{row}}
			state = inTradeGroup
		case ndaxDeposit, ndaxAffiliatePayout:
			tx, keep, err := n.receipt(ctx, s, cursor, typ)
			if err != nil {
				return nil, err
			}
			if keep {
				txs = append(txs, tx)
			}
		default:
			fields := rowFields(s, cursor)
			fields["type"] = typ
			n.logger.Warn(ctx, "Skipping NDAX row with unsupported type", fields)
		}
	}
	return txs, nil
}

func (n *ndaxNormalizer) date(ctx context.Context, s ports.Sheet, i int) (string, error) {
	row := s.Row(i)
	date, err := NDAXDate(row.Cell(ndaxColDate), row.Cell(ndaxColTime))
	if err != nil {
		return "", rowError(s, i, err)
	}
	if IsMidnightAmbiguous(row.Cell(ndaxColTime)) {
		fields := rowFields(s, i)
		fields["time"] = row.Cell(ndaxColTime)
		n.logger.Warn(ctx, "12 AM time kept as hour 12", fields)
	}
	return date, nil
}

// receipt handles single-row inflows. Only fiat deposits are kept: crypto deposits are
// expected to show up again as trade rows.
func (n *ndaxNormalizer) receipt(ctx context.Context, s ports.Sheet, i int, typ string) (domain.Transaction, bool, error) {
	row := s.Row(i)
	currency := currencyCell(row, ndaxColCurrency)
	if typ == ndaxDeposit && currency != domain.FiatCAD {
		fields := rowFields(s, i)
		fields["currency"] = currency
		n.logger.Debug(ctx, "Skipping non-fiat NDAX deposit", fields)
		return domain.Transaction{}, false, nil
	}

	date, err := n.date(ctx, s, i)
	if err != nil {
		return domain.Transaction{}, false, err
	}
	qty, err := parseQty(row.Cell(ndaxColAmount))
	if err != nil {
		return domain.Transaction{}, false, rowError(s, i, err)
	}
	return domain.Transaction{
		Date:     date,
		Exchange: domain.ExchangeNDAX,
		Received: domain.NewAmount(qty, currency),
		TxID:     row.Cell(ndaxColID),
	}, true, nil
}

func (n *ndaxNormalizer) trade(ctx context.Context, s ports.Sheet, g tradeGroup) (domain.Transaction, error) {
	primary, other, feeRow := g.rows[0], g.rows[1], g.rows[2]

	date, err := n.date(ctx, s, g.start)
	if err != nil {
		return domain.Transaction{}, err
	}
	primaryQty, err := parseQty(primary.Cell(ndaxColAmount))
	if err != nil {
		return domain.Transaction{}, rowError(s, g.start, err)
	}
	otherQty, err := parseQty(other.Cell(ndaxColAmount))
	if err != nil {
		return domain.Transaction{}, rowError(s, g.start-1, err)
	}
	feeQty, err := parseQty(feeRow.Cell(ndaxColAmount))
	if err != nil {
		return domain.Transaction{}, rowError(s, g.start-2, err)
	}

	tx := domain.Transaction{
		Date:     date,
		Exchange: domain.ExchangeNDAX,
		Fee:      domain.NewAmount(feeQty.Neg(), currencyCell(feeRow, ndaxColCurrency)),
		TxID:     primary.Cell(ndaxColID),
	}
	if primaryQty.IsPositive() {
		tx.Received = domain.NewAmount(primaryQty, currencyCell(primary, ndaxColCurrency))
		tx.Sent = domain.NewAmount(otherQty.Neg(), currencyCell(other, ndaxColCurrency))
	} else {
		tx.Received = domain.NewAmount(otherQty, currencyCell(other, ndaxColCurrency))
		tx.Sent = domain.NewAmount(primaryQty.Neg(), currencyCell(primary, ndaxColCurrency))
	}

	fields := rowFields(s, g.start)
	fields["txid"] = tx.TxID
	side, err := Direction(tx.Received.Currency, tx.Sent.Currency)
	if err != nil {
		fields["error"] = err.Error()
		n.logger.Warn(ctx, "Crypto-to-crypto trade, cost basis left blank", fields)
		return tx, nil
	}
	applyCostBasis(ctx, n.logger, &tx, side, tx.Fee.Qty, fields)
	return tx, nil
}
