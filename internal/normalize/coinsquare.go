package normalize

import (
	"context"
	"strings"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// Coinsquare fund/withdraw columns.
const (
	fwColDate      = domain.ColA
	fwColOperation = domain.ColC
	fwColAmount    = domain.ColD
	fwColCurrency  = domain.ColE
)

// Coinsquare quick-trade columns.
const (
	qtColDate         = domain.ColA
	qtColFromCurrency = domain.ColB
	qtColFromAmount   = domain.ColC
	qtColToCurrency   = domain.ColD
	qtColToAmount     = domain.ColE
)

const (
	operationCredit = "credit"
	operationDebit  = "debit"
)

// fundWithdrawNormalizer reads the Coinsquare deposit/withdrawal report. The report carries no
// transaction identifier, so every transaction has an empty TxID.
type fundWithdrawNormalizer struct {
	logger ports.Logger
}

func (n *fundWithdrawNormalizer) Normalize(ctx context.Context, s ports.Sheet) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, s.NumRows())
	for i := 0; i < s.NumRows(); i++ {
		row := s.Row(i)

		date, err := CoinsquareDate(row.Cell(fwColDate))
		if err != nil {
			return nil, rowError(s, i, err)
		}
		qty, err := parseQty(row.Cell(fwColAmount))
		if err != nil {
			return nil, rowError(s, i, err)
		}
		currency := currencyCell(row, fwColCurrency)
		tx := domain.Transaction{Date: date, Exchange: domain.ExchangeCoinsquare}

		switch operation := strings.ToLower(row.Cell(fwColOperation)); operation {
		case operationCredit:
			tx.Received = domain.NewAmount(qty, currency)
		case operationDebit:
			// A withdrawal is a transfer to self; the fee is recorded apart from the quantity.
			tx.Received = domain.NewAmount(qty, currency)
			tx.Sent = domain.NewAmount(qty, currency)
			fee, err := WithdrawalFee(currency)
			if err != nil {
				fields := rowFields(s, i)
				fields["currency"] = currency
				n.logger.Warn(ctx, "Withdrawal fee unknown, fee left blank", fields)
			} else {
				tx.Fee = &fee
			}
		default:
			fields := rowFields(s, i)
			fields["operation"] = operation
			n.logger.Warn(ctx, "Skipping row with unknown operation", fields)
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// quickTradeNormalizer reads the Coinsquare quick-trade report. Fees are not listed in the
// report and are derived from the published rates.
type quickTradeNormalizer struct {
	logger ports.Logger
}

func (n *quickTradeNormalizer) Normalize(ctx context.Context, s ports.Sheet) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, s.NumRows())
	for i := 0; i < s.NumRows(); i++ {
		row := s.Row(i)

		date, err := CoinsquareDate(row.Cell(qtColDate))
		if err != nil {
			return nil, rowError(s, i, err)
		}
		fromQty, err := parseQty(row.Cell(qtColFromAmount))
		if err != nil {
			return nil, rowError(s, i, err)
		}
		toQty, err := parseQty(row.Cell(qtColToAmount))
		if err != nil {
			return nil, rowError(s, i, err)
		}
		to := domain.Amount{Qty: toQty, Currency: currencyCell(row, qtColToCurrency)}
		from := domain.Amount{Qty: fromQty, Currency: currencyCell(row, qtColFromCurrency)}

		fee := PercentageFee(to, from)
		tx := domain.Transaction{Date: date, Exchange: domain.ExchangeCoinsquare}

		side, err := Direction(to.Currency, from.Currency)
		switch {
		case err != nil:
			fields := rowFields(s, i)
			fields["error"] = err.Error()
			n.logger.Warn(ctx, "Crypto-to-crypto trade, cost basis left blank", fields)
			tx.Fee = &fee.Received
		case side == domain.Buy:
			// The report's "to" amount is net of the fee.
			tx.Fee = &fee.Received
			to.Qty = to.Qty.Add(fee.Received.Qty)
		default:
			tx.Fee = &fee.Sent
		}
		tx.Received = &to
		tx.Sent = &from

		if err == nil {
			applyCostBasis(ctx, n.logger, &tx, side, tx.Fee.Qty, rowFields(s, i))
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
