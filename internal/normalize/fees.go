package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

const costBasisPlaces = 3

var (
	btcTradeFeeRate    = decimal.RequireFromString("0.002") // 0.2%
	nonBTCTradeFeeRate = decimal.RequireFromString("0.004") // 0.4%

	// Fixed Coinsquare withdrawal fees, charged in the withdrawn currency.
	withdrawalFees = map[string]decimal.Decimal{
		domain.BTC:  decimal.RequireFromString("0.0005"),
		domain.ETH:  decimal.RequireFromString("0.005"),
		domain.DOGE: decimal.NewFromInt(2),
	}
)

// TradeFee is a percentage trade fee expressed in the currency of each leg.
// Normalizers pick the leg matching the currency the exchange actually charged.
type TradeFee struct {
	Received domain.Amount
	Sent     domain.Amount
}

// PercentageFee applies the Coinsquare trade fee rate to both legs.
func PercentageFee(received, sent domain.Amount) TradeFee {
	rate := nonBTCTradeFeeRate
	if received.Currency == domain.BTC || sent.Currency == domain.BTC {
		rate = btcTradeFeeRate
	}
	return TradeFee{
		Received: domain.Amount{Qty: received.Qty.Mul(rate), Currency: received.Currency},
		Sent:     domain.Amount{Qty: sent.Qty.Mul(rate), Currency: sent.Currency},
	}
}

// WithdrawalFee returns the fixed fee for withdrawing currency.
func WithdrawalFee(currency string) (domain.Amount, error) {
	currency = strings.ToUpper(currency)
	fee, ok := withdrawalFees[currency]
	if !ok {
		return domain.Amount{}, fmt.Errorf("currency %q: %w", currency, ports.ErrUndefinedWithdrawalFee)
	}
	return domain.Amount{Qty: fee, Currency: currency}, nil
}

// Direction classifies a trade against the fiat quote currency.
func Direction(receivedCurrency, sentCurrency string) (domain.TradeSide, error) {
	switch {
	case receivedCurrency == domain.FiatCAD:
		return domain.Sell, nil
	case sentCurrency == domain.FiatCAD:
		return domain.Buy, nil
	default:
		return "", fmt.Errorf("%s for %s: %w", sentCurrency, receivedCurrency, ports.ErrAmbiguousTradeDirection)
	}
}

// CostBasis returns the rate of a trade rounded to 3 places and its units.
// A BUY records the received quantity before the fee, so the fee is taken off first.
func CostBasis(side domain.TradeSide, received, sent domain.Amount, fee decimal.Decimal) (decimal.Decimal, string, error) {
	switch side {
	case domain.Buy:
		net := received.Qty.Sub(fee)
		if net.IsZero() {
			return decimal.Zero, "", fmt.Errorf("zero net received quantity: %w", ports.ErrMalformedReport)
		}
		return sent.Qty.Div(net).Round(costBasisPlaces), sent.Currency + "/" + received.Currency, nil
	case domain.Sell:
		if sent.Qty.IsZero() {
			return decimal.Zero, "", fmt.Errorf("zero sent quantity: %w", ports.ErrMalformedReport)
		}
		return received.Qty.Div(sent.Qty).Round(costBasisPlaces), received.Currency + "/" + sent.Currency, nil
	default:
		return decimal.Zero, "", fmt.Errorf("side %q: %w", side, ports.ErrAmbiguousTradeDirection)
	}
}

// parseQty reads a report quantity, which may carry thousands separators.
func parseQty(raw string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid quantity %q: %w", raw, ports.ErrMalformedReport)
	}
	return d, nil
}
