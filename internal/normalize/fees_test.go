package normalize

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

func amount(qty, currency string) domain.Amount {
	return domain.Amount{Qty: decimal.RequireFromString(qty), Currency: currency}
}

func TestPercentageFee(t *testing.T) {
	tests := []struct {
		name         string
		received     domain.Amount
		sent         domain.Amount
		wantReceived string
		wantSent     string
	}{
		{name: "btc leg uses 0.2%", received: amount("0.5", "BTC"), sent: amount("1000", "CAD"), wantReceived: "0.001", wantSent: "2"},
		{name: "btc on sent side", received: amount("1000", "CAD"), sent: amount("0.5", "BTC"), wantReceived: "2", wantSent: "0.001"},
		{name: "other pairs use 0.4%", received: amount("2", "ETH"), sent: amount("5000", "CAD"), wantReceived: "0.008", wantSent: "20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := PercentageFee(tt.received, tt.sent)
			assertQty(t, tt.wantReceived, fee.Received.Qty)
			assert.Equal(t, tt.received.Currency, fee.Received.Currency)
			assertQty(t, tt.wantSent, fee.Sent.Qty)
			assert.Equal(t, tt.sent.Currency, fee.Sent.Currency)
		})
	}
}

func TestWithdrawalFee(t *testing.T) {
	tests := []struct {
		currency string
		want     string
	}{
		{"BTC", "0.0005"},
		{"ETH", "0.005"},
		{"DOGE", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			fee, err := WithdrawalFee(tt.currency)
			require.NoError(t, err)
			assertQty(t, tt.want, fee.Qty)
			assert.Equal(t, tt.currency, fee.Currency)
		})
	}

	t.Run("lower case currency", func(t *testing.T) {
		fee, err := WithdrawalFee("btc")
		require.NoError(t, err)
		assertQty(t, "0.0005", fee.Qty)
		assert.Equal(t, "BTC", fee.Currency)
	})

	_, err := WithdrawalFee("LTC")
	assert.True(t, errors.Is(err, ports.ErrUndefinedWithdrawalFee))
}

func TestDirection(t *testing.T) {
	side, err := Direction("CAD", "BTC")
	require.NoError(t, err)
	assert.Equal(t, domain.Sell, side)

	side, err = Direction("BTC", "CAD")
	require.NoError(t, err)
	assert.Equal(t, domain.Buy, side)

	_, err = Direction("ETH", "BTC")
	assert.True(t, errors.Is(err, ports.ErrAmbiguousTradeDirection))
}

func TestCostBasis(t *testing.T) {
	tests := []struct {
		name      string
		side      domain.TradeSide
		received  domain.Amount
		sent      domain.Amount
		fee       string
		want      string
		wantUnits string
		wantErr   error
	}{
		{
			name: "buy subtracts fee", side: domain.Buy,
			received: amount("1.0", "BTC"), sent: amount("100", "CAD"), fee: "0.004",
			want: "100.402", wantUnits: "CAD/BTC",
		},
		{
			name: "sell ignores fee", side: domain.Sell,
			received: amount("1000", "CAD"), sent: amount("0.3", "ETH"), fee: "0.0012",
			want: "3333.333", wantUnits: "CAD/ETH",
		},
		{
			name: "buy with fee equal to quantity", side: domain.Buy,
			received: amount("0.004", "BTC"), sent: amount("100", "CAD"), fee: "0.004",
			wantErr: ports.ErrMalformedReport,
		},
		{
			name: "sell of nothing", side: domain.Sell,
			received: amount("10", "CAD"), sent: amount("0", "ETH"), fee: "0",
			wantErr: ports.ErrMalformedReport,
		},
		{
			name: "unclassified side", side: "",
			received: amount("1", "ETH"), sent: amount("0.05", "BTC"), fee: "0",
			wantErr: ports.ErrAmbiguousTradeDirection,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			basis, units, err := CostBasis(tt.side, tt.received, tt.sent, decimal.RequireFromString(tt.fee))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assertQty(t, tt.want, basis)
			assert.Equal(t, tt.wantUnits, units)
		})
	}
}

func TestParseQty(t *testing.T) {
	d, err := parseQty(" 1,234.5678 ")
	require.NoError(t, err)
	assertQty(t, "1234.5678", d)

	_, err = parseQty("n/a")
	assert.True(t, errors.Is(err, ports.ErrMalformedReport))
}
