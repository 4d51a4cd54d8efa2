package domain

// Exchange identifies the exchange a transaction was reported by.
type Exchange string

const (
	ExchangeCoinsquare Exchange = "Coinsquare"
	ExchangeNDAX       Exchange = "NDAX"
)

// TradeSide represents the direction of a trade against the fiat quote currency.
type TradeSide string

const (
	Buy  TradeSide = "BUY"
	Sell TradeSide = "SELL"
)

// ReportKind is the exchange and sub-format detected from a report's header row.
type ReportKind string

const (
	ReportUnrecognized           ReportKind = "Unrecognized"
	ReportNDAX                   ReportKind = "NDAX"
	ReportCoinsquareFundWithdraw ReportKind = "CoinsquareFundWithdraw"
	ReportCoinsquareQuickTrade   ReportKind = "CoinsquareQuickTrade"
)

// Exchange returns the exchange that produces reports of this kind.
func (k ReportKind) Exchange() Exchange {
	switch k {
	case ReportNDAX:
		return ExchangeNDAX
	case ReportCoinsquareFundWithdraw, ReportCoinsquareQuickTrade:
		return ExchangeCoinsquare
	default:
		return ""
	}
}

// Currencies with special meaning to fee and cost-basis rules.
const (
	FiatCAD = "CAD" // the only fiat quote currency trades are classified against
	BTC     = "BTC"
	ETH     = "ETH"
	DOGE    = "DOGE"
)
