package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a quantity of a single currency.
type Amount struct {
	Qty      decimal.Decimal
	Currency string
}

// NewAmount is a shorthand used by parsers and tests.
func NewAmount(qty decimal.Decimal, currency string) *Amount {
	return &Amount{Qty: qty, Currency: currency}
}

// Transaction is the canonical, exchange-independent record of one economic event.
// A nil Received, Sent or Fee means the pair is absent.
type Transaction struct {
	Date           string // MM/DD/YYYY HH:MM:SS
	Exchange       Exchange
	Received       *Amount
	Sent           *Amount
	Fee            *Amount
	CostBasis      decimal.NullDecimal // rounded to 3 places
	CostBasisUnits string              // "<den>/<num>", empty when CostBasis is not set
	TxID           string              // exchange supplied, may be empty
}

// IsSelfTransfer reports whether the transaction models a withdrawal as an equal receive and send.
func (t *Transaction) IsSelfTransfer() bool {
	return t.Received != nil && t.Sent != nil &&
		t.Received.Currency == t.Sent.Currency && t.Received.Qty.Equal(t.Sent.Qty)
}

// LedgerEntry is a transaction persisted in the ledger.
type LedgerEntry struct {
	Position int64  // append order within the ledger, not chronological
	ImportID string // import run that appended the entry
	Transaction
}

// ImportRun is the audit record of one processing run.
type ImportRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Reports    int // recognized reports processed
	Skipped    int // reports skipped as unrecognized
	Submitted  int
	Appended   int
	Duplicates int
}
