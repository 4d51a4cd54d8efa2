package ports

import "errors"

// Standard application-level errors.
// Adapters and parsers wrap underlying failures with these so callers can branch with errors.Is.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Report Errors
	ErrUnrecognizedFormat      = errors.New("report header matches no known exchange format")
	ErrMalformedReport         = errors.New("report row is malformed")
	ErrUndefinedWithdrawalFee  = errors.New("no withdrawal fee defined for currency")
	ErrAmbiguousTradeDirection = errors.New("trade has no fiat leg, direction is ambiguous")
	ErrSheetIO                 = errors.New("sheet read/write failed")

	// Ledger Errors
	ErrLedgerIO       = errors.New("ledger store operation failed")
	ErrDuplicateEntry = errors.New("ledger record already exists")
)
