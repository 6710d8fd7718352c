package bank

import "errors"

// Error taxonomy for Bank operations, per the protocol's failure semantics:
// every validation failure is a distinct, first-class error and leaves bank
// state unchanged.
var (
	// ErrUnknownSender is returned by ProcessPayment when the check's
	// sender has no ledger record at all.
	ErrUnknownSender = errors.New("bank: unknown sender")

	// ErrAlreadyProcessed is returned by ProcessPayment when an identical
	// check (componentwise) has already been committed.
	ErrAlreadyProcessed = errors.New("bank: check already processed")

	// ErrDoubleSpend is returned by ProcessPayment or ReportDoubleSpend when
	// two distinct checks from the same sender claim overlapping coin
	// intervals.
	ErrDoubleSpend = errors.New("bank: double spend detected")

	// ErrInvalidCoinInterval is returned by ProcessPayment when the check's
	// coin interval underflows zero or exceeds the sender's total_received.
	ErrInvalidCoinInterval = errors.New("bank: invalid coin interval")

	// ErrNotEnoughFunds is returned by ProcessPayment when the sender's
	// balance is below the check's payable amount.
	ErrNotEnoughFunds = errors.New("bank: not enough funds")

	// ErrInvalidAmount is returned by Deposit for a non-positive amount.
	ErrInvalidAmount = errors.New("bank: amount must be positive")
)
