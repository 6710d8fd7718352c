package mr01

import "errors"

// Error taxonomy for the check-construction and wallet layer. The bank's own
// errors (UnknownSender, AlreadyProcessed, DoubleSpend, InvalidCoinInterval,
// NotEnoughFunds) live in package bank, which returns these unchanged where it
// delegates to Transaction.Evaluate.
var (
	// ErrInvalidTransaction is returned by NewTransaction when sn >= 1,
	// amount >= 1 and sn >= amount do not all hold.
	ErrInvalidTransaction = errors.New("mr01: invalid transaction")

	// ErrInvalidSignature is returned by Evaluate when either party's VRF
	// proof fails verification.
	ErrInvalidSignature = errors.New("mr01: invalid vrf signature")

	// ErrNotPayable is returned by Bank.ProcessPayment when the signatures
	// check out but the lottery did not hit (payable == 0).
	ErrNotPayable = errors.New("mr01: transaction is not payable")

	// ErrAmountTooSmall is returned by Wallet.Pay for amount < 1.
	ErrAmountTooSmall = errors.New("mr01: amount must be at least 1")

	// ErrInsufficientLocalBalance is returned by Wallet.Pay when amount
	// exceeds the wallet's locally tracked estimate.
	ErrInsufficientLocalBalance = errors.New("mr01: insufficient local balance")

	// ErrWrongRecipient is returned by Wallet.SignReceive when the
	// transaction's receiver key does not match the wallet's own key.
	ErrWrongRecipient = errors.New("mr01: transaction is not addressed to this wallet")
)
