package coinflip

import "errors"

// Ledger error kinds. Every failed operation leaves the portfolio
// unchanged and returns one of these, wrapped with context; callers
// match with errors.Is. All of them are expected, caller-correctable
// conditions, never fatal.
var (
	// ErrInvalidAmount reports a non-positive quantity, cash amount, or
	// coin price supplied by the caller.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds reports a buy exceeding the available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoPosition reports a sell of a coin with no open holding.
	ErrNoPosition = errors.New("no position")

	// ErrInsufficientHoldings reports a sell of more units than held.
	// Oversells are rejected, never clamped.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)
