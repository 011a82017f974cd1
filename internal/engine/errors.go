package engine

import "errors"

var (
	// ErrInvalidAmount means the requested amount was non-positive or not
	// a finite number.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidDestination means a withdrawal destination was not a valid
	// wallet address.
	ErrInvalidDestination = errors.New("invalid destination address")

	// ErrInsufficientFunds means the balance is below the computed gross
	// requirement for the operation.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUpstreamUnavailable means a balance query failed and the operation
	// refused to act on a stand-in zero. Callers can retry.
	ErrUpstreamUnavailable = errors.New("upstream balance source unavailable")
)
