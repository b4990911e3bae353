// ===============================
// File: internal/curve/errors.go
// ===============================
package curve

import "errors"

var (
	// ErrCurveComplete is returned by pricing queries against a curve that
	// has already graduated. Terminal: callers must not retry.
	ErrCurveComplete = errors.New("bonding curve is complete")

	// ErrArithmetic guards reserve math against division by zero and
	// underflow before it can corrupt simulator state.
	ErrArithmetic = errors.New("arithmetic error in reserve math")

	// ErrAccountNotFound is surfaced when an on-chain account required for
	// pricing does not exist.
	ErrAccountNotFound = errors.New("account not found")
)
