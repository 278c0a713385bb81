package tax

import "errors"

var (
	// ErrInvalidInput is returned before any computation when the input
	// cannot be assessed (e.g. a non-positive assessed value).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNegativeResult means a rate table produced a negative amount. The
	// table itself is wrong; the amount is never clamped.
	ErrNegativeResult = errors.New("rate table produced a negative amount")

	// ErrInvalidSchedule is returned when a rate schedule fails validation.
	ErrInvalidSchedule = errors.New("invalid rate schedule")
)
