package clocks

import "errors"

// Configuration failures. All are reported before or instead of register
// writes except ErrSwitchTimeout, which can surface mid-sequence; see
// Configure for the atomicity contract.
var (
	// ErrFrequencyTooHigh: the requested frequency exceeds the source's.
	ErrFrequencyTooHigh = errors.New("requested frequency exceeds source frequency")

	// ErrDivisorOutOfRange: the computed divisor does not fit the domain's
	// hardware divisor field.
	ErrDivisorOutOfRange = errors.New("divisor does not fit hardware field")

	// ErrInvalidSource: the source is not wired to the domain's muxes.
	ErrInvalidSource = errors.New("source not valid for clock domain")

	// ErrSwitchTimeout: the hardware never confirmed a requested source
	// switch within the manager's poll budget.
	ErrSwitchTimeout = errors.New("clock source switch not confirmed")
)
