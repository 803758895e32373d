// Package faults defines the error kinds shared by the localization packages.
//
// Callers wrap one of the sentinels with context using fmt.Errorf("%w: ...")
// and match them with errors.Is. The optimizer relies on ErrNumerical to tell
// an infeasible layout apart from a genuine failure.
package faults

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports invalid inputs or a schedule that cannot run,
	// for example a melting phase whose acceptance rate is too low.
	ErrConfiguration = errors.New("configuration error")

	// ErrNumerical reports a degenerate computation: a singular normal matrix
	// or a source point coincident with a receiver.
	ErrNumerical = errors.New("numerical error")

	// ErrRange reports an index or search window outside the valid range.
	ErrRange = errors.New("range error")
)

// Configurationf wraps ErrConfiguration with a formatted message.
func Configurationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Numericalf wraps ErrNumerical with a formatted message.
func Numericalf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNumerical, fmt.Sprintf(format, args...))
}

// Rangef wraps ErrRange with a formatted message.
func Rangef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrRange, fmt.Sprintf(format, args...))
}

// IsInfeasible reports whether err marks a layout that cannot be evaluated.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrNumerical)
}
