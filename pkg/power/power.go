// Package power reports battery charge and raises low-battery warnings.
// Charge comes from a pluggable Source so the assistant runs the same
// on a laptop (sysfs), next to a remote power agent (HTTP), or in tests
// (mock).
package power

import "errors"

// Package errors.
var (
	ErrNoBattery = errors.New("power: no battery found")
)

// Source reports battery charge.
type Source interface {
	// Percent returns the current charge in [0, 100].
	Percent() (int, error)

	// Name identifies the backend.
	Name() string
}
