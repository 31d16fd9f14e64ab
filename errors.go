package taskmeter

import "errors"

// Sentinel errors returned (wrapped) by calculators, tasks, and adapters.
// Callers match them with errors.Is.
var (
	// ErrInvalidArgument signals malformed calculator parameters such as a
	// negative step count or an estimated weight outside (0, 1).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange signals a step advanced beyond a calculator's declared total.
	ErrOutOfRange = errors.New("step out of range")

	// ErrIllegalState signals an operation on an ended task or an end that
	// violates the stack's LIFO discipline.
	ErrIllegalState = errors.New("illegal task state")

	// ErrUnsupportedOperation signals an attempt to re-enumerate a sequence
	// adapter; task step counters are not reversible.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)
