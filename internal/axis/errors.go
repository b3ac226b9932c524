package axis

import (
	"errors"
	"fmt"
)

// ErrOutOfRange covers values that cannot be resolved against an axis and
// axis definitions that are malformed.
var ErrOutOfRange = errors.New("axis: value out of range")

// OutOfRangeError reports a lookup outside the axis edges.
type OutOfRangeError struct {
	Axis  string
	Value float64
	Lo    float64
	Hi    float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("axis: %s value %g outside [%g, %g]", e.Axis, e.Value, e.Lo, e.Hi)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
