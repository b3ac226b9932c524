package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates data whose size disagrees with the axes.
	ErrShapeMismatch = errors.New("grid: data shape does not match axes")

	// ErrIndex indicates a bin index outside an axis.
	ErrIndex = errors.New("grid: index out of range")
)

// ShapeMismatchError records the expected and actual shapes.
type ShapeMismatchError struct {
	Want []int
	Got  []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("grid: data shape %v does not match axes %v", e.Got, e.Want)
}

func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}
