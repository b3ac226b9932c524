package irfio

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat indicates a path whose extension names no codec.
	ErrUnknownFormat = errors.New("irfio: unknown file format")

	// ErrMissingColumn indicates a table without a required column.
	ErrMissingColumn = errors.New("irfio: missing column")

	// ErrUnknownKind indicates a table that matches no PSF representation.
	ErrUnknownKind = errors.New("irfio: unrecognized PSF table")
)

// ColumnError names the HDU and column that could not be used.
type ColumnError struct {
	HDU     string
	Column  string
	Wrapped error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("irfio: HDU %q column %s: %v", e.HDU, e.Column, e.Wrapped)
}

func (e *ColumnError) Unwrap() error {
	return e.Wrapped
}
