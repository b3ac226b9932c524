// Package fits reads and writes the subset of FITS used by instrument
// response files: an empty primary HDU followed by BINTABLE extensions with
// numeric fixed-size array columns. Encoding is delegated to fitsio; this
// package flattens every cell to float64 and keeps TDIM shapes.
package fits

import (
	"errors"
	"fmt"
	"strings"
)

const cardSize = 80

var (
	// ErrNotFITS indicates input that does not start with a SIMPLE card.
	ErrNotFITS = errors.New("fits: not a FITS file")

	// ErrNoHDU indicates a missing extension.
	ErrNoHDU = errors.New("fits: no such HDU")

	// ErrFormat indicates a malformed header or an unsupported column type.
	ErrFormat = errors.New("fits: unsupported or malformed content")
)

// File is a primary header plus its binary table extensions.
type File struct {
	Primary *Header
	Tables  []*Table
}

// NewFile returns a file with a minimal primary header.
func NewFile() *File {
	h := &Header{}
	h.Set("SIMPLE", true, "conforms to FITS standard")
	h.Set("BITPIX", int64(8), "array data type")
	h.Set("NAXIS", int64(0), "number of array dimensions")
	h.Set("EXTEND", true, "")
	return &File{Primary: h}
}

// Table returns the extension with the given EXTNAME, ignoring case.
func (f *File) Table(name string) (*Table, error) {
	for _, t := range f.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoHDU, name)
}

// Names lists the extension names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Tables))
	for i, t := range f.Tables {
		names[i] = t.Name
	}
	return names
}

// Add appends a table extension.
func (f *File) Add(t *Table) {
	f.Tables = append(f.Tables, t)
}

// Nth returns key concatenated with n, as in TTYPE3.
func Nth(key string, n int) string {
	return fmt.Sprintf("%s%d", key, n)
}
