package fits

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/astrogo/fitsio"
)

// Write encodes f. Every column is written as 64-bit floats.
func Write(w io.Writer, f *File) error {
	for _, t := range f.Tables {
		if err := check(t); err != nil {
			return fmt.Errorf("HDU %q: %w", t.Name, err)
		}
	}

	out, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return err
	}
	if f.Primary != nil {
		if err := phdu.Header().Append(cards(f.Primary)...); err != nil {
			return fmt.Errorf("%w: primary header: %v", ErrFormat, err)
		}
	}
	if err := out.Write(phdu); err != nil {
		return err
	}
	for _, t := range f.Tables {
		if err := writeTable(out, t); err != nil {
			return fmt.Errorf("HDU %q: %w", t.Name, err)
		}
	}
	return out.Close()
}

// reserved keywords are derived from the columns on write.
func reserved(key string) bool {
	switch key {
	case "SIMPLE", "XTENSION", "BITPIX", "EXTEND", "PCOUNT", "GCOUNT", "TFIELDS", "EXTNAME", "END":
		return true
	}
	for _, p := range []string{"NAXIS", "TTYPE", "TFORM", "TUNIT", "TDIM", "TSCAL", "TZERO"} {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func cards(h *Header) []fitsio.Card {
	var out []fitsio.Card
	for _, c := range h.cards {
		if reserved(c.Key) {
			continue
		}
		v := c.Value
		if i, ok := v.(int64); ok {
			v = int(i)
		}
		out = append(out, fitsio.Card{Name: c.Key, Value: v, Comment: c.Comment})
	}
	return out
}

func rowsOf(t *Table) int {
	if t.Rows <= 0 {
		return 1
	}
	return t.Rows
}

func check(t *Table) error {
	rows := rowsOf(t)
	for _, c := range t.Columns {
		if len(c.Data)%rows != 0 {
			return fmt.Errorf("%w: column %s has %d values for %d rows", ErrFormat, c.Name, len(c.Data), rows)
		}
		if len(c.Dim) > 0 {
			n := 1
			for _, k := range c.Dim {
				n *= k
			}
			if n != c.Repeat(rows) {
				return fmt.Errorf("%w: column %s TDIM %v does not hold %d values", ErrFormat, c.Name, c.Dim, c.Repeat(rows))
			}
		}
	}
	return nil
}

func writeTable(out *fitsio.File, t *Table) error {
	rows := rowsOf(t)
	cols := make([]fitsio.Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = fitsio.Column{
			Name:   c.Name,
			Format: fmt.Sprintf("%dD", c.Repeat(rows)),
			Unit:   c.Unit,
			Bscale: 1,
		}
		if len(c.Dim) > 1 {
			for _, n := range c.Dim {
				cols[i].Dim = append(cols[i].Dim, int64(n))
			}
		}
	}
	tbl, err := fitsio.NewTable(t.Name, cols, fitsio.BINARY_TBL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer tbl.Close()
	if t.Header != nil {
		if err := tbl.Header().Append(cards(t.Header)...); err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
	}

	tcols := tbl.Cols()
	for r := 0; r < rows; r++ {
		args := make([]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			n := c.Repeat(rows)
			cell := reflect.New(tcols[i].Type())
			fill(cell.Elem(), c.Data[r*n:(r+1)*n])
			args[i] = cell.Interface()
		}
		if err := tbl.Write(args...); err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrFormat, r, err)
		}
	}
	return out.Write(tbl)
}

func fill(v reflect.Value, data []float64) {
	if len(data) == 0 {
		return
	}
	switch v.Kind() {
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			v.Index(i).SetFloat(data[i])
		}
	case reflect.Slice:
		v.Set(reflect.ValueOf(append([]float64(nil), data...)))
	default:
		v.SetFloat(data[0])
	}
}
