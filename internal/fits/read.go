package fits

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/astrogo/fitsio"
)

// Read decodes a FITS stream. Extensions other than BINTABLE are skipped, as
// are non-numeric columns.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(cardSize); !strings.HasPrefix(string(head), "SIMPLE  =") {
		return nil, ErrNotFITS
	}
	ff, err := fitsio.Open(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer ff.Close()

	hdus := ff.HDUs()
	if len(hdus) == 0 {
		return nil, ErrNotFITS
	}
	file := &File{Primary: header(hdus[0].Header())}
	for _, hdu := range hdus[1:] {
		if hdu.Type() != fitsio.BINARY_TBL {
			continue
		}
		tbl, ok := hdu.(*fitsio.Table)
		if !ok {
			continue
		}
		t, err := table(tbl)
		if err != nil {
			return nil, fmt.Errorf("HDU %q: %w", hdu.Name(), err)
		}
		file.Tables = append(file.Tables, t)
	}
	return file, nil
}

func header(src *fitsio.Header) *Header {
	h := &Header{}
	for _, key := range src.Keys() {
		switch key {
		case "", "COMMENT", "HISTORY", "END":
			continue
		}
		c := src.Get(key)
		if c == nil {
			continue
		}
		h.Set(key, c.Value, c.Comment)
	}
	return h
}

func table(tbl *fitsio.Table) (*Table, error) {
	h := header(tbl.Header())
	rows := int(tbl.NumRows())
	t := &Table{Name: strings.TrimSpace(tbl.Name()), Header: h, Rows: rows}

	cols := tbl.Cols()
	forms := make([]form, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range cols {
		f, err := parseForm(cols[i].Format)
		if err != nil {
			return nil, err
		}
		forms[i] = f
		dest[i] = reflect.New(cols[i].Type()).Interface()
		if !f.numeric() {
			continue
		}
		c := &Column{
			Name: strings.TrimSpace(cols[i].Name),
			Unit: strings.TrimSpace(cols[i].Unit),
			Code: f.code,
			Data: make([]float64, 0, rows*f.repeat),
		}
		switch {
		case len(cols[i].Dim) > 0:
			for _, n := range cols[i].Dim {
				c.Dim = append(c.Dim, int(n))
			}
		case h.Has(Nth("TDIM", i+1)):
			if c.Dim, err = parseDim(h.String(Nth("TDIM", i+1))); err != nil {
				return nil, err
			}
		}
		t.Columns = append(t.Columns, c)
	}
	if rows == 0 {
		return t, nil
	}

	it, err := tbl.Read(0, int64(rows))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer it.Close()
	for it.Next() {
		if err := it.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		k := 0
		for i := range cols {
			if !forms[i].numeric() {
				continue
			}
			t.Columns[k].Data = appendValues(t.Columns[k].Data, reflect.ValueOf(dest[i]).Elem())
			k++
		}
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return t, nil
}

// appendValues flattens a scanned cell, which is a scalar or a fixed array.
func appendValues(dst []float64, v reflect.Value) []float64 {
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			dst = appendValues(dst, v.Index(i))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst = append(dst, float64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst = append(dst, float64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		dst = append(dst, v.Float())
	}
	return dst
}
