package fits

import (
	"fmt"
	"strconv"
	"strings"
)

// Column is a numeric BINTABLE column. Data holds all rows back to back.
// Dim is the TDIMn shape of one cell with the fastest varying axis first.
type Column struct {
	Name string
	Unit string
	Dim  []int
	Data []float64

	// Code is the TFORM type read from the file. Columns are always
	// written as D.
	Code byte
}

// Table is a BINTABLE extension.
type Table struct {
	Name    string
	Header  *Header
	Columns []*Column
	Rows    int
}

// NewTable returns an empty single-row table.
func NewTable(name string) *Table {
	return &Table{Name: name, Header: &Header{}, Rows: 1}
}

// Add appends a column. dim may be nil for a flat cell.
func (t *Table) Add(name, unit string, data []float64, dim ...int) *Column {
	c := &Column{
		Name: name,
		Unit: unit,
		Dim:  append([]int(nil), dim...),
		Data: append([]float64(nil), data...),
		Code: 'D',
	}
	t.Columns = append(t.Columns, c)
	return c
}

// Column looks up a column by TTYPE, ignoring case.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// Names lists the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Repeat is the number of values per row.
func (c *Column) Repeat(rows int) int {
	if rows <= 0 {
		return len(c.Data)
	}
	return len(c.Data) / rows
}

type form struct {
	repeat int
	code   byte
	width  int // bytes per element; 0 for bit arrays
}

func (f form) bytes() int {
	if f.code == 'X' {
		return (f.repeat + 7) / 8
	}
	return f.repeat * f.width
}

func (f form) numeric() bool {
	return strings.IndexByte("BIJKED", f.code) >= 0
}

var formWidth = map[byte]int{
	'L': 1, 'X': 0, 'B': 1, 'I': 2, 'J': 4, 'K': 8,
	'A': 1, 'E': 4, 'D': 8, 'C': 8, 'M': 16, 'P': 8, 'Q': 16,
}

// parseForm reads a TFORM value such as "20D", "E" or "16A".
func parseForm(s string) (form, error) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == len(s) {
		return form{}, fmt.Errorf("%w: TFORM %q", ErrFormat, s)
	}
	repeat := 1
	if i > 0 {
		r, err := strconv.Atoi(s[:i])
		if err != nil {
			return form{}, fmt.Errorf("%w: TFORM %q", ErrFormat, s)
		}
		repeat = r
	}
	code := s[i]
	w, ok := formWidth[code]
	if !ok {
		return form{}, fmt.Errorf("%w: TFORM %q", ErrFormat, s)
	}
	return form{repeat: repeat, code: code, width: w}, nil
}

// parseDim reads a TDIM value such as "(20,6,100)".
func parseDim(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("%w: TDIM %q", ErrFormat, s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	dim := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: TDIM %q", ErrFormat, s)
		}
		dim[i] = n
	}
	return dim, nil
}

func formatDim(dim []int) string {
	parts := make([]string, len(dim))
	for i, n := range dim {
		parts[i] = strconv.Itoa(n)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
