// Package grid holds dense values over the cartesian product of axis bins.
package grid

import (
	"fmt"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/units"
)

// Outside selects what Interpolate returns for coordinates beyond an axis.
type Outside int

const (
	// FillZero returns 0 beyond the outer edges of any axis. Between the
	// outermost center and edge the end node value is used.
	FillZero Outside = iota
	// Clamp uses the nearest end node.
	Clamp
)

func (o Outside) String() string {
	if o == Clamp {
		return "clamp"
	}
	return "fill-zero"
}

// ParseOutside accepts the String form of a mode, or "zero".
func ParseOutside(s string) (Outside, error) {
	switch s {
	case "clamp":
		return Clamp, nil
	case "fill-zero", "zero":
		return FillZero, nil
	}
	return 0, fmt.Errorf("grid: unknown outside mode %q", s)
}

// Table is a read-only MultiAxisTable. Storage is row-major in axis order:
// the last axis varies fastest.
type Table struct {
	axes    axis.MapAxes
	shape   []int
	strides []int
	data    []float64
	unit    units.Unit
}

// New copies data into a table over axes. len(data) must equal the product
// of the axis bin counts.
func New(axes axis.MapAxes, data []float64, unit units.Unit) (*Table, error) {
	if len(axes) == 0 {
		return nil, &ShapeMismatchError{Want: nil, Got: []int{len(data)}}
	}
	if !unit.Valid() {
		return nil, fmt.Errorf("grid: %w: %q", units.ErrUnknownUnit, unit)
	}
	shape := axes.Shape()
	if axes.Size() != len(data) {
		return nil, &ShapeMismatchError{Want: shape, Got: []int{len(data)}}
	}
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return &Table{
		axes:    append(axis.MapAxes(nil), axes...),
		shape:   shape,
		strides: strides,
		data:    append([]float64(nil), data...),
		unit:    unit,
	}, nil
}

func (t *Table) Axes() axis.MapAxes { return append(axis.MapAxes(nil), t.axes...) }

func (t *Table) Axis(i int) *axis.MapAxis { return t.axes[i] }

func (t *Table) Shape() []int { return append([]int(nil), t.shape...) }

func (t *Table) Unit() units.Unit { return t.unit }

func (t *Table) Len() int { return len(t.data) }

// Data returns a copy of the flat row-major values.
func (t *Table) Data() []float64 { return append([]float64(nil), t.data...) }

func (t *Table) offset(idx []int) (int, error) {
	if len(idx) != len(t.shape) {
		return 0, fmt.Errorf("%w: %d indices for %d axes", ErrIndex, len(idx), len(t.shape))
	}
	off := 0
	for i, k := range idx {
		if k < 0 || k >= t.shape[i] {
			return 0, fmt.Errorf("%w: %s index %d not in [0, %d)", ErrIndex, t.axes[i].Name(), k, t.shape[i])
		}
		off += k * t.strides[i]
	}
	return off, nil
}

// At returns the value of one bin.
func (t *Table) At(idx ...int) (float64, error) {
	off, err := t.offset(idx)
	if err != nil {
		return 0, err
	}
	return t.data[off], nil
}

// Slice returns a copy of the values along the last axis at fixed indices
// of the leading axes.
func (t *Table) Slice(idx ...int) ([]float64, error) {
	n := t.shape[len(t.shape)-1]
	off, err := t.offset(append(append([]int(nil), idx...), 0))
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), t.data[off:off+n]...), nil
}

type corner struct {
	off    int
	weight float64
}

// corners returns the flat offsets and weights of the interpolation cell
// around coords on the leading len(coords) axes. ok is false when a
// coordinate lies beyond an axis and mode is FillZero.
func (t *Table) corners(coords []float64, mode Outside) ([]corner, bool) {
	cs := []corner{{0, 1}}
	for d, v := range coords {
		a := t.axes[d]
		if mode == FillZero && a.Nbin() > 1 {
			lo, hi := a.Bounds()
			if !(v >= lo && v <= hi) {
				return nil, false
			}
		}
		i, w, _ := a.Locate(v)
		stride := t.strides[d]
		if a.Nbin() == 1 {
			for k := range cs {
				cs[k].off += i * stride
			}
			continue
		}
		next := make([]corner, 0, 2*len(cs))
		for _, c := range cs {
			if w < 1 {
				next = append(next, corner{c.off + i*stride, c.weight * (1 - w)})
			}
			if w > 0 {
				next = append(next, corner{c.off + (i+1)*stride, c.weight * w})
			}
		}
		cs = next
	}
	return cs, true
}

// Interpolate evaluates the table at one coordinate per axis, multilinear in
// each axis' interpolation scale between bin centers.
func (t *Table) Interpolate(coords []float64, mode Outside) (float64, error) {
	if len(coords) != len(t.shape) {
		return 0, fmt.Errorf("%w: %d coordinates for %d axes", ErrIndex, len(coords), len(t.shape))
	}
	cs, ok := t.corners(coords, mode)
	if !ok {
		return 0, nil
	}
	v := 0.0
	for _, c := range cs {
		v += t.data[c.off] * c.weight
	}
	return v, nil
}

// Profile interpolates over the leading axes and returns the full run of
// values along the last axis.
func (t *Table) Profile(coords []float64, mode Outside) ([]float64, error) {
	if len(coords) != len(t.shape)-1 {
		return nil, fmt.Errorf("%w: %d coordinates for %d leading axes", ErrIndex, len(coords), len(t.shape)-1)
	}
	out := make([]float64, t.shape[len(t.shape)-1])
	cs, ok := t.corners(coords, mode)
	if !ok {
		return out, nil
	}
	for _, c := range cs {
		for k := range out {
			out[k] += t.data[c.off+k] * c.weight
		}
	}
	return out, nil
}
