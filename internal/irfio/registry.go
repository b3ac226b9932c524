package irfio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/psfkit/internal/fits"
	"github.com/san-kum/psfkit/internal/psf"
)

// Codec converts one PSF representation to and from a GADF binary table.
type Codec struct {
	Kind     psf.Kind
	HDU      string // default EXTNAME
	Class    string // HDUCLAS4
	Columns  []string
	Encode   func(psf.PSF) (*fits.Table, error)
	Decode   func(*fits.Table) (psf.PSF, error)
	Document func(psf.PSF) (*Document, error)
	Load     func(*Document) (psf.PSF, error)
}

type Registry struct {
	codecs map[psf.Kind]*Codec
}

func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[psf.Kind]*Codec)}

	r.codecs[psf.KindKing] = &Codec{
		Kind:     psf.KindKing,
		HDU:      "PSF_2D_KING",
		Class:    "PSF_KING",
		Columns:  []string{"GAMMA", "SIGMA"},
		Encode:   encodeKing,
		Decode:   decodeKing,
		Document: kingDocument,
		Load:     loadKing,
	}
	r.codecs[psf.KindMultiGauss] = &Codec{
		Kind:     psf.KindMultiGauss,
		HDU:      "POINT SPREAD FUNCTION",
		Class:    "PSF_3GAUSS",
		Columns:  []string{"SCALE", "SIGMA_1", "SIGMA_2", "SIGMA_3", "AMPL_2", "AMPL_3"},
		Encode:   encodeMultiGauss,
		Decode:   decodeMultiGauss,
		Document: multiGaussDocument,
		Load:     loadMultiGauss,
	}
	r.codecs[psf.KindTable] = &Codec{
		Kind:     psf.KindTable,
		HDU:      "PSF_2D_TABLE",
		Class:    "PSF_TABLE",
		Columns:  []string{"RAD_LO", "RAD_HI", "RPSF"},
		Encode:   encodeTable3D,
		Decode:   decodeTable3D,
		Document: table3DDocument,
		Load:     loadTable3D,
	}

	return r
}

func (r *Registry) Get(kind psf.Kind) (*Codec, error) {
	c, ok := r.codecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: kind %q is none of %s", ErrUnknownKind, kind, strings.Join(r.List(), ", "))
	}
	return c, nil
}

// Match picks the codec for a table, by HDUCLAS4 first and by its columns
// otherwise.
func (r *Registry) Match(t *fits.Table) (*Codec, error) {
	class := strings.ToUpper(strings.TrimSpace(t.Header.String("HDUCLAS4")))
	for _, c := range r.codecs {
		if class != "" && class == c.Class {
			return c, nil
		}
	}
	for _, kind := range psf.Kinds() {
		c := r.codecs[kind]
		if hasColumns(t, c.Columns) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: HDU %q is none of %s", ErrUnknownKind, t.Name, strings.Join(r.List(), ", "))
}

// List returns the registered kinds in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.codecs))
	for kind := range r.codecs {
		names = append(names, string(kind))
	}
	sort.Strings(names)
	return names
}

func hasColumns(t *fits.Table, names []string) bool {
	for _, n := range names {
		if _, ok := t.Column(n); !ok {
			return false
		}
	}
	return true
}

var defaultRegistry = NewRegistry()
