// Package export writes containment radius tables as text, CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/radial"
)

// Radius is a containment radius in deg. Non-finite radii encode as JSON
// null.
type Radius float64

func (r Radius) MarshalJSON() ([]byte, error) {
	v := float64(r)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func (r *Radius) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Radius(math.Inf(1))
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*r = Radius(v)
	return nil
}

type Row struct {
	Energy float64  `json:"energy_tev"`
	Offset float64  `json:"offset_deg"`
	Radii  []Radius `json:"radii_deg"`
}

type Table struct {
	Kind      string    `json:"kind"`
	Fractions []float64 `json:"fractions"`
	Rows      []Row     `json:"rows"`
}

// Containment evaluates every fraction at each (energy, offset) pair, one
// goroutine per offset.
func Containment(p psf.PSF, fractions, energies, offsets []float64) *Table {
	t := &Table{
		Kind:      string(p.Kind()),
		Fractions: append([]float64(nil), fractions...),
		Rows:      make([]Row, len(energies)*len(offsets)),
	}

	var wg sync.WaitGroup
	for j, o := range offsets {
		wg.Add(1)
		go func(j int, o float64) {
			defer wg.Done()
			for i, e := range energies {
				radii := make([]Radius, len(fractions))
				for k, r := range psf.ContainmentRadii(p, fractions, e, o) {
					radii[k] = Radius(r)
				}
				t.Rows[j*len(energies)+i] = Row{Energy: e, Offset: o, Radii: radii}
			}
		}(j, o)
	}
	wg.Wait()

	return t
}

// FromEnergyTable tabulates an energy dependent table at its own energy
// nodes.
func FromEnergyTable(t *psf.EnergyDependentTable, fractions []float64, offset float64) *Table {
	out := &Table{Kind: "energy_table", Fractions: append([]float64(nil), fractions...)}
	for _, e := range t.EnergyAxis().Center() {
		radii := make([]Radius, len(fractions))
		for k, r := range t.ContainmentRadii(fractions, e) {
			radii[k] = Radius(r)
		}
		out.Rows = append(out.Rows, Row{Energy: e, Offset: offset, Radii: radii})
	}
	return out
}

func (t *Table) header() []string {
	h := []string{"energy_tev", "offset_deg"}
	for _, f := range t.Fractions {
		h = append(h, fmt.Sprintf("r%s_deg", strconv.FormatFloat(100*f, 'f', -1, 64)))
	}
	return h
}

func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header()); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{
			strconv.FormatFloat(r.Energy, 'g', -1, 64),
			strconv.FormatFloat(r.Offset, 'g', -1, 64),
		}
		for _, v := range r.Radii {
			rec = append(rec, strconv.FormatFloat(float64(v), 'f', 6, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *Table) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(t)
}

// WriteText prints a fixed-width table for the terminal.
func (t *Table) WriteText(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%12s %10s", "E [TeV]", "theta [deg]"))
	for _, f := range t.Fractions {
		sb.WriteString(fmt.Sprintf(" %10s", fmt.Sprintf("R%.0f%%", 100*f)))
	}
	sb.WriteString("\n")
	for _, r := range t.Rows {
		sb.WriteString(fmt.Sprintf("%12.4g %11.3g", r.Energy, r.Offset))
		for _, v := range r.Radii {
			sb.WriteString(fmt.Sprintf(" %10.5f", float64(v)))
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Write renders t in the named format: table, csv or json.
func (t *Table) Write(w io.Writer, format string) error {
	switch format {
	case "", "table":
		return t.WriteText(w)
	case "csv":
		return t.WriteCSV(w)
	case "json":
		return t.WriteJSON(w)
	}
	return fmt.Errorf("export: unknown format %q", format)
}

// Save writes t to path, choosing CSV or JSON by extension.
func Save(path string, t *Table) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format != "csv" && format != "json" {
		return fmt.Errorf("export: unknown format %q", filepath.Ext(path))
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Write(file, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadCSV reads a table written by WriteCSV.
func LoadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, fmt.Errorf("export: empty containment table")
	}

	t := &Table{}
	for _, h := range records[0][2:] {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimPrefix(h, "r"), "_deg"), 64)
		if err != nil {
			return nil, fmt.Errorf("export: column %q: %w", h, err)
		}
		t.Fractions = append(t.Fractions, pct/100)
	}
	for _, rec := range records[1:] {
		vals := make([]float64, len(rec))
		for i, s := range rec {
			if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("export: value %q: %w", s, err)
			}
		}
		row := Row{Energy: vals[0], Offset: vals[1]}
		for _, v := range vals[2:] {
			row.Radii = append(row.Radii, Radius(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// MaxDeviation returns the largest absolute radius difference between t
// and ref. Both must list the same fractions and (energy, offset) rows in
// the same order. Radii infinite in both tables are skipped.
func (t *Table) MaxDeviation(ref *Table) (float64, error) {
	if len(t.Fractions) != len(ref.Fractions) || len(t.Rows) != len(ref.Rows) {
		return 0, fmt.Errorf("export: reference has %d fractions and %d rows, want %d and %d",
			len(ref.Fractions), len(ref.Rows), len(t.Fractions), len(t.Rows))
	}
	for k, f := range t.Fractions {
		if math.Abs(f-ref.Fractions[k]) > 1e-9 {
			return 0, fmt.Errorf("export: reference fraction %g, want %g", ref.Fractions[k], f)
		}
	}
	worst := 0.0
	for i, r := range t.Rows {
		q := ref.Rows[i]
		if !near(r.Energy, q.Energy) || !near(r.Offset, q.Offset) || len(r.Radii) != len(q.Radii) {
			return 0, fmt.Errorf("export: reference row %d at (%g, %g), want (%g, %g)", i, q.Energy, q.Offset, r.Energy, r.Offset)
		}
		for k, v := range r.Radii {
			a, b := float64(v), float64(q.Radii[k])
			if math.IsInf(a, 1) && math.IsInf(b, 1) {
				continue
			}
			worst = math.Max(worst, math.Abs(a-b))
		}
	}
	return worst, nil
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

// WriteProfileCSV writes a radial profile with its containment curve.
func WriteProfileCSV(w io.Writer, p *radial.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rad_deg", "density_deg-2", "containment"}); err != nil {
		return err
	}
	rad, density := p.Radii(), p.Density()
	for i, r := range rad {
		rec := []string{
			strconv.FormatFloat(r, 'f', 6, 64),
			strconv.FormatFloat(density[i], 'g', 8, 64),
			strconv.FormatFloat(p.Containment(r), 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
