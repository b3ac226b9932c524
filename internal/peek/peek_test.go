package peek

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot/vg"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/units"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func kingModel(t *testing.T) psf.PSF {
	t.Helper()
	e, err := axis.FromEdges("energy_true", []float64{0.1, 1, 10}, units.TeV, axis.Log)
	if err != nil {
		t.Fatal(err)
	}
	o, err := axis.FromEdges("offset", []float64{0, 1, 2}, units.Deg, axis.Lin)
	if err != nil {
		t.Fatal(err)
	}
	k, err := psf.NewKing(e, o, []float64{1.7, 1.8, 2.1, 2.2}, []float64{0.04, 0.05, 0.02, 0.025})
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestRender(t *testing.T) {
	opts := DefaultOptions()
	opts.Offsets = []float64{0, 1}
	opts.Width, opts.Height = 6*vg.Inch, 3*vg.Inch

	var buf bytes.Buffer
	if err := Render(&buf, kingModel(t), opts); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestRenderWithoutFractions(t *testing.T) {
	opts := DefaultOptions()
	opts.Fractions = nil
	opts.Width, opts.Height = 4*vg.Inch, 2*vg.Inch

	var buf bytes.Buffer
	if err := Render(&buf, kingModel(t), opts); err != nil {
		t.Fatalf("render failed: %v", err)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psf.png")
	opts := DefaultOptions()
	opts.Width, opts.Height = 4*vg.Inch, 2*vg.Inch
	if err := Save(path, kingModel(t), opts); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("saved file is not a PNG")
	}
}
