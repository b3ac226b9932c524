// Package irfio reads and writes PSF models as GADF FITS tables, gzipped
// FITS or YAML documents.
package irfio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/psfkit/internal/fits"
	"github.com/san-kum/psfkit/internal/monitoring"
	"github.com/san-kum/psfkit/internal/psf"
)

type Format string

const (
	FormatFITS   Format = "fits"
	FormatFITSGz Format = "fits.gz"
	FormatYAML   Format = "yaml"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatFITS, FormatFITSGz, FormatYAML}
}

// FormatOf picks the format from a file name.
func FormatOf(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".fits.gz"), strings.HasSuffix(name, ".fit.gz"):
		return FormatFITSGz, nil
	case strings.HasSuffix(name, ".fits"), strings.HasSuffix(name, ".fit"):
		return FormatFITS, nil
	case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// ParseFormat accepts a format name as given on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fits", "fit":
		return FormatFITS, nil
	case "fits.gz", "gz", "gzip":
		return FormatFITSGz, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Read loads a PSF from path. hdu selects the extension in FITS files; an
// empty hdu takes the first extension that holds a PSF.
func Read(path, hdu string) (psf.PSF, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	p, err := Decode(bufio.NewReader(file), format, hdu)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	monitoring.Logf("irfio: loaded %s from %s", p.Kind(), path)
	return p, nil
}

// Write stores p at path in the format named by its extension.
func Write(path string, p psf.PSF) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, p); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	monitoring.Logf("irfio: wrote %s to %s", p.Kind(), path)
	return nil
}

func Decode(r io.Reader, format Format, hdu string) (psf.PSF, error) {
	switch format {
	case FormatFITS:
		return decodeFITS(r, hdu)
	case FormatFITSGz:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("irfio: gzip: %w", err)
		}
		defer zr.Close()
		return decodeFITS(zr, hdu)
	case FormatYAML:
		return decodeYAML(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func Encode(w io.Writer, format Format, p psf.PSF) error {
	switch format {
	case FormatFITS:
		return encodeFITS(w, p)
	case FormatFITSGz:
		zw := gzip.NewWriter(w)
		if err := encodeFITS(zw, p); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case FormatYAML:
		return encodeYAML(w, p)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// HDUs lists the extensions of a FITS file together with the PSF kind each
// one decodes as. Extensions that hold no PSF map to an empty kind.
func HDUs(path string) ([]string, map[string]psf.Kind, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}
	if format == FormatYAML {
		return nil, nil, fmt.Errorf("%w: %s has no HDUs", ErrUnknownFormat, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var r io.Reader = bufio.NewReader(file)
	if format == FormatFITSGz {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("irfio: gzip: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	f, err := fits.Read(r)
	if err != nil {
		return nil, nil, err
	}
	kinds := make(map[string]psf.Kind, len(f.Tables))
	for _, t := range f.Tables {
		if c, err := defaultRegistry.Match(t); err == nil {
			kinds[t.Name] = c.Kind
		} else {
			kinds[t.Name] = ""
		}
	}
	return f.Names(), kinds, nil
}

func decodeFITS(r io.Reader, hdu string) (psf.PSF, error) {
	f, err := fits.Read(r)
	if err != nil {
		return nil, err
	}
	if hdu != "" {
		t, err := f.Table(hdu)
		if err != nil {
			return nil, err
		}
		c, err := defaultRegistry.Match(t)
		if err != nil {
			return nil, err
		}
		return c.Decode(t)
	}
	for _, t := range f.Tables {
		c, err := defaultRegistry.Match(t)
		if err != nil {
			continue
		}
		return c.Decode(t)
	}
	return nil, fmt.Errorf("%w: none of %v", ErrUnknownKind, f.Names())
}

func encodeFITS(w io.Writer, p psf.PSF) error {
	c, err := defaultRegistry.Get(p.Kind())
	if err != nil {
		return err
	}
	t, err := c.Encode(p)
	if err != nil {
		return err
	}
	f := fits.NewFile()
	f.Add(t)
	return fits.Write(w, f)
}

func decodeYAML(r io.Reader) (psf.PSF, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("irfio: yaml: %w", err)
	}
	kind, err := psf.ParseKind(string(doc.Kind))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, err)
	}
	c, err := defaultRegistry.Get(kind)
	if err != nil {
		return nil, err
	}
	return c.Load(&doc)
}

func encodeYAML(w io.Writer, p psf.PSF) error {
	c, err := defaultRegistry.Get(p.Kind())
	if err != nil {
		return err
	}
	doc, err := c.Document(p)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("irfio: yaml: %w", err)
	}
	return enc.Close()
}
