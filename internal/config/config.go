package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/psfkit/internal/psf"
)

const (
	DefaultRadMax     = 1.5
	DefaultRadStep    = 0.005
	DefaultFormat     = "table"
	DefaultPlotWidth  = 60
	DefaultPlotHeight = 15
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	RadMax         float64    `yaml:"rad_max"`
	RadStep        float64    `yaml:"rad_step"`
	Fractions      []float64  `yaml:"fractions"`
	Energies       []float64  `yaml:"energies"`
	Offsets        []float64  `yaml:"offsets"`
	EnergyThreshLo float64    `yaml:"energy_thresh_lo"`
	EnergyThreshHi float64    `yaml:"energy_thresh_hi"`
	Format         string     `yaml:"format"`
	HDU            string     `yaml:"hdu,omitempty"`
	Plot           PlotConfig `yaml:"plot"`
}

type PlotConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		RadMax:         DefaultRadMax,
		RadStep:        DefaultRadStep,
		Fractions:      []float64{0.68, 0.95},
		Energies:       []float64{1, 10},
		Offsets:        []float64{0},
		EnergyThreshLo: psf.DefaultThreshLo,
		EnergyThreshHi: psf.DefaultThreshHi,
		Format:         DefaultFormat,
		Plot: PlotConfig{
			Width:  DefaultPlotWidth,
			Height: DefaultPlotHeight,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.RadStep > 0) || !(c.RadMax > c.RadStep) {
		return fmt.Errorf("%w: rad_max %g, rad_step %g", ErrInvalid, c.RadMax, c.RadStep)
	}
	for _, f := range c.Fractions {
		if !(f > 0 && f <= 1) {
			return fmt.Errorf("%w: containment fraction %g", ErrInvalid, f)
		}
	}
	for _, e := range c.Energies {
		if !(e > 0) {
			return fmt.Errorf("%w: energy %g TeV", ErrInvalid, e)
		}
	}
	for _, o := range c.Offsets {
		if o < 0 {
			return fmt.Errorf("%w: offset %g deg", ErrInvalid, o)
		}
	}
	if c.EnergyThreshLo > c.EnergyThreshHi {
		return fmt.Errorf("%w: energy thresholds [%g, %g]", ErrInvalid, c.EnergyThreshLo, c.EnergyThreshHi)
	}
	switch c.Format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalid, c.Format)
	}
	return nil
}

// Rad returns the radius grid 0, step, 2*step, ... below rad_max.
func (c *Config) Rad() []float64 {
	n := int(math.Round(c.RadMax / c.RadStep))
	if n < 2 {
		n = 2
	}
	rad := make([]float64, n)
	for i := range rad {
		rad[i] = c.RadStep * float64(i)
	}
	return rad
}

func (c *Config) InfoOptions() psf.InfoOptions {
	return psf.InfoOptions{
		Fractions: c.Fractions,
		Energies:  c.Energies,
		Offsets:   c.Offsets,
	}
}
