package config

import "sort"

var Presets = map[string]*Config{
	"hess": {
		RadMax:         1.5,
		RadStep:        0.005,
		Fractions:      []float64{0.68, 0.95},
		Energies:       []float64{1, 10},
		Offsets:        []float64{0, 0.5, 1},
		EnergyThreshLo: 0.1,
		EnergyThreshHi: 100,
		Format:         "table",
		Plot:           PlotConfig{Width: 60, Height: 15},
	},
	"cta": {
		RadMax:         2,
		RadStep:        0.01,
		Fractions:      []float64{0.68, 0.8, 0.95},
		Energies:       []float64{0.1, 1, 10, 100},
		Offsets:        []float64{0, 1, 2, 3},
		EnergyThreshLo: 0.02,
		EnergyThreshHi: 300,
		Format:         "table",
		Plot:           PlotConfig{Width: 72, Height: 18},
	},
	"fine": {
		RadMax:         1,
		RadStep:        0.001,
		Fractions:      []float64{0.5, 0.68, 0.8, 0.95, 0.99},
		Energies:       []float64{0.3, 1, 3, 10, 30},
		Offsets:        []float64{0},
		EnergyThreshLo: 0.1,
		EnergyThreshHi: 100,
		Format:         "table",
		Plot:           PlotConfig{Width: 100, Height: 25},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Fractions = append([]float64(nil), p.Fractions...)
	cfg.Energies = append([]float64(nil), p.Energies...)
	cfg.Offsets = append([]float64(nil), p.Offsets...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
