package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/psfkit/internal/config"
	"github.com/san-kum/psfkit/internal/export"
	"github.com/san-kum/psfkit/internal/fits"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/irfio"
	"github.com/san-kum/psfkit/internal/monitoring"
	"github.com/san-kum/psfkit/internal/peek"
	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/tui"
	"github.com/san-kum/psfkit/internal/units"
	"github.com/san-kum/psfkit/internal/viz"
)

var (
	configFile string
	preset     string
	quiet      bool
	hdu        string

	// query flags
	radArgs    []string
	energyArg  string
	offsetArg  string
	energies   []float64
	offsets    []float64
	fractions  []float64
	format     string
	outPath    string
	plotEnergy float64
	plotOffset float64
	width      int
	height     int
	rings      bool
	theme      string
	outside    string
	reference  string

	// convert
	convertTo string
	radMax    float64
	radStep   float64
	threshLo  float64
	threshHi  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "psfkit",
		Short:         "point spread function toolkit for gamma-ray instrument responses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				monitoring.SetLogger(nil)
				return
			}
			log.SetFlags(0)
			log.SetPrefix("psfkit: ")
			monitoring.SetLogger(log.Printf)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress diagnostic logging")
	rootCmd.PersistentFlags().StringVar(&hdu, "hdu", "", "FITS extension holding the PSF")

	infoCmd := &cobra.Command{
		Use:   "info [file]",
		Short: "summarize a PSF file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	infoCmd.Flags().Float64SliceVar(&fractions, "fraction", nil, "containment fractions")
	infoCmd.Flags().Float64SliceVar(&energies, "energy", nil, "energies (TeV)")
	infoCmd.Flags().Float64SliceVar(&offsets, "offset", nil, "offsets (deg)")

	evaluateCmd := &cobra.Command{
		Use:   "evaluate [file]",
		Short: "evaluate density and containment at given radii",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvaluate,
	}
	evaluateCmd.Flags().StringSliceVar(&radArgs, "rad", []string{"0 deg", "0.1 deg", "0.2 deg"}, "radii, with units")
	evaluateCmd.Flags().StringVar(&energyArg, "energy", "1 TeV", "true energy, with unit")
	evaluateCmd.Flags().StringVar(&offsetArg, "offset", "0 deg", "field of view offset, with unit")
	evaluateCmd.Flags().StringVar(&outside, "outside", "clamp", "beyond the energy and offset axes: clamp or zero")

	containmentCmd := &cobra.Command{
		Use:   "containment [file]",
		Short: "tabulate containment radii",
		Args:  cobra.ExactArgs(1),
		RunE:  runContainment,
	}
	containmentCmd.Flags().Float64SliceVar(&fractions, "fraction", nil, "containment fractions")
	containmentCmd.Flags().Float64SliceVar(&energies, "energy", nil, "energies (TeV)")
	containmentCmd.Flags().Float64SliceVar(&offsets, "offset", nil, "offsets (deg)")
	containmentCmd.Flags().StringVar(&format, "format", config.DefaultFormat, "output format: table, csv, json")
	containmentCmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file (.csv or .json)")
	containmentCmd.Flags().StringVar(&reference, "reference", "", "report the deviation from a containment CSV")

	convertCmd := &cobra.Command{
		Use:   "convert [file] [out]",
		Short: "convert between formats and representations",
		Long: "convert re-encodes a PSF by output extension (.fits, .fits.gz, .yaml).\n" +
			"--to table3d tabulates King and MultiGauss models on a radius grid;\n" +
			"--to table and --to profile export energy dependent containment or a\n" +
			"radial profile as CSV/JSON.",
		Args: cobra.ExactArgs(2),
		RunE: runConvert,
	}
	convertCmd.Flags().StringVar(&convertTo, "to", "", "target representation: table3d, table, profile")
	convertCmd.Flags().Float64Var(&radMax, "rad-max", config.DefaultRadMax, "radius grid extent (deg)")
	convertCmd.Flags().Float64Var(&radStep, "rad-step", config.DefaultRadStep, "radius grid step (deg)")
	convertCmd.Flags().Float64Var(&plotOffset, "offset", 0, "offset for table and profile output (deg)")
	convertCmd.Flags().Float64Var(&plotEnergy, "energy", 1, "energy for profile output (TeV)")
	convertCmd.Flags().Float64SliceVar(&fractions, "fraction", nil, "containment fractions")
	convertCmd.Flags().Float64Var(&threshLo, "thresh-lo", psf.DefaultThreshLo, "safe energy threshold lo (TeV)")
	convertCmd.Flags().Float64Var(&threshHi, "thresh-hi", psf.DefaultThreshHi, "safe energy threshold hi (TeV)")

	plotCmd := &cobra.Command{
		Use:   "plot [file]",
		Short: "terminal plots of profile and containment",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}
	plotCmd.Flags().Float64Var(&plotEnergy, "energy", 1, "energy (TeV)")
	plotCmd.Flags().Float64Var(&plotOffset, "offset", 0, "offset (deg)")
	plotCmd.Flags().Float64SliceVar(&fractions, "fraction", nil, "containment fractions")
	plotCmd.Flags().IntVar(&width, "width", config.DefaultPlotWidth, "plot width")
	plotCmd.Flags().IntVar(&height, "height", config.DefaultPlotHeight, "plot height")
	plotCmd.Flags().BoolVar(&rings, "rings", false, "draw containment rings")

	peekCmd := &cobra.Command{
		Use:   "peek [file] [out.png]",
		Short: "quick-look PNG of containment and profile",
		Args:  cobra.ExactArgs(2),
		RunE:  runPeek,
	}
	peekCmd.Flags().Float64Var(&plotEnergy, "energy", 1, "profile energy (TeV)")
	peekCmd.Flags().Float64SliceVar(&fractions, "fraction", nil, "containment fractions")
	peekCmd.Flags().Float64SliceVar(&offsets, "offset", nil, "offsets (deg)")

	exploreCmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "step through energy and offset bins interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runExplore,
	}
	exploreCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme: "+strings.Join(viz.ThemeNames(), ", "))
	exploreCmd.Flags().Float64SliceVar(&fractions, "fraction", nil, "containment fractions")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(infoCmd, evaluateCmd, containmentCmd, convertCmd, plotCmd, peekCmd, exploreCmd, presetsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// settings layers defaults, preset, config file and explicitly set flags.
func settings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("fraction") {
		cfg.Fractions = fractions
	}
	if flags.Changed("energy") && flags.Lookup("energy").Value.Type() == "float64Slice" {
		cfg.Energies = energies
	}
	if flags.Changed("offset") && flags.Lookup("offset").Value.Type() == "float64Slice" {
		cfg.Offsets = offsets
	}
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("rad-max") {
		cfg.RadMax = radMax
	}
	if flags.Changed("rad-step") {
		cfg.RadStep = radStep
	}
	if flags.Changed("thresh-lo") {
		cfg.EnergyThreshLo = threshLo
	}
	if flags.Changed("thresh-hi") {
		cfg.EnergyThreshHi = threshHi
	}
	if flags.Changed("width") {
		cfg.Plot.Width = width
	}
	if flags.Changed("height") {
		cfg.Plot.Height = height
	}
	if flags.Changed("hdu") {
		cfg.HDU = hdu
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(cmd *cobra.Command, path string) (psf.PSF, *config.Config, error) {
	cfg, err := settings(cmd)
	if err != nil {
		return nil, nil, err
	}
	p, err := irfio.Read(path, cfg.HDU)
	if errors.Is(err, fits.ErrNoHDU) {
		if names, _, herr := irfio.HDUs(path); herr == nil {
			return nil, nil, fmt.Errorf("%w (available: %s)", err, strings.Join(names, ", "))
		}
	}
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	p, cfg, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Title.Render(filepath.Base(args[0])))
	fmt.Printf("kind: %s\n\n", p.Kind())
	fmt.Print(p.InfoWith(cfg.InfoOptions()))

	if f, _ := irfio.FormatOf(args[0]); f == irfio.FormatYAML {
		return nil
	}
	names, kinds, err := irfio.HDUs(args[0])
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(viz.HeaderStyle.Render("extensions"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HDU\tNAME\tKIND")
	for i, name := range names {
		kind := string(kinds[name])
		if kind == "" {
			kind = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", i, name, kind)
	}
	return w.Flush()
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	p, _, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	eq, err := units.Parse(energyArg)
	if err != nil {
		return err
	}
	oq, err := units.Parse(offsetArg)
	if err != nil {
		return err
	}
	e, o, err := psf.Coords(eq, oq)
	if err != nil {
		return err
	}
	mode, err := grid.ParseOutside(outside)
	if err != nil {
		return err
	}
	if !psf.Covers(p, e, o) {
		monitoring.Logf("energy %s, offset %s is outside the tabulated range (%s)", eq, oq, mode)
	}

	fmt.Printf("energy: %s, offset: %s\n", eq, oq)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RAD (deg)\tDENSITY (deg-2)\tCONTAINMENT")
	for _, s := range radArgs {
		q, err := units.Parse(s)
		if err != nil {
			return err
		}
		r, err := q.In(units.Deg)
		if err != nil {
			return fmt.Errorf("rad: %w", err)
		}
		fmt.Fprintf(w, "%.6g\t%.6g\t%.6f\n", r, psf.EvaluateOutside(p, mode, r, e, o), p.Containment(r, e, o))
	}
	return w.Flush()
}

func runContainment(cmd *cobra.Command, args []string) error {
	p, cfg, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	warnSafeRange(p, cfg)
	t := export.Containment(p, cfg.Fractions, cfg.Energies, cfg.Offsets)
	if reference != "" {
		if err := compare(t, reference); err != nil {
			return err
		}
	}
	if outPath != "" {
		if err := export.Save(outPath, t); err != nil {
			return err
		}
		fmt.Printf("wrote %d rows to %s\n", len(t.Rows), outPath)
		return nil
	}
	return t.Write(os.Stdout, cfg.Format)
}

func compare(t *export.Table, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	ref, err := export.LoadCSV(file)
	if err != nil {
		return fmt.Errorf("reference %s: %w", path, err)
	}
	d, err := t.MaxDeviation(ref)
	if err != nil {
		return fmt.Errorf("reference %s: %w", path, err)
	}
	monitoring.Logf("max containment radius deviation from %s: %.6g deg", path, d)
	return nil
}

// warnSafeRange logs energies outside the safe range: the model's own range
// for MultiGauss, the configured one otherwise.
func warnSafeRange(p psf.PSF, cfg *config.Config) {
	lo, hi := cfg.EnergyThreshLo, cfg.EnergyThreshHi
	if m, ok := p.(*psf.MultiGauss); ok {
		lo, hi = m.Thresholds()
	}
	for _, e := range cfg.Energies {
		if e < lo || e > hi {
			monitoring.Logf("energy %g TeV is outside the safe range [%g, %g] TeV", e, lo, hi)
		}
	}
}

type tabulator interface {
	ToPSF3D(radEdges []float64) (*psf.Table3D, error)
}

func runConvert(cmd *cobra.Command, args []string) error {
	p, cfg, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	out := args[1]
	if m, ok := p.(*psf.MultiGauss); ok && (cmd.Flags().Changed("thresh-lo") || cmd.Flags().Changed("thresh-hi")) {
		p = m.WithThresholds(cfg.EnergyThreshLo, cfg.EnergyThreshHi)
	}

	switch convertTo {
	case "":
	case "table3d":
		if _, ok := p.(*psf.Table3D); ok {
			break
		}
		t, ok := p.(tabulator)
		if !ok {
			return fmt.Errorf("cannot tabulate %s as table3d", p.Kind())
		}
		if p, err = t.ToPSF3D(radEdges(cfg)); err != nil {
			return err
		}
	case "table":
		table, err := p.ToEnergyDependentTable(plotOffset, cfg.Rad())
		if err != nil {
			return err
		}
		return export.Save(out, export.FromEnergyTable(table, cfg.Fractions, plotOffset))
	case "profile":
		table, err := p.ToEnergyDependentTable(plotOffset, cfg.Rad())
		if err != nil {
			return err
		}
		file, err := os.Create(out)
		if err != nil {
			return err
		}
		defer file.Close()
		return export.WriteProfileCSV(file, table.AtEnergy(plotEnergy))
	default:
		return fmt.Errorf("unknown target %q (available: table3d, table, profile)", convertTo)
	}

	if err := irfio.Write(out, p); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s)\n", out, p.Kind())
	return nil
}

// radEdges spans [0, rad_max] in rad_step bins.
func radEdges(cfg *config.Config) []float64 {
	nodes := cfg.Rad()
	return append(nodes, cfg.RadStep*float64(len(nodes)))
}

func runPlot(cmd *cobra.Command, args []string) error {
	p, cfg, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	opts := viz.PlotOptions{Width: cfg.Plot.Width, Height: cfg.Plot.Height}
	table, err := p.ToEnergyDependentTable(plotOffset, cfg.Rad())
	if err != nil {
		return err
	}
	profile := table.AtEnergy(plotEnergy)
	at := fmt.Sprintf("E = %g TeV, offset = %g deg", plotEnergy, plotOffset)

	fmt.Println(viz.Title.Render(filepath.Base(args[0])))
	fmt.Println(viz.ProfilePlot(profile, opts, "density "+at))
	fmt.Println()
	fmt.Println(viz.ContainmentPlot(profile, opts, "containment "+at))
	fmt.Println()
	fmt.Println(viz.RadiusPlot(p, cfg.Fractions, plotOffset, opts))

	if rings {
		radii := psf.ContainmentRadii(p, cfg.Fractions, plotEnergy, plotOffset)
		extent := 0.0
		for _, r := range radii {
			if !math.IsInf(r, 0) && r > extent {
				extent = r
			}
		}
		fmt.Println()
		fmt.Print(viz.Rings(radii, 1.1*extent, opts.Width/2, opts.Height).String())
		for i, f := range cfg.Fractions {
			fmt.Println(viz.KV(fmt.Sprintf("R%.0f%%", 100*f), 8, "%.4f deg", radii[i]))
		}
	}
	return nil
}

func runPeek(cmd *cobra.Command, args []string) error {
	p, cfg, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	opts := peek.DefaultOptions()
	opts.Fractions = cfg.Fractions
	opts.Offsets = cfg.Offsets
	opts.Energy = plotEnergy
	opts.Rad = cfg.Rad()
	if err := peek.Save(args[1], p, opts); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	p, cfg, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	// the alternate screen hides log output
	monitoring.SetLogger(nil)
	return tui.Run(p, filepath.Base(args[0]), cfg.Fractions, cfg.Rad(), theme)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRAD_MAX\tRAD_STEP\tFRACTIONS\tENERGIES (TeV)\tOFFSETS (deg)")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%g\t%g\t%v\t%v\t%v\n", name, p.RadMax, p.RadStep, p.Fractions, p.Energies, p.Offsets)
	}
	return w.Flush()
}
