package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kikuuuty/ddsconv/internal/config"
	"github.com/kikuuuty/ddsconv/internal/encoder"
	"github.com/kikuuuty/ddsconv/internal/pipeline"
	"github.com/kikuuuty/ddsconv/internal/profile"
	"github.com/kikuuuty/ddsconv/internal/report"
	"github.com/spf13/cobra"
)

var (
	convertOut       string
	convertFormat    string
	convertQuality   string
	convertMipLevels int
	convertSRGB      bool
	convertForceRGB  bool
	convertDither    bool
	convertWorkers   int
	convertReport    string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Compress an image, or every image in a directory, to DDS",
	Long: `Converts an image file to a block-compressed DDS texture. The default output
is the input path with its extension replaced by .dds; an output ending in
.zst is zstd-compressed.

When <input> is a directory every recognised image below it is converted to
<out>/<relpath>.dds, with --workers files in flight.

Mipmaps are generated only when --mip-levels is given; 0, or -m with no
value, builds the full chain down to 1x1. A count goes attached to the
flag: -m3 or --mip-levels=3.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOut, "out", "o", "", "output file, or directory for directory input")
	f.StringVarP(&convertFormat, "format", "f", "bc7", "target format: "+strings.Join(encoder.Targets(), ", "))
	f.StringVarP(&convertQuality, "quality", "q", "ultrafast", "encoder level: "+strings.Join(profile.Levels(), ", "))
	f.IntVarP(&convertMipLevels, "mip-levels", "m", 0, "generate N mip levels (0 or bare -m = full chain)")
	f.Lookup("mip-levels").NoOptDefVal = "0"
	f.BoolVar(&convertSRGB, "srgb", false, "treat input as sRGB-encoded")
	f.BoolVar(&convertForceRGB, "force-rgb", false, "ignore alpha (opaque BC7 family)")
	f.BoolVar(&convertDither, "dither", false, "dither BC1/BC3 color to RGB565")
	f.IntVarP(&convertWorkers, "workers", "w", 1, "parallel slices (file) or files (directory)")
	f.StringVar(&convertReport, "report", "", "write a JSON run report to this path")
	rootCmd.AddCommand(convertCmd)
}

// convertSettings merges the config file with flags; flags win when set.
func convertSettings(cmd *cobra.Command, cfg *config.Config) (pipeline.Config, string, error) {
	flags := cmd.Flags()
	set := func(name string) bool { return flags.Changed(name) }

	if set("format") {
		cfg.Compression.Format = convertFormat
	}
	if set("quality") {
		cfg.Compression.Quality = convertQuality
	}
	if set("mip-levels") {
		cfg.Mipmaps.Generate = true
		cfg.Mipmaps.Levels = convertMipLevels
	}
	if set("srgb") {
		cfg.Color.SRGB = convertSRGB
	}
	if set("force-rgb") {
		cfg.Compression.ForceRGB = convertForceRGB
	}
	if set("dither") {
		cfg.Compression.Dither = convertDither
	}
	if set("workers") {
		cfg.Processing.Workers = convertWorkers
	}
	if set("report") {
		cfg.Output.Report = convertReport
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	target, err := encoder.ParseTarget(cfg.Compression.Format)
	if err != nil {
		return pipeline.Config{}, "", err
	}
	level, err := profile.ParseLevel(cfg.Compression.Quality)
	if err != nil {
		return pipeline.Config{}, "", err
	}
	if cfg.Mipmaps.Levels < 0 {
		return pipeline.Config{}, "", fmt.Errorf("mip levels must be >= 0, got %d", cfg.Mipmaps.Levels)
	}

	return pipeline.Config{
		Output:       convertOut,
		Target:       target,
		Level:        level,
		GenerateMips: cfg.Mipmaps.Generate,
		MipLevels:    cfg.Mipmaps.Levels,
		SRGB:         cfg.Color.SRGB,
		ForceRGB:     cfg.Compression.ForceRGB,
		Dither:       cfg.Compression.Dither,
		Workers:      cfg.Processing.Workers,
		Verbose:      cfg.Output.Verbose,
	}, cfg.Output.Report, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	pcfg, reportPath, err := convertSettings(cmd, cfg)
	if err != nil {
		return err
	}

	// Resolve absolute paths.
	if pcfg.Input, err = filepath.Abs(args[0]); err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	if pcfg.Output != "" {
		if pcfg.Output, err = filepath.Abs(pcfg.Output); err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
	}

	logVerbose("input:   %s", pcfg.Input)
	logVerbose("output:  %s", pcfg.Output)
	logVerbose("target:  %s (quality=%s, mips=%v/%d, srgb=%v)",
		pcfg.Target, pcfg.Level, pcfg.GenerateMips, pcfg.MipLevels, pcfg.SRGB)

	r, err := pipeline.New(pcfg).Run()
	if err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) {
			return err
		}
		return fmt.Errorf("pipeline: %w", err)
	}

	if reportPath != "" {
		if err := report.WriteJSON(r, reportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logVerbose("report:  %s", reportPath)
	}

	printConvertReport(r, time.Since(start))
	return nil
}

func printConvertReport(r *report.Report, elapsed time.Duration) {
	s := r.Stats
	fmt.Println()
	fmt.Printf("  Files:       %d", s.TotalFiles)
	if s.Failed > 0 {
		fmt.Printf("  (%d failed)", s.Failed)
	}
	fmt.Println()
	fmt.Printf("  Target:      %s (%s)\n", r.Settings.Target, r.Settings.Level)
	fmt.Printf("  Slices:      %d (%d padded)\n", s.TotalSlices, s.PaddedSlices)
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	keys := make([]string, 0, len(r.Files))
	for key := range r.Files {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	n := min(len(keys), 10)
	for _, key := range keys[:n] {
		f := r.Files[key]
		fmt.Printf("    %-40s %4dx%-4d %2d mips  %8s  %s\n",
			truncKey(key, 40), f.Result.Width, f.Result.Height, f.Result.MipLevels,
			formatBytes(f.Result.Size), f.Checksum)
	}
	if len(keys) > n {
		fmt.Printf("    ... %d more\n", len(keys)-n)
	}
	fmt.Println()
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
