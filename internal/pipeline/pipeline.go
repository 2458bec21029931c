package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kikuuuty/ddsconv/internal/encoder"
	"github.com/kikuuuty/ddsconv/internal/profile"
	"github.com/kikuuuty/ddsconv/internal/report"
)

// Config holds all parameters for a conversion run.
type Config struct {
	// Input is an image file or a directory of images.
	Input string
	// Output is the destination file, or the destination directory when
	// Input is a directory. Empty means next to the input.
	Output string

	Target encoder.Target
	Level  profile.Level

	GenerateMips bool
	MipLevels    int // 0 = full chain
	SRGB         bool
	ForceRGB     bool // opaque BC7 family
	Dither       bool // BC1/BC3 only

	// Workers bounds concurrent slices for a single file, or concurrent
	// files for a directory.
	Workers int
	Verbose bool
}

// Pipeline orchestrates texture conversion.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(cfg.Level, cfg.ForceRGB),
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[ddsconv] "+format+"\n", args...)
	}
}

// Settings returns the report header for this run.
func (p *Pipeline) Settings() report.Settings {
	return report.Settings{
		Target:       p.cfg.Target.String(),
		Level:        p.cfg.Level.String(),
		GenerateMips: p.cfg.GenerateMips,
		MipLevels:    p.cfg.MipLevels,
		SRGB:         p.cfg.SRGB,
		ForceRGB:     p.cfg.ForceRGB,
		Dither:       p.cfg.Dither,
		Workers:      p.cfg.Workers,
	}
}

// Run converts the input and returns the run report. For a single file any
// stage failure is returned as a *StageError.
func (p *Pipeline) Run() (*report.Report, error) {
	if p.cfg.Verbose {
		p.logf("%s", p.registry.String())
	}

	info, err := os.Stat(p.cfg.Input)
	if err != nil {
		return nil, stageError(ErrLoad, p.cfg.Input, err)
	}
	if info.IsDir() {
		return p.runDir()
	}

	out := p.cfg.Output
	if out == "" {
		out = DefaultOutput(p.cfg.Input)
	}
	key := filepath.Base(p.cfg.Input)
	key = strings.TrimSuffix(key, imageExt(key))

	res := p.processFile(key, p.cfg.Input, out, p.cfg.Workers)
	if res.err != nil {
		return nil, res.err
	}
	r := report.New(p.Settings())
	r.Files[res.key] = res.file
	r.ComputeStats()
	return r, nil
}

// runDir converts every image under the input directory, mirroring the
// directory layout under the output directory.
func (p *Pipeline) runDir() (*report.Report, error) {
	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	outDir := p.cfg.Output
	if outDir == "" {
		outDir = p.cfg.Input
	}

	// Outputs from an earlier run into the same tree are not inputs.
	var jobs []Source
	for _, s := range sources {
		if err := checkOutput(s.AbsPath, outputFor(outDir, s)); err != nil {
			p.logf("skip: %s: %v", s.RelPath, err)
			continue
		}
		jobs = append(jobs, s)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.Input)
	}
	p.logf("found %d images", len(jobs))

	// Step 2: Convert files in parallel.
	results := make([]processResult, len(jobs))
	owner := map[string]string{}
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range jobs {
		out := outputFor(outDir, src)
		if prev, ok := owner[src.Key]; ok {
			results[i] = processResult{key: src.Key, err: stageError(ErrSave, out,
				fmt.Errorf("output also produced by %s", prev))}
			continue
		}
		owner[src.Key] = src.RelPath
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			results[i] = processResult{key: src.Key, err: stageError(ErrSave, out, err)}
			continue
		}

		wg.Add(1)
		go func(idx int, s Source, out string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			p.logf("processing: %s", s.Key)
			results[idx] = p.processFile(s.Key, s.AbsPath, out, 1)
			if results[idx].err == nil {
				p.logf("done: %s (%d slices)", s.Key, len(results[idx].file.Slices))
			}
		}(i, src, out)
	}
	wg.Wait()

	// Step 3: Collect results into the report.
	r := report.New(p.Settings())
	var errs []error
	for _, res := range results {
		if res.err != nil {
			errs = append(errs, res.err)
			continue
		}
		r.Files[res.key] = res.file
	}

	// Report errors but don't fail the entire run for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[ddsconv] error: %v\n", e)
		}
		if len(errs) == len(jobs) {
			return nil, fmt.Errorf("all %d images failed to convert: %w", len(errs), errs[0])
		}
		fmt.Fprintf(os.Stderr, "[ddsconv] warning: %d of %d images had errors\n", len(errs), len(jobs))
	}
	r.Stats.Failed = len(errs)
	r.ComputeStats()
	return r, nil
}

func outputFor(outDir string, s Source) string {
	return filepath.Join(outDir, filepath.FromSlash(s.Key)+".dds")
}
