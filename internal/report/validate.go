package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kikuuuty/ddsconv/internal/hasher"
)

// Validate checks the report's internal consistency and that every output
// it names exists on disk with the recorded size and checksum. Relative
// output paths are resolved against baseDir.
func Validate(r *Report, baseDir string) []string {
	var errs []string

	if r.Version != SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported report version: %d", r.Version))
	}

	keys := make([]string, 0, len(r.Files))
	for key := range r.Files {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := map[string]string{}
	slices := 0
	for _, key := range keys {
		f := r.Files[key]
		slices += len(f.Slices)

		if f.Result.Width <= 0 || f.Result.Height <= 0 {
			errs = append(errs, fmt.Sprintf("file %q: invalid dimensions %dx%d", key, f.Result.Width, f.Result.Height))
		}
		if f.Result.Width != f.Source.Width || f.Result.Height != f.Source.Height {
			errs = append(errs, fmt.Sprintf("file %q: result %dx%d differs from source %dx%d",
				key, f.Result.Width, f.Result.Height, f.Source.Width, f.Source.Height))
		}
		if f.Checksum == "" {
			errs = append(errs, fmt.Sprintf("file %q: missing checksum", key))
		}
		if f.Output == "" {
			errs = append(errs, fmt.Sprintf("file %q: missing output path", key))
			continue
		}
		if other, ok := seen[f.Output]; ok {
			errs = append(errs, fmt.Sprintf("file %q: output %q also written by %q", key, f.Output, other))
		}
		seen[f.Output] = key

		path := f.Output
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, fmt.Sprintf("file %q: output not found: %s", key, f.Output))
			continue
		}
		if f.Result.Size > 0 && info.Size() != f.Result.Size {
			errs = append(errs, fmt.Sprintf("file %q: size mismatch: report=%d, disk=%d", key, f.Result.Size, info.Size()))
			continue
		}
		if f.Checksum == "" {
			continue
		}
		sum, err := hasher.FileChecksum(path)
		if err != nil {
			errs = append(errs, fmt.Sprintf("file %q: checksum: %v", key, err))
		} else if sum != f.Checksum {
			errs = append(errs, fmt.Sprintf("file %q: checksum mismatch: report=%s, disk=%s", key, f.Checksum, sum))
		}
	}

	if r.Stats.TotalFiles != len(r.Files) {
		errs = append(errs, fmt.Sprintf("stats.total_files mismatch: %d != %d", r.Stats.TotalFiles, len(r.Files)))
	}
	if r.Stats.TotalSlices != slices {
		errs = append(errs, fmt.Sprintf("stats.total_slices mismatch: %d != %d", r.Stats.TotalSlices, slices))
	}
	return errs
}
