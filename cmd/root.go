package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/kikuuuty/ddsconv/internal/config"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ddsconv",
	Short: "Convert images into block-compressed DDS textures",
	Long: `ddsconv loads an image (PNG, JPEG, GIF, BMP, TIFF, WebP, QOI, TGA or DDS,
optionally zstd-wrapped), converts it to the encoder's working format,
optionally builds a mip chain, compresses every slice to BC1, BC3, BC5,
BC6H or BC7 and writes a DDS file.

Images whose sides are not multiples of 4 are padded by replicating the
last block's edge pixels before encoding.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "YAML config file (missing file = defaults)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"ddsconv %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[ddsconv] "+format+"\n", args...)
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
