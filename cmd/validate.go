package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/kikuuuty/ddsconv/internal/report"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report.json>",
	Short: "Check that the outputs listed in a run report are intact",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	reportPath := args[0]

	r, err := report.ReadJSON(reportPath)
	if err != nil {
		return err
	}

	errors := report.Validate(r, filepath.Dir(reportPath))
	if len(errors) == 0 {
		fmt.Println("  ✓ Report is valid")
		fmt.Printf("  ✓ %d files, %d slices, all outputs match their checksums\n", r.Stats.TotalFiles, r.Stats.TotalSlices)
		return nil
	}

	fmt.Printf("  ✗ Report has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}
