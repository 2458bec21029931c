package cmd

import (
	"fmt"
	"image/png"
	"os"

	"github.com/kikuuuty/ddsconv/internal/tex"
	"github.com/spf13/cobra"
)

var (
	decodeMip  int
	decodeItem int
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file.dds> <out.png>",
	Short: "Decode one slice of a BC1, BC3 or uncompressed DDS to PNG",
	Args:  cobra.ExactArgs(2),
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().IntVar(&decodeMip, "mip", 0, "mip level to decode")
	decodeCmd.Flags().IntVar(&decodeItem, "item", 0, "array item or cube face to decode")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(_ *cobra.Command, args []string) error {
	img, err := tex.Load(args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}
	s := img.Slice(decodeMip, decodeItem, 0)
	if s == nil {
		return fmt.Errorf("no slice at mip %d item %d (%d mips, %d items)", decodeMip, decodeItem, img.MipLevels, img.Items())
	}
	logVerbose("decoding %s mip %d item %d: %dx%d", img.Format, decodeMip, decodeItem, s.Width, s.Height)

	m, err := tex.DecodeSlice(s)
	if err != nil {
		return err
	}

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := png.Encode(out, m); err != nil {
		out.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return out.Close()
}
