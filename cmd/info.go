package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kikuuuty/ddsconv/internal/tex"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.dds>",
	Short: "Display the header and mip layout of a DDS file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(_ *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, tex.ZstdExt) {
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	meta, h, ext, err := tex.ReadDDSHeader(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		return err
	}

	printInfo(path, stat.Size(), meta, h, ext)
	return nil
}

func printInfo(path string, size int64, meta tex.Metadata, h *tex.DDSHeader, ext *tex.DDSHeaderDX10) {
	fmt.Println()
	fmt.Printf("  File:        %s (%s)\n", path, formatBytes(size))
	fmt.Printf("  Format:      %s\n", meta.Format)
	fmt.Printf("  Dimension:   %s", meta.Dimension)
	if meta.IsCube() {
		fmt.Printf(" cube (%d faces)", meta.ArraySize)
	}
	fmt.Println()
	fmt.Printf("  Size:        %dx%d", meta.Width, meta.Height)
	if meta.IsVolume() {
		fmt.Printf("x%d", meta.Depth)
	}
	fmt.Println()
	fmt.Printf("  Array size:  %d\n", meta.ArraySize)
	fmt.Printf("  Mip levels:  %d\n", meta.MipLevels)
	if ext != nil {
		fmt.Printf("  Header:      DX10 (dxgi=%d, dimension=%d, misc=%#x)\n", ext.DXGIFormat, ext.ResourceDimension, ext.MiscFlag)
	} else {
		fmt.Printf("  Header:      legacy (flags=%#x, fourcc=%q)\n", h.PixelFormat.Flags, fourCCString(h.PixelFormat.FourCC))
	}
	fmt.Println()

	fmt.Println("  Mip layout:")
	var total int64
	for mip := 0; mip < meta.MipLevels; mip++ {
		w, hh, d := meta.MipSize(mip)
		row, slice := tex.ComputePitch(meta.Format, w, hh)
		count := meta.ArraySize
		if meta.IsVolume() {
			count = d
		}
		total += int64(slice * count)
		fmt.Printf("    %2d  %5dx%-5d  pitch %6d  %s × %d\n", mip, w, hh, row, formatBytes(int64(slice)), count)
	}
	fmt.Printf("  Pixel data:  %s\n", formatBytes(total))
	fmt.Println()
}

func fourCCString(v uint32) string {
	if v == 0 {
		return ""
	}
	return string([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}
