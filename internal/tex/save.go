package tex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Save writes img as DDS to path, zstd-compressed when path ends in .zst.
// Data goes to a temporary file in the same directory that is renamed over
// path once complete, so a failed save leaves nothing behind.
func Save(img *Image, path string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = encode(tmp, img, strings.HasSuffix(path, ZstdExt)); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func encode(w io.Writer, img *Image, compress bool) error {
	if !compress {
		return WriteDDS(w, img)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := WriteDDS(enc, img); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
