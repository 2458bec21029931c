package tex

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ftrvxmtrx/tga"
	"github.com/klauspost/compress/zstd"
	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnknownContainer is returned when no decoder recognises the input.
var ErrUnknownContainer = errors.New("tex: unrecognised image container")

// ZstdExt is the suffix of zstd-wrapped files.
const ZstdExt = ".zst"

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

type decodeFunc func(io.Reader) (image.Image, error)

// signatures maps container magic bytes to decoders. DDS and zstd are
// handled before this table.
var signatures = []struct {
	name   string
	match  func([]byte) bool
	decode decodeFunc
}{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", prefix("\xff\xd8\xff"), jpeg.Decode},
	{"gif", prefix("GIF8"), gif.Decode},
	{"bmp", prefix("BM"), bmp.Decode},
	{"tiff", func(b []byte) bool {
		return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*"))
	}, tiff.Decode},
	{"webp", func(b []byte) bool {
		return len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP"
	}, webp.Decode},
	{"qoi", prefix("qoif"), qoi.Decode},
}

func prefix(p string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(p)) }
}

// Load reads an image file. DDS files keep their format and shape; every
// other container is decoded to a single-mip R8G8B8A8_UNORM 2D image.
// Files ending in .zst are decompressed first.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// Decode parses data, using name's extension only for containers without a
// signature (TGA).
func Decode(data []byte, name string) (*Image, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := unzstd(data)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return Decode(plain, strings.TrimSuffix(name, ZstdExt))
	}
	if bytes.HasPrefix(data, []byte("DDS ")) {
		return ReadDDS(bytes.NewReader(data))
	}
	for _, sig := range signatures {
		if sig.match(data) {
			m, err := sig.decode(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", sig.name, err)
			}
			return FromImage(m)
		}
	}
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		m, err := tga.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("tga: %w", err)
		}
		return FromImage(m)
	}
	return nil, ErrUnknownContainer
}

func unzstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// FromImage copies m into a new R8G8B8A8_UNORM image with straight alpha.
func FromImage(m image.Image) (*Image, error) {
	nrgba := imaging.Clone(m)
	b := nrgba.Bounds()
	img, err := New(Metadata{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Depth:     1,
		ArraySize: 1,
		MipLevels: 1,
		Format:    FormatR8G8B8A8UNorm,
		Dimension: Texture2D,
	})
	if err != nil {
		return nil, err
	}
	s := img.Slice(0, 0, 0)
	for y := 0; y < s.Height; y++ {
		copy(s.Pix[y*s.RowPitch:(y+1)*s.RowPitch], nrgba.Pix[y*nrgba.Stride:])
	}
	return img, nil
}

// ToNRGBA returns the slice as an image, converting from any uncompressed
// format.
func (s *Slice) ToNRGBA() (*image.NRGBA, error) {
	if s.Format.Compressed() || !s.Format.Known() {
		return nil, fmt.Errorf("to image: %w: %s", ErrCompressedFormat, s.Format)
	}
	out := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	bpp := s.Format.BytesPerPixel()
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			v := loadPixel(s.Format, s.Pix[y*s.RowPitch+x*bpp:])
			o := out.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				out.Pix[o+c] = unorm8(v[c])
			}
		}
	}
	return out, nil
}
