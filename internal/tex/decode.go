package tex

import (
	"errors"
	"fmt"
	"image"

	"github.com/kikuuuty/ddsconv/internal/encoder"
	"github.com/mauserzjeh/dxt"
)

// ErrNoDecoder is returned by DecodeSlice for formats it cannot expand.
var ErrNoDecoder = errors.New("tex: no decoder for format")

// DecodeSlice expands s to 8-bit RGBA. BC1 and BC3 are block-decoded;
// uncompressed formats are converted.
func DecodeSlice(s *Slice) (*image.NRGBA, error) {
	var (
		pix []byte
		err error
	)
	w, h := uint(s.Width), uint(s.Height)
	switch s.Format {
	case FormatBC1UNorm, FormatBC1UNormSRGB:
		pix, err = dxt.DecodeDXT1(s.Pix, w, h)
	case FormatBC3UNorm, FormatBC3UNormSRGB:
		if pix, err = dxt.DecodeDXT5(s.Pix, w, h); err == nil {
			decodeBC3Alpha(s, pix)
		}
	default:
		if s.Format.Compressed() {
			return nil, fmt.Errorf("decode: %w %s", ErrNoDecoder, s.Format)
		}
		return s.ToNRGBA()
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Format, err)
	}
	return &image.NRGBA{Pix: pix, Stride: s.Width * 4, Rect: image.Rect(0, 0, s.Width, s.Height)}, nil
}

// decodeBC3Alpha overwrites the alpha channel of pix from the BC4 half of
// each BC3 block.
func decodeBC3Alpha(s *Slice, pix []byte) {
	var vals [16]uint8
	off := 0
	for by := 0; by < s.Height; by += 4 {
		for bx := 0; bx < s.Width; bx += 4 {
			encoder.DecodeBC4Block(s.Pix[off:off+8], &vals)
			for j := 0; j < 4 && by+j < s.Height; j++ {
				for i := 0; i < 4 && bx+i < s.Width; i++ {
					pix[((by+j)*s.Width+bx+i)*4+3] = vals[j*4+i]
				}
			}
			off += 16
		}
	}
}
