package tex

import (
	"errors"
	"fmt"
)

// Filter selects color-space handling for Convert.
type Filter uint32

const (
	FilterDefault Filter = 0
	// FilterSRGBIn treats the source as sRGB-encoded.
	FilterSRGBIn Filter = 1 << iota
	// FilterSRGBOut encodes the result as sRGB.
	FilterSRGBOut
)

var (
	// ErrSameFormat is returned when the target equals the source format.
	ErrSameFormat = errors.New("tex: source and target formats are identical")
	// ErrCompressedFormat is returned for block-compressed inputs or targets.
	ErrCompressedFormat = errors.New("tex: cannot convert block-compressed formats")
)

// Convert returns a copy of src in the target pixel format. The source and
// target must be different uncompressed formats.
func Convert(src *Image, target Format, filter Filter) (*Image, error) {
	if target == src.Format {
		return nil, fmt.Errorf("convert %s: %w", target, ErrSameFormat)
	}
	if src.Format.Compressed() || target.Compressed() {
		return nil, fmt.Errorf("convert %s to %s: %w", src.Format, target, ErrCompressedFormat)
	}

	meta := src.Metadata
	meta.Format = target
	dst, err := New(meta)
	if err != nil {
		return nil, fmt.Errorf("convert %s to %s: %w", src.Format, target, err)
	}

	in := filter&FilterSRGBIn != 0 || src.Format.SRGB()
	out := filter&FilterSRGBOut != 0 || target.SRGB()
	toLinear := in && !out
	toSRGB := out && !in

	sbpp, dbpp := src.Format.BytesPerPixel(), target.BytesPerPixel()
	for i := range src.slices {
		s, d := &src.slices[i], &dst.slices[i]
		for y := 0; y < s.Height; y++ {
			srow := s.Pix[y*s.RowPitch:]
			drow := d.Pix[y*d.RowPitch:]
			for x := 0; x < s.Width; x++ {
				v := loadPixel(src.Format, srow[x*sbpp:])
				for c := 0; c < 3; c++ {
					switch {
					case toLinear:
						v[c] = srgbToLinear(v[c])
					case toSRGB:
						v[c] = linearToSRGB(v[c])
					}
				}
				storePixel(target, drow[x*dbpp:], v)
			}
		}
	}
	return dst, nil
}
