package tex

import (
	"errors"
	"fmt"

	"github.com/kikuuuty/ddsconv/internal/encoder"
)

// CompressFlags tune the generic compressor.
type CompressFlags uint32

const (
	CompressDefault CompressFlags = 0
	// CompressDither applies Floyd–Steinberg error diffusion to RGB565
	// inside each block before BC1/BC3 color encoding.
	CompressDither CompressFlags = 1 << iota
)

// ErrUnsupportedTarget is returned by Compress for formats it cannot produce.
var ErrUnsupportedTarget = errors.New("tex: unsupported compression target")

type blockFunc func(blk *encoder.RGBABlock, out []byte)

func compressorFor(target Format) (blockFunc, bool) {
	switch target {
	case FormatBC1UNorm, FormatBC1UNormSRGB:
		return encoder.EncodeBC1Block, true
	case FormatBC3UNorm, FormatBC3UNormSRGB:
		return encoder.EncodeBC3Block, true
	case FormatBC5UNorm:
		return encoder.EncodeBC5Block, true
	}
	return nil, false
}

// Compress encodes every slice of src into target. Partial blocks at the
// right and bottom edges are filled by clamping to the last column and row.
// src may be any uncompressed format; pixels are read as 8-bit RGBA.
func Compress(src *Image, target Format, flags CompressFlags) (*Image, error) {
	fn, ok := compressorFor(target)
	if !ok {
		return nil, fmt.Errorf("compress: %w: %s", ErrUnsupportedTarget, target)
	}
	if src.Format.Compressed() || !src.Format.Known() {
		return nil, fmt.Errorf("compress %s: %w", src.Format, ErrCompressedFormat)
	}

	meta := src.Metadata
	meta.Format = target
	dst, err := New(meta)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	dither := flags&CompressDither != 0 && target != FormatBC5UNorm
	bb := target.BlockBytes()
	for i := range src.slices {
		s, d := &src.slices[i], &dst.slices[i]
		off := 0
		var blk encoder.RGBABlock
		for by := 0; by < s.Height; by += 4 {
			for bx := 0; bx < s.Width; bx += 4 {
				gatherClamped(s, bx, by, &blk)
				if dither {
					ditherBlock565(&blk)
				}
				fn(&blk, d.Pix[off:off+bb])
				off += bb
			}
		}
	}
	return dst, nil
}

func gatherClamped(s *Slice, bx, by int, blk *encoder.RGBABlock) {
	bpp := s.Format.BytesPerPixel()
	for j := 0; j < 4; j++ {
		y := min(by+j, s.Height-1)
		for i := 0; i < 4; i++ {
			x := min(bx+i, s.Width-1)
			p := s.Pix[y*s.RowPitch+x*bpp:]
			if s.Format == FormatR8G8B8A8UNorm || s.Format == FormatR8G8B8A8UNormSRGB {
				copy(blk[j*4+i][:], p[:4])
				continue
			}
			v := loadPixel(s.Format, p)
			for c := 0; c < 4; c++ {
				blk[j*4+i][c] = unorm8(v[c])
			}
		}
	}
}

// ditherBlock565 snaps the block's RGB to the 5:6:5 grid, diffusing the
// rounding error to unvisited neighbours within the block.
func ditherBlock565(blk *encoder.RGBABlock) {
	var work [16][3]float32
	for i := range blk {
		for c := 0; c < 3; c++ {
			work[i][c] = float32(blk[i][c])
		}
	}
	levels := [3]float32{31, 63, 31}
	spread := func(x, y int, err [3]float32, w float32) {
		if x < 0 || x > 3 || y > 3 {
			return
		}
		for c := 0; c < 3; c++ {
			work[y*4+x][c] += err[c] * w
		}
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := y*4 + x
			var err [3]float32
			for c := 0; c < 3; c++ {
				v := min(max(work[i][c], 0), 255)
				q := float32(int(v*levels[c]/255+0.5)) * 255 / levels[c]
				err[c] = work[i][c] - q
				blk[i][c] = uint8(q + 0.5)
			}
			spread(x+1, y, err, 7.0/16)
			spread(x-1, y+1, err, 3.0/16)
			spread(x, y+1, err, 5.0/16)
			spread(x+1, y+1, err, 1.0/16)
		}
	}
}
