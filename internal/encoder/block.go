package encoder

import (
	"encoding/binary"
	"math"

	"github.com/kikuuuty/ddsconv/internal/surface"
	"github.com/x448/float16"
)

// RGBABlock is one 4×4 tile of 8-bit RGBA pixels in row-major order.
type RGBABlock [16][4]uint8

// BlocksSize returns the number of bytes needed to cover a width×height
// surface with blocks of blockBytes bytes.
func BlocksSize(width, height, blockBytes int) int {
	return surface.BlockCount(width) * surface.BlockCount(height) * blockBytes
}

// forEachBlock calls fn for every 4×4 tile of src with the slice of dst that
// receives that tile's compressed bytes.
func forEachBlock(src surface.Descriptor, dst []byte, blockBytes int, fn func(x, y int, out []byte)) {
	off := 0
	for y := 0; y < src.Height; y += surface.BlockDim {
		for x := 0; x < src.Width; x += surface.BlockDim {
			fn(x, y, dst[off:off+blockBytes])
			off += blockBytes
		}
	}
}

// LoadRGBA reads the tile at (x, y) from an RGBA8 surface.
func LoadRGBA(src surface.Descriptor, x, y int, blk *RGBABlock) {
	for j := 0; j < 4; j++ {
		row := (y+j)*src.Stride + x*4
		for i := 0; i < 4; i++ {
			copy(blk[j*4+i][:], src.Pix[row+i*4:row+i*4+4])
		}
	}
}

// loadHalf reads the RGB channels of the tile at (x, y) from an RGBA16F
// surface as unsigned half-float bit patterns.
func loadHalf(src surface.Descriptor, x, y int, pts *[16][4]float64) {
	for j := 0; j < 4; j++ {
		row := (y+j)*src.Stride + x*8
		for i := 0; i < 4; i++ {
			p := src.Pix[row+i*8:]
			for c := 0; c < 3; c++ {
				bits := binary.LittleEndian.Uint16(p[c*2:])
				pts[j*4+i][c] = float64(unsignedHalf(bits))
			}
			pts[j*4+i][3] = 0
		}
	}
}

// maxHalf is the bit pattern of the largest finite half float.
const maxHalf = 0x7BFF

// unsignedHalf clamps a half float to the range BC6H_UF16 can store.
func unsignedHalf(bits uint16) uint16 {
	h := float16.Frombits(bits)
	switch {
	case h.IsNaN():
		return 0
	case h.Signbit():
		return 0
	case h.IsInf(1):
		return maxHalf
	}
	return bits
}

func clampRound(v, lo, hi float64) int {
	v = math.Round(v)
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return int(v)
}

func sq(v float64) float64 { return v * v }

// bitWriter packs fields least significant bit first, as BC6H and BC7 lay
// them out.
type bitWriter struct {
	buf []byte
	pos int
}

func newBitWriter(buf []byte) *bitWriter {
	clear(buf)
	return &bitWriter{buf: buf}
}

func (w *bitWriter) put(v uint32, n int) {
	for i := 0; i < n; i++ {
		if v>>i&1 != 0 {
			w.buf[w.pos>>3] |= 1 << (w.pos & 7)
		}
		w.pos++
	}
}
