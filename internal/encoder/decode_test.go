package encoder

import (
	"encoding/binary"
	"image"
	"testing"

	"github.com/kikuuuty/ddsconv/internal/surface"
	"github.com/x448/float16"
)

// Reference decoders for the single modes the encoders emit.

type bitReader struct {
	buf []byte
	pos int
}

func (r *bitReader) get(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		if r.buf[r.pos>>3]>>(r.pos&7)&1 != 0 {
			v |= 1 << i
		}
		r.pos++
	}
	return v
}

func readIndices(r *bitReader) [16]int {
	var idx [16]int
	idx[0] = r.get(3)
	for i := 1; i < 16; i++ {
		idx[i] = r.get(4)
	}
	return idx
}

func decodeMode6(t *testing.T, blk []byte) [16][4]uint8 {
	t.Helper()
	r := &bitReader{buf: blk}
	if m := r.get(7); m != 1<<6 {
		t.Fatalf("mode bits %07b, want mode 6", m)
	}
	var ep [2][4]int
	for c := 0; c < 4; c++ {
		ep[0][c] = r.get(7) << 1
		ep[1][c] = r.get(7) << 1
	}
	p0, p1 := r.get(1), r.get(1)
	for c := 0; c < 4; c++ {
		ep[0][c] |= p0
		ep[1][c] |= p1
	}
	idx := readIndices(r)

	var px [16][4]uint8
	for i := range px {
		for c := 0; c < 4; c++ {
			px[i][c] = uint8(interp(ep[0][c], ep[1][c], interpWeights[idx[i]]))
		}
	}
	return px
}

func decodeMode11(t *testing.T, blk []byte) [16][3]uint16 {
	t.Helper()
	r := &bitReader{buf: blk}
	if m := r.get(5); m != 0x03 {
		t.Fatalf("mode bits %05b, want mode 11", m)
	}
	var ep [2][3]int
	for k := 0; k < 2; k++ {
		for c := 0; c < 3; c++ {
			ep[k][c] = unquantize10(r.get(10))
		}
	}
	idx := readIndices(r)

	var px [16][3]uint16
	for i := range px {
		for c := 0; c < 3; c++ {
			px[i][c] = uint16(finishUnsigned(interp(ep[0][c], ep[1][c], interpWeights[idx[i]])))
		}
	}
	return px
}

// gradientRGBA returns a w×h image whose channels ramp in different
// directions.
func gradientRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := img.PixOffset(x, y)
			img.Pix[o+0] = uint8(40 + x*12)
			img.Pix[o+1] = uint8(200 - y*10)
			img.Pix[o+2] = uint8(60 + x*6 + y*6)
			img.Pix[o+3] = uint8(255 - x*8 - y*4)
		}
	}
	return img
}

func describe(img *image.RGBA) surface.Descriptor {
	b := img.Bounds()
	return surface.Descriptor{Pix: img.Pix, Width: b.Dx(), Height: b.Dy(), Stride: img.Stride}
}

// halfSurface returns an RGBA16F surface of w×h pixels built from f.
func halfSurface(w, h int, f func(x, y, c int) float32) surface.Descriptor {
	pix := make([]byte, w*h*8)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < 4; c++ {
				v := float16.Fromfloat32(f(x, y, c)).Bits()
				binary.LittleEndian.PutUint16(pix[(y*w+x)*8+c*2:], v)
			}
		}
	}
	return surface.Descriptor{Pix: pix, Width: w, Height: h, Stride: w * 8}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
