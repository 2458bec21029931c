package encoder

import (
	"encoding/binary"
	"math"

	"github.com/kikuuuty/ddsconv/internal/surface"
)

// colorRefineIterations bounds the least-squares passes for BC1 colors.
const colorRefineIterations = 2

type bc1Encoder struct{}

func (bc1Encoder) Target() Target { return BC1 }

func (bc1Encoder) Encode(src surface.Descriptor, dst []byte) {
	var blk RGBABlock
	forEachBlock(src, dst, 8, func(x, y int, out []byte) {
		LoadRGBA(src, x, y, &blk)
		EncodeBC1Block(&blk, out)
	})
}

// EncodeBC1Block writes the 8-byte BC1 encoding of blk's RGB channels.
// Alpha is ignored and the block always uses four-color mode.
func EncodeBC1Block(blk *RGBABlock, out []byte) {
	var pts [16][4]float64
	for i, p := range blk {
		pts[i] = [4]float64{float64(p[0]), float64(p[1]), float64(p[2])}
	}

	mean, axis := principalAxis(&pts, 3)
	e0, e1 := extremes(&pts, 3, mean, axis, 0)
	best := fitColor(&pts, e0, e1)

	for i := 0; i < colorRefineIterations && best.err > 0; i++ {
		var w [16]float64
		for j, idx := range best.indices {
			w[j] = bc1Weights[idx]
		}
		n0, n1, ok := refit(&pts, 3, &w)
		if !ok {
			break
		}
		cand := fitColor(&pts, n0, n1)
		if cand.err >= best.err {
			break
		}
		best = cand
	}

	binary.LittleEndian.PutUint16(out[0:], best.c0)
	binary.LittleEndian.PutUint16(out[2:], best.c1)
	var packed uint32
	for i, idx := range best.indices {
		packed |= uint32(idx) << (2 * i)
	}
	binary.LittleEndian.PutUint32(out[4:], packed)
}

// bc1Weights maps a four-color index to its weight toward c1.
var bc1Weights = [4]float64{0, 1, 1.0 / 3, 2.0 / 3}

type colorFit struct {
	c0, c1  uint16
	indices [16]uint8
	err     float64
}

func fitColor(pts *[16][4]float64, e0, e1 [4]float64) colorFit {
	f := colorFit{c0: pack565(e0), c1: pack565(e1)}
	if f.c0 < f.c1 {
		f.c0, f.c1 = f.c1, f.c0
	}

	var pal [4][3]float64
	pal[0] = unpack565(f.c0)
	pal[1] = unpack565(f.c1)
	if f.c0 == f.c1 {
		// Three-color mode would decode index 3 as black, so only index 0
		// is used.
		for i := range pts {
			f.err += dist3(pts[i], pal[0])
		}
		return f
	}
	for c := 0; c < 3; c++ {
		pal[2][c] = math.Floor((2*pal[0][c] + pal[1][c]) / 3)
		pal[3][c] = math.Floor((pal[0][c] + 2*pal[1][c]) / 3)
	}
	for i := range pts {
		bestIdx, bestErr := 0, math.Inf(1)
		for j := range pal {
			if d := dist3(pts[i], pal[j]); d < bestErr {
				bestIdx, bestErr = j, d
			}
		}
		f.indices[i] = uint8(bestIdx)
		f.err += bestErr
	}
	return f
}

func dist3(p [4]float64, q [3]float64) float64 {
	return sq(p[0]-q[0]) + sq(p[1]-q[1]) + sq(p[2]-q[2])
}

func pack565(c [4]float64) uint16 {
	r := clampRound(c[0]*31/255, 0, 31)
	g := clampRound(c[1]*63/255, 0, 63)
	b := clampRound(c[2]*31/255, 0, 31)
	return uint16(r<<11 | g<<5 | b)
}

// unpack565 expands a 565 color with bit replication.
func unpack565(v uint16) [3]float64 {
	r := uint32(v>>11) & 0x1F
	g := uint32(v>>5) & 0x3F
	b := uint32(v) & 0x1F
	return [3]float64{
		float64(r<<3 | r>>2),
		float64(g<<2 | g>>4),
		float64(b<<3 | b>>2),
	}
}
