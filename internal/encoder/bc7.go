package encoder

import (
	"math"

	"github.com/kikuuuty/ddsconv/internal/profile"
	"github.com/kikuuuty/ddsconv/internal/surface"
)

// interpWeights are the 4-bit index weights shared by BC6H and BC7, out of 64.
var interpWeights = [16]int{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}

func interp(e0, e1, w int) int {
	return ((64-w)*e0 + w*e1 + 32) >> 6
}

// bc7Encoder writes every block in mode 6: one subset, RGBA 7.7.7.7 endpoints
// with a p-bit each and 4-bit indices.
type bc7Encoder struct {
	p profile.BC7
}

func (e *bc7Encoder) Target() Target { return BC7 }

func (e *bc7Encoder) Encode(src surface.Descriptor, dst []byte) {
	var blk RGBABlock
	forEachBlock(src, dst, 16, func(x, y int, out []byte) {
		LoadRGBA(src, x, y, &blk)
		e.encodeBlock(&blk, out)
	})
}

type mode6Fit struct {
	q       [2][4]int // 7-bit endpoint values
	pbit    [2]int
	indices [16]uint8
	err     float64
}

func (e *bc7Encoder) encodeBlock(blk *RGBABlock, out []byte) {
	dims := 4
	if e.p.Channels == 3 {
		dims = 3
	}
	var pts [16][4]float64
	for i, p := range blk {
		pts[i] = [4]float64{float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])}
		if dims == 3 {
			pts[i][3] = 255
		}
	}

	mean, axis := principalAxis(&pts, dims)
	e0, e1 := extremes(&pts, dims, mean, axis, 0)
	if dims == 3 {
		e0[3], e1[3] = 255, 255
	}
	best := e.fit(&pts, e0, e1)

	for i := 0; i < e.p.RefineIterations && best.err > 0; i++ {
		var w [16]float64
		for j, idx := range best.indices {
			w[j] = float64(interpWeights[idx]) / 64
		}
		n0, n1, ok := refit(&pts, dims, &w)
		if !ok {
			break
		}
		if dims == 3 {
			n0[3], n1[3] = 255, 255
		}
		cand := e.fit(&pts, n0, n1)
		if cand.err >= best.err {
			break
		}
		best = cand
	}
	writeMode6(&best, out)
}

// fit quantizes the endpoints and assigns indices. With p-bit search every
// p-bit pair is tried; otherwise each endpoint takes the p-bit that
// reproduces it best on its own.
func (e *bc7Encoder) fit(pts *[16][4]float64, e0, e1 [4]float64) mode6Fit {
	if !e.p.PBitSearch {
		return fitMode6(pts, e0, e1, [2]int{nearestPBit(e0), nearestPBit(e1)})
	}
	var best mode6Fit
	best.err = math.Inf(1)
	for p := 0; p < 4; p++ {
		f := fitMode6(pts, e0, e1, [2]int{p & 1, p >> 1})
		if f.err < best.err {
			best = f
		}
	}
	return best
}

func nearestPBit(ep [4]float64) int {
	var errs [2]float64
	for p := 0; p < 2; p++ {
		for c := 0; c < 4; c++ {
			q := quantize7(ep[c], p)
			errs[p] += sq(float64(q<<1|p) - ep[c])
		}
	}
	if errs[1] < errs[0] {
		return 1
	}
	return 0
}

func quantize7(v float64, pbit int) int {
	return clampRound((v-float64(pbit))/2, 0, 127)
}

func fitMode6(pts *[16][4]float64, e0, e1 [4]float64, pbit [2]int) mode6Fit {
	f := mode6Fit{pbit: pbit}
	var ep [2][4]int
	for c := 0; c < 4; c++ {
		f.q[0][c] = quantize7(e0[c], pbit[0])
		f.q[1][c] = quantize7(e1[c], pbit[1])
		ep[0][c] = f.q[0][c]<<1 | pbit[0]
		ep[1][c] = f.q[1][c]<<1 | pbit[1]
	}

	var pal [16][4]float64
	for i, w := range interpWeights {
		for c := 0; c < 4; c++ {
			pal[i][c] = float64(interp(ep[0][c], ep[1][c], w))
		}
	}
	for i := range pts {
		bestIdx, bestErr := 0, math.Inf(1)
		for j := range pal {
			d := sq(pts[i][0]-pal[j][0]) + sq(pts[i][1]-pal[j][1]) +
				sq(pts[i][2]-pal[j][2]) + sq(pts[i][3]-pal[j][3])
			if d < bestErr {
				bestIdx, bestErr = j, d
			}
		}
		f.indices[i] = uint8(bestIdx)
		f.err += bestErr
	}
	return f
}

func writeMode6(f *mode6Fit, out []byte) {
	// The anchor index has an implicit zero high bit.
	if f.indices[0] >= 8 {
		f.q[0], f.q[1] = f.q[1], f.q[0]
		f.pbit[0], f.pbit[1] = f.pbit[1], f.pbit[0]
		for i := range f.indices {
			f.indices[i] = 15 - f.indices[i]
		}
	}

	w := newBitWriter(out[:16])
	w.put(1<<6, 7)
	for c := 0; c < 4; c++ {
		w.put(uint32(f.q[0][c]), 7)
		w.put(uint32(f.q[1][c]), 7)
	}
	w.put(uint32(f.pbit[0]), 1)
	w.put(uint32(f.pbit[1]), 1)
	w.put(uint32(f.indices[0]), 3)
	for _, idx := range f.indices[1:] {
		w.put(uint32(idx), 4)
	}
}
