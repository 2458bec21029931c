package encoder

import (
	"math"

	"github.com/kikuuuty/ddsconv/internal/profile"
	"github.com/kikuuuty/ddsconv/internal/surface"
)

// bc6hEncoder writes unsigned BC6H blocks in mode 11: one region, 10-bit
// untransformed endpoints and 4-bit indices. Input is RGBA16F; alpha is
// dropped.
type bc6hEncoder struct {
	p profile.BC6H
}

func (e *bc6hEncoder) Target() Target { return BC6H }

func (e *bc6hEncoder) Encode(src surface.Descriptor, dst []byte) {
	var pts [16][4]float64
	forEachBlock(src, dst, 16, func(x, y int, out []byte) {
		loadHalf(src, x, y, &pts)
		e.encodeBlock(&pts, out)
	})
}

type mode11Fit struct {
	q       [2][3]int
	indices [16]uint8
	err     float64
}

func (e *bc6hEncoder) encodeBlock(pts *[16][4]float64, out []byte) {
	mean, axis := principalAxis(pts, 3)

	tries := max(e.p.FastSkipThreshold, 1)
	best := mode11Fit{err: math.Inf(1)}
	for k := 0; k < tries; k++ {
		e0, e1 := extremes(pts, 3, mean, axis, float64(k)/float64(4*tries))
		if f := fitMode11(pts, e0, e1); f.err < best.err {
			best = f
		}
		if e.p.FastMode && best.err == 0 {
			break
		}
	}
	if e.p.SlowMode {
		lo, hi := boundingBox(pts, 3)
		if f := fitMode11(pts, lo, hi); f.err < best.err {
			best = f
		}
	}

	for i := 0; i < e.p.RefineIterations && best.err > 0; i++ {
		var w [16]float64
		for j, idx := range best.indices {
			w[j] = float64(interpWeights[idx]) / 64
		}
		n0, n1, ok := refit(pts, 3, &w)
		if !ok {
			break
		}
		cand := fitMode11(pts, n0, n1)
		if cand.err >= best.err {
			if e.p.FastMode {
				break
			}
			continue
		}
		best = cand
	}
	writeMode11(&best, out)
}

// quantize10 maps a half-float bit pattern to the 10-bit endpoint whose
// unquantized and finished value lands closest to it.
func quantize10(h float64) int {
	return clampRound((h-15.5)/31, 0, 1023)
}

func unquantize10(q int) int {
	switch q {
	case 0:
		return 0
	case 1023:
		return 0xFFFF
	}
	return (q<<16 + 0x8000) >> 10
}

// finishUnsigned scales an interpolated value back to half-float bits.
func finishUnsigned(v int) int {
	return (v * 31) >> 6
}

func fitMode11(pts *[16][4]float64, e0, e1 [4]float64) mode11Fit {
	var f mode11Fit
	var u [2][3]int
	for c := 0; c < 3; c++ {
		f.q[0][c] = quantize10(e0[c])
		f.q[1][c] = quantize10(e1[c])
		u[0][c] = unquantize10(f.q[0][c])
		u[1][c] = unquantize10(f.q[1][c])
	}

	var pal [16][3]float64
	for i, w := range interpWeights {
		for c := 0; c < 3; c++ {
			pal[i][c] = float64(finishUnsigned(interp(u[0][c], u[1][c], w)))
		}
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

func writeMode11(f *mode11Fit, out []byte) {
	if f.indices[0] >= 8 {
		f.q[0], f.q[1] = f.q[1], f.q[0]
		for i := range f.indices {
			f.indices[i] = 15 - f.indices[i]
		}
	}

	w := newBitWriter(out[:16])
	w.put(0x03, 5)
	for _, ep := range f.q {
		for c := 0; c < 3; c++ {
			w.put(uint32(ep[c]), 10)
		}
	}
	w.put(uint32(f.indices[0]), 3)
	for _, idx := range f.indices[1:] {
		w.put(uint32(idx), 4)
	}
}
