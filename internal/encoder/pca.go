package encoder

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// principalAxis returns the mean of the first dims channels of pts and the
// unit direction of greatest variance. The axis is zero for flat blocks.
func principalAxis(pts *[16][4]float64, dims int) (mean, axis [4]float64) {
	for i := range pts {
		for c := 0; c < dims; c++ {
			mean[c] += pts[i][c]
		}
	}
	for c := 0; c < dims; c++ {
		mean[c] /= 16
	}

	cov := mat.NewSymDense(dims, nil)
	for a := 0; a < dims; a++ {
		for b := a; b < dims; b++ {
			var s float64
			for i := range pts {
				s += (pts[i][a] - mean[a]) * (pts[i][b] - mean[b])
			}
			cov.SetSym(a, b, s/16)
		}
	}

	var es mat.EigenSym
	if !es.Factorize(cov, true) {
		return mean, axis
	}
	vals := es.Values(nil)
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	if vals[best] < 1e-9 {
		return mean, axis
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	for c := 0; c < dims; c++ {
		axis[c] = vecs.At(c, best)
	}
	return mean, axis
}

// extremes projects pts onto the line through mean along axis and returns
// the two outermost points on that line. The inset fraction pulls both ends
// toward the middle.
func extremes(pts *[16][4]float64, dims int, mean, axis [4]float64, inset float64) (e0, e1 [4]float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range pts {
		var t float64
		for c := 0; c < dims; c++ {
			t += (pts[i][c] - mean[c]) * axis[c]
		}
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	if math.IsInf(lo, 0) || hi <= lo {
		return mean, mean
	}
	d := (hi - lo) * inset
	lo += d
	hi -= d
	for c := 0; c < dims; c++ {
		e0[c] = mean[c] + lo*axis[c]
		e1[c] = mean[c] + hi*axis[c]
	}
	return e0, e1
}

// boundingBox returns the per-channel minimum and maximum of pts.
func boundingBox(pts *[16][4]float64, dims int) (lo, hi [4]float64) {
	for c := 0; c < dims; c++ {
		lo[c], hi[c] = math.Inf(1), math.Inf(-1)
		for i := range pts {
			lo[c] = math.Min(lo[c], pts[i][c])
			hi[c] = math.Max(hi[c], pts[i][c])
		}
	}
	return lo, hi
}

// refit solves the least-squares endpoints for pts given each point's
// interpolation weight toward e1. It reports false when the weights do not
// determine both endpoints.
func refit(pts *[16][4]float64, dims int, weights *[16]float64) (e0, e1 [4]float64, ok bool) {
	var a, b, cc float64
	var x0, x1 [4]float64
	for i := range pts {
		w := weights[i]
		v := 1 - w
		a += v * v
		b += v * w
		cc += w * w
		for c := 0; c < dims; c++ {
			x0[c] += v * pts[i][c]
			x1[c] += w * pts[i][c]
		}
	}
	det := a*cc - b*b
	if math.Abs(det) < 1e-9 {
		return e0, e1, false
	}
	for c := 0; c < dims; c++ {
		e0[c] = (cc*x0[c] - b*x1[c]) / det
		e1[c] = (a*x1[c] - b*x0[c]) / det
	}
	return e0, e1, true
}
