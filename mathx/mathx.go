package mathx

import (
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/blas/blas32"
)

// ConvertScale は x を [xMin, xMax] から [yMin, yMax] へ線形に写す。
func ConvertScale[X constraints.Float](x, xMin, xMax, yMin, yMax X) X {
	return yMin + (yMax-yMin)*(x-xMin)/(xMax-xMin)
}

func Clamp[X constraints.Ordered](x, lo, hi X) X {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Abs[X constraints.Signed | constraints.Float](x X) X {
	if x < 0 {
		return -x
	}
	return x
}

// Norm2 returns the Euclidean length of (x, y).
func Norm2(x, y float32) float32 {
	v := blas32.Vector{N: 2, Inc: 1, Data: []float32{x, y}}
	return blas32.Nrm2(v)
}
