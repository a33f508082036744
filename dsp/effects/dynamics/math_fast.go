//go:build fastmath

package dynamics

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

const ln2 = 0.693147180559945309417232121458

// mathLog2 computes log2(x) via the identity log2(x) = ln(x) / ln(2).
func mathLog2(x float64) float64 {
	return approx.FastLog(x) / ln2
}

// mathPower2 computes 2^x via the identity 2^x = e^(x * ln(2)).
func mathPower2(x float64) float64 {
	return approx.FastExp(x * ln2)
}

// mathPower10 is evaluated only on parameter changes, so it stays exact.
func mathPower10(x float64) float64 {
	return math.Pow(10, x)
}
