// Package design computes biquad coefficients for the filters used by the
// fuzz signal chain: RBJ cookbook shelves and pass filters plus bilinear
// first-order sections for DC blocking.
//
// All designers return [biquad.Coefficients] normalized to a0 = 1.
package design
