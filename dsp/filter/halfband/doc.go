// Package halfband implements polyphase IIR half-band filters for 2x
// sample-rate conversion.
//
// A half-band lowpass is split into two parallel chains of first-order
// allpass sections running at the low rate:
//
//	H(z) = 0.5 * (A0(z^2) + z^-1 * A1(z^2))
//
// Coefficients come from the elliptic design used for polyphase Hilbert
// transformers; even-indexed coefficients form A0 and odd-indexed ones A1.
// [Upsampler] produces two output samples per input sample and
// [Downsampler] consumes two input samples per output sample. Both are
// minimum-phase IIR designs, so their delay is fractional and reported by
// GroupDelay.
package halfband
