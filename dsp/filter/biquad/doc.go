// Package biquad provides second-order IIR filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Sections are cascaded via
// [Chain]; coefficients of a running chain can be swapped per section while
// the delay-line state is kept, which is what block-rate parameter updates
// (shelf gain, corner frequency) rely on.
//
// Coefficient design lives in dsp/filter/design.
package biquad
