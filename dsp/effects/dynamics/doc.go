// Package dynamics provides the level-dependent stages of the fuzz chain:
// a hysteresis noise gate applied before distortion and a brickwall peak
// limiter applied last.
//
// Both processors work on planar multichannel buffers with linked
// detection: one envelope is derived from the loudest channel and the
// resulting gain is applied to every channel.
//
// Gain computation runs in the log2 domain. Building with the fastmath tag
// swaps the log2/exp2 evaluations for algo-approx polynomial versions.
package dynamics
