// Package fuzz implements the distortion core of the fuzz chain.
//
// The signal path per block is
//
//	gate -> upsample -> tightness HPF -> drive -> slew LPF -> clip -> sag -> downsample -> tone
//
// ProcessSample holds the per-sample waveshaper and works on an explicit
// ChannelState, Tone holds the base-rate tone, presence and DC stages, and
// Engine owns all mutable state and sequences the stages.
//
// Engine is not safe for concurrent use. Setters may be called between
// Process calls from the processing goroutine; they clamp their inputs and
// never allocate.
package fuzz
