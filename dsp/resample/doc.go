// Package resample provides multistage polyphase IIR oversampling.
//
// An [Oversampler] cascades 2x half-band stages to reach factors of 2, 4
// or 8. All buffers are allocated at construction time for a maximum block
// size, so Up and Down never allocate. A [Bank] holds one pre-built
// Oversampler per supported factor and switches between them by index,
// clearing the filter memory of the instance that is switched away from.
//
// IIR half-band stages are minimum phase, so the round-trip latency is a
// fractional number of base-rate samples reported by Latency.
package resample
