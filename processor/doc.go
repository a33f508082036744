// Package processor wraps the fuzz engine into a host-facing block
// pipeline.
//
// A Processor reads its control values from a Params set at the start of
// every block, applies smoothed input gain, captures the dry signal, runs
// the fuzz engine, blends dry and wet with the dry path delayed by the
// engine latency, applies smoothed output gain and finally a brickwall
// limiter at 0 dBFS. Processing before Prepare emits silence.
//
// Params may be written from any goroutine. Prepare, Release, Reset and
// Process must be serialized by the caller.
package processor
