// Package tpt provides first-order topology-preserving-transform filters.
//
// The TPT (zero-delay-feedback) one-pole keeps its response well-behaved
// under per-sample cutoff modulation, which makes it suitable for the
// drive-dependent slew limiter, tightness highpass and tone sweep of the
// fuzz signal chain. [Filter] holds a single state; [Multi] shares one
// coefficient across up to core.MaxChannels channel states.
package tpt
