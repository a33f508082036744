// Package mix provides a latency-compensated dry/wet mixer.
//
// The dry signal is captured before a processing stage with [DryWet.PushDry]
// and delayed by the stage's reported latency, so that [DryWet.MixWet] blends
// time-aligned signals. Mix changes are ramped to avoid zipper noise.
package mix
