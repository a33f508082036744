// Package smooth provides linear ramp parameter smoothers.
//
// A [Value] holds a current/target pair and moves the current value towards
// the target in a fixed number of equal steps. The ramp length is expressed
// in seconds and converted to steps with [Value.Reset], which also snaps the
// current value to the target. Smoothers are advanced either once per
// sample ([Value.Next]) or once per block ([Value.Skip]).
package smooth
