package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// ZeroChannels clears every channel of a planar buffer.
func ZeroChannels(buf [][]float64) {
	for _, ch := range buf {
		Zero(ch)
	}
}

// Sanitize replaces NaN and infinite samples in buf with 0 and reports
// whether any were found.
func Sanitize(buf []float64) bool {
	found := false
	for i, x := range buf {
		if !IsFinite(x) {
			buf[i] = 0
			found = true
		}
	}
	return found
}

// SanitizeChannels applies Sanitize to every channel of a planar buffer.
func SanitizeChannels(buf [][]float64) bool {
	found := false
	for _, ch := range buf {
		if Sanitize(ch) {
			found = true
		}
	}
	return found
}

// CopyInto copies src into dst and returns the number of copied elements.
func CopyInto(dst, src []float64) int {
	n := min(len(dst), len(src))
	copy(dst[:n], src[:n])
	return n
}

// NumFrames returns the number of frames every channel of buf can supply,
// i.e. the length of the shortest channel. An empty buffer has zero frames.
func NumFrames(buf [][]float64) int {
	if len(buf) == 0 {
		return 0
	}
	n := len(buf[0])
	for _, ch := range buf[1:] {
		n = min(n, len(ch))
	}
	return n
}

// AllocChannels allocates channels planar slices of n samples each
// backed by a single contiguous array.
func AllocChannels(channels, n int) [][]float64 {
	if channels <= 0 {
		return nil
	}
	backing := make([]float64, channels*n)
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = backing[ch*n : (ch+1)*n : (ch+1)*n]
	}
	return out
}
