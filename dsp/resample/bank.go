package resample

import "fmt"

// Factors lists the oversampling factors held by a Bank, indexed by the
// oversampling selector.
var Factors = [...]int{2, 4, 8}

// Bank holds one pre-built Oversampler per entry of Factors and exposes
// the active one.
type Bank struct {
	entries [len(Factors)]*Oversampler
	active  int
}

// NewBank builds all oversamplers up front. The first factor is active.
func NewBank(channels, maxBlock int, opts ...Option) (*Bank, error) {
	b := &Bank{}
	for i := range b.entries {
		o, err := NewOversampler(i+1, channels, maxBlock, opts...)
		if err != nil {
			return nil, fmt.Errorf("resample: factor %d: %w", Factors[i], err)
		}
		b.entries[i] = o
	}

	return b, nil
}

// ClampIndex limits index to the valid selector range.
func ClampIndex(index int) int {
	return max(0, min(index, len(Factors)-1))
}

// Select activates the oversampler at index (clamped). When the index
// changes, the previously active oversampler's filter memory is cleared.
// It reports whether the active index changed.
func (b *Bank) Select(index int) bool {
	index = ClampIndex(index)
	if index == b.active {
		return false
	}

	b.entries[b.active].Reset()
	b.active = index

	return true
}

// Index returns the active selector index.
func (b *Bank) Index() int { return b.active }

// Active returns the active oversampler.
func (b *Bank) Active() *Oversampler { return b.entries[b.active] }

// At returns the oversampler for a selector index (clamped).
func (b *Bank) At(index int) *Oversampler { return b.entries[ClampIndex(index)] }

// Factor returns the active oversampling factor.
func (b *Bank) Factor() int { return b.Active().Factor() }

// Latency returns the active oversampler's latency in base-rate samples.
func (b *Bank) Latency() float64 { return b.Active().Latency() }

// Up oversamples in with the active oversampler.
func (b *Bank) Up(in [][]float64) [][]float64 { return b.Active().Up(in) }

// Down decimates into out with the active oversampler.
func (b *Bank) Down(out [][]float64) { b.Active().Down(out) }

// Reset clears the filter memory of every oversampler.
func (b *Bank) Reset() {
	for _, o := range b.entries {
		o.Reset()
	}
}
