// Package audioout plays planar float64 audio through the system output
// using oto.
package audioout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const bytesPerSample = 4

// Source renders the next block of audio into buf, one slice per channel.
type Source interface {
	Render(buf [][]float64)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(buf [][]float64)

// Render calls f.
func (f SourceFunc) Render(buf [][]float64) { f(buf) }

// Stream is an io.Reader producing interleaved 32-bit float little-endian
// frames rendered block by block from a Source. Frames may be called from
// any goroutine.
type Stream struct {
	src      Source
	channels int
	block    [][]float64
	pending  []byte
	encoded  []byte
	rendered atomic.Int64
}

// NewStream creates a stream rendering blockSize frames at a time.
func NewStream(src Source, channels, blockSize int) (*Stream, error) {
	if src == nil {
		return nil, errors.New("audioout: nil source")
	}
	if channels < 1 || blockSize < 1 {
		return nil, fmt.Errorf("audioout: invalid layout: %d channels, %d frames", channels, blockSize)
	}

	block := make([][]float64, channels)
	for ch := range block {
		block[ch] = make([]float64, blockSize)
	}

	return &Stream{
		src:      src,
		channels: channels,
		block:    block,
		encoded:  make([]byte, channels*blockSize*bytesPerSample),
	}, nil
}

// Read fills p with whole samples, rendering new blocks as needed.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n+bytesPerSample <= len(p) {
		if len(s.pending) == 0 {
			s.render()
		}
		c := copy(p[n:], s.pending)
		c -= c % bytesPerSample
		s.pending = s.pending[c:]
		n += c
	}
	return n, nil
}

// Frames returns the number of frames rendered so far.
func (s *Stream) Frames() int64 { return s.rendered.Load() }

func (s *Stream) render() {
	for ch := range s.block {
		clear(s.block[ch])
	}
	s.src.Render(s.block)
	Encode(s.encoded, s.block)
	s.pending = s.encoded
	s.rendered.Add(int64(len(s.block[0])))
}

// Encode interleaves buf into dst as 32-bit float little-endian samples,
// clamped to [-1, 1]. dst must hold channels*frames*4 bytes.
func Encode(dst []byte, buf [][]float64) {
	channels := len(buf)
	for ch, samples := range buf {
		for i, x := range samples {
			v := float32(min(max(x, -1), 1))
			if math.IsNaN(x) {
				v = 0
			}
			off := (i*channels + ch) * bytesPerSample
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
		}
	}
}

// Player plays a Stream on the default output device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	stream *Stream

	mu     sync.Mutex
	closed bool
}

// NewPlayer opens the output device and prepares playback of src.
// Only one Player may exist per process.
func NewPlayer(src Source, sampleRate, channels, blockSize int) (*Player, error) {
	stream, err := NewStream(src, channels, blockSize)
	if err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audioout: %w", err)
	}
	<-ready

	return &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(stream),
		stream: stream,
	}, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.player.Play()
	}
}

// Frames returns the number of frames rendered so far.
func (p *Player) Frames() int64 { return p.stream.Frames() }

// Close stops playback.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.player.Pause()
	return p.player.Close()
}
