// Package audio plays the engine output on the default sound device.
package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-pikocore/debug"
)

// Renderer fills buf with unsigned 8-bit mono samples.
type Renderer interface {
	Render(buf []byte)
}

// Stream adapts a Renderer to an io.Reader and counts what it produced.
type Stream struct {
	src    atomic.Pointer[Renderer]
	frames atomic.Uint64
}

// NewStream returns a stream reading from r. A nil renderer reads silence.
func NewStream(r Renderer) *Stream {
	s := &Stream{}
	s.Set(r)
	return s
}

// Set swaps the renderer; safe while the device is reading.
func (s *Stream) Set(r Renderer) {
	if r == nil {
		s.src.Store(nil)
		return
	}
	s.src.Store(&r)
}

func (s *Stream) Read(p []byte) (int, error) {
	if r := s.src.Load(); r != nil {
		(*r).Render(p)
	} else {
		for i := range p {
			p[i] = 128
		}
	}
	s.frames.Add(uint64(len(p)))
	return len(p), nil
}

// Frames returns how many samples have been read.
func (s *Stream) Frames() uint64 { return s.frames.Load() }

// Player owns the oto context and the player reading the stream.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	stream  *Stream
	started bool
	mu      sync.Mutex
}

// NewPlayer opens the sound device at sampleRate. bufferSize trades
// latency for dropouts; zero lets oto choose.
func NewPlayer(sampleRate int, bufferSize time.Duration, r Renderer) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{ctx: ctx, stream: NewStream(r)}
	p.player = ctx.NewPlayer(p.stream)
	debug.Log("audio", "device open rate=%d buffer=%s", sampleRate, bufferSize)
	return p, nil
}

// Stream returns the stream feeding the device.
func (p *Player) Stream() *Stream { return p.stream }

func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = false
	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}

// RunHeadless renders in real time without a sound device, for machines
// without audio or for driving the instrument from MIDI only. It blocks
// until ctx is cancelled.
func RunHeadless(ctx context.Context, s *Stream, sampleRate int, period time.Duration) {
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	start := time.Now()
	buf := make([]byte, sampleRate/10+1)
	var done uint64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			want := uint64(now.Sub(start).Seconds() * float64(sampleRate))
			for done < want {
				n := min(uint64(len(buf)), want-done)
				s.Read(buf[:n])
				done += n
			}
		}
	}
}
