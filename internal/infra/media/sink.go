package media

import (
	"io"
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// Sink consumes rendered stereo samples at a fixed rate.
type Sink interface {
	SampleRate() beep.SampleRate
	Write(samples [][2]float64) error
	Close() error
}

// DiscardSink drops samples. It keeps the pacing of a real output device.
type DiscardSink struct {
	rate beep.SampleRate

	mu      sync.Mutex
	written int
}

// NewDiscardSink creates a sink that drops samples at rate.
func NewDiscardSink(rate beep.SampleRate) *DiscardSink {
	return &DiscardSink{rate: rate}
}

func (s *DiscardSink) SampleRate() beep.SampleRate { return s.rate }

func (s *DiscardSink) Write(samples [][2]float64) error {
	s.mu.Lock()
	s.written += len(samples)
	s.mu.Unlock()
	return nil
}

// Written returns how many samples were consumed.
func (s *DiscardSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

func (s *DiscardSink) Close() error { return nil }

// WAVSink records everything played into a 16-bit stereo WAV file.
type WAVSink struct {
	rate beep.SampleRate
	w    io.WriteSeeker
	enc  *gowav.Encoder

	mu  sync.Mutex
	buf *audio.IntBuffer
}

// NewWAVSink starts a recording into w.
func NewWAVSink(w io.WriteSeeker, rate beep.SampleRate) *WAVSink {
	return &WAVSink{
		rate: rate,
		w:    w,
		enc:  gowav.NewEncoder(w, int(rate), 16, 2, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: int(rate)},
			SourceBitDepth: 16,
		},
	}
}

func (s *WAVSink) SampleRate() beep.SampleRate { return s.rate }

func (s *WAVSink) Write(samples [][2]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.buf.Data[:0]
	for _, smp := range samples {
		data = append(data, toInt16(smp[0]), toInt16(smp[1]))
	}
	s.buf.Data = data
	if err := s.enc.Write(s.buf); err != nil {
		return errors.Wrap(err, "failed to write wav samples")
	}
	return nil
}

// Close finalizes the WAV header. The underlying writer is closed when it is an io.Closer.
func (s *WAVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize wav")
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func toInt16(v float64) int {
	v = math.Max(-1, math.Min(1, v))
	return int(math.Round(v * math.MaxInt16))
}
