package media

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/infra/assets"
)

// Fetcher retrieves asset bytes and their content type.
type Fetcher interface {
	Fetch(ctx context.Context, assetPath string) ([]byte, string, error)
}

// Option configures a Backend.
type Option func(*Backend)

// WithSink sets where rendered audio goes. Defaults to a 44.1kHz DiscardSink.
func WithSink(s Sink) Option {
	return func(b *Backend) {
		b.sink = s
	}
}

// WithInterval sets how often the position is reported (default 250ms).
func WithInterval(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithGestureRequired blocks Play until Gesture has been called once.
func WithGestureRequired() Option {
	return func(b *Backend) {
		b.requireGesture = true
	}
}

// Backend plays decoded assets in real time against a Sink.
// It implements playback.Backend and reports through playback.Callbacks.
type Backend struct {
	fetcher        Fetcher
	sink           Sink
	interval       time.Duration
	requireGesture bool

	mu       sync.Mutex
	cb       playback.Callbacks
	volume   float64
	gestured bool
	cur      *stream
	closed   bool
}

type stream struct {
	gen    playback.Generation
	cancel context.CancelFunc
	done   chan struct{}

	// Set once decoded; guarded by Backend.mu.
	src     beep.StreamSeekCloser
	format  beep.Format
	ctrl    *beep.Ctrl
	vol     *effects.Volume
	out     beep.Streamer
	playing bool
	ended   bool
}

// NewBackend creates a backend fetching assets through f.
func NewBackend(f Fetcher, opts ...Option) *Backend {
	b := &Backend{
		fetcher:  f,
		interval: 250 * time.Millisecond,
		volume:   1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.sink == nil {
		b.sink = NewDiscardSink(44100)
	}
	return b
}

// Attach sets the callbacks. Call it before the first Load.
func (b *Backend) Attach(cb playback.Callbacks) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cb = cb
}

// Gesture records a user interaction, lifting the gesture requirement.
func (b *Backend) Gesture() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gestured = true
}

// Load drops the current stream and starts fetching assetPath for gen.
func (b *Backend) Load(gen playback.Generation, assetPath string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.dropLocked()

	ctx, cancel := context.WithCancel(context.Background())
	s := &stream{gen: gen, cancel: cancel, done: make(chan struct{})}
	b.cur = s
	b.mu.Unlock()

	go b.run(ctx, s, assetPath)
}

// Play starts rendering the stream of gen.
func (b *Backend) Play(gen playback.Generation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.requireGesture && !b.gestured {
		return playback.ErrPlaybackBlocked
	}
	s := b.cur
	if s == nil || s.gen != gen || s.src == nil {
		return errors.Newf("no decoded stream for generation %d", gen)
	}
	s.playing = true
	s.ctrl.Paused = false
	return nil
}

// Pause stops rendering the stream of gen. The sink keeps receiving silence.
func (b *Backend) Pause(gen playback.Generation) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s := b.cur; s != nil && s.gen == gen && s.src != nil {
		s.playing = false
		s.ctrl.Paused = true
	}
}

// Seek moves the stream of gen to position.
func (b *Backend) Seek(gen playback.Generation, position time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.cur
	if s == nil || s.gen != gen || s.src == nil {
		return
	}
	n := s.format.SampleRate.N(position)
	if n > s.src.Len() {
		n = s.src.Len()
	}
	if n < 0 {
		n = 0
	}
	if err := s.src.Seek(n); err != nil {
		zlog.Warn().Msgf("media: seek failed: generation=%d position=%v error=%v", gen, position, err)
		return
	}
	s.ended = false
}

// SetVolume sets the output gain in [0, 1].
func (b *Backend) SetVolume(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.volume = v
	if s := b.cur; s != nil && s.vol != nil {
		applyVolume(s.vol, v)
	}
}

// Close stops playback and closes the sink.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	s := b.cur
	b.dropLocked()
	b.mu.Unlock()

	if s != nil {
		<-s.done
	}
	return b.sink.Close()
}

// dropLocked cancels the current stream. The stream goroutine closes the decoder.
func (b *Backend) dropLocked() {
	if b.cur != nil {
		b.cur.cancel()
		b.cur = nil
	}
}

func (b *Backend) callbacks() playback.Callbacks {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cb
}

// run fetches, decodes and then paces one stream until it is dropped.
func (b *Backend) run(ctx context.Context, s *stream, assetPath string) {
	defer close(s.done)

	cb := b.callbacks()
	if cb == nil {
		zlog.Error().Msg("media: no callbacks attached")
		return
	}

	data, contentType, err := b.fetcher.Fetch(ctx, assetPath)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		zlog.Warn().Msgf("media: fetch failed: generation=%d path=%s error=%v", s.gen, assetPath, err)
		cb.OnError(s.gen, classify(err))
		return
	}

	format, err := DetectFormat(contentType, assetPath)
	var src beep.StreamSeekCloser
	var f beep.Format
	if err == nil {
		src, f, err = decode(format, data)
	}
	if err != nil {
		zlog.Warn().Msgf("media: decode failed: generation=%d path=%s error=%v", s.gen, assetPath, err)
		cb.OnError(s.gen, playback.ErrorDecode)
		return
	}
	defer src.Close()

	b.mu.Lock()
	if b.cur != s {
		b.mu.Unlock()
		return
	}
	s.src = src
	s.format = f
	s.ctrl = &beep.Ctrl{Streamer: src, Paused: true}
	s.vol = &effects.Volume{Streamer: s.ctrl, Base: 2}
	applyVolume(s.vol, b.volume)
	s.out = s.vol
	if rate := b.sink.SampleRate(); rate != f.SampleRate {
		s.out = beep.Resample(4, f.SampleRate, rate, s.vol)
	}
	duration := f.SampleRate.D(src.Len())
	b.mu.Unlock()

	zlog.Debug().Msgf("media: decoded: generation=%d path=%s format=%s duration=%v", s.gen, assetPath, format, duration)
	cb.OnMetadataLoaded(s.gen, duration)

	b.pump(ctx, s, cb)
}

// pump feeds the sink in real time and reports position and end of stream.
func (b *Backend) pump(ctx context.Context, s *stream, cb playback.Callbacks) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	rate := b.sink.SampleRate()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n := rate.N(now.Sub(last))
			last = now
			if n <= 0 {
				continue
			}
			buf := make([][2]float64, n)

			b.mu.Lock()
			if b.cur != s {
				b.mu.Unlock()
				return
			}
			playing := s.playing
			if !playing || s.ended {
				// Silence keeps the sink clocked while paused.
				b.mu.Unlock()
				_ = b.sink.Write(buf)
				continue
			}
			got, _ := s.out.Stream(buf)
			position := s.format.SampleRate.D(s.src.Position())
			ended := s.src.Position() >= s.src.Len()
			if ended {
				s.ended = true
				s.playing = false
				s.ctrl.Paused = true
			}
			b.mu.Unlock()

			if err := b.sink.Write(buf[:got]); err != nil {
				zlog.Warn().Err(err).Msg("media: sink write failed")
			}
			if ended {
				cb.OnEnded(s.gen)
				continue
			}
			cb.OnTimeUpdate(s.gen, position)
		}
	}
}

func classify(err error) playback.ErrorCode {
	if errors.Is(err, assets.ErrAssetNotFound) {
		return playback.ErrorAssetNotFound
	}
	if errors.Is(err, assets.ErrNotAudio) || errors.Is(err, assets.ErrEmptyAsset) || errors.Is(err, assets.ErrAssetTooLarge) {
		return playback.ErrorDecode
	}
	// Unreachable hosts and transport failures mean the asset could not be found.
	return playback.ErrorAssetNotFound
}

func applyVolume(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(level)
}
