package playback

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrLoopStopped is returned when a command is submitted after the loop stopped.
var ErrLoopStopped = errors.New("playback loop stopped")

// Loop serializes commands and backend callbacks onto one goroutine.
// Each queued function runs to completion before the next one starts, so the
// controller is never touched concurrently.
type Loop struct {
	ctrl     *Controller
	queue    chan func()
	snapshot atomic.Pointer[Snapshot]
	done     chan struct{}
	started  atomic.Bool

	// Owned by the loop goroutine once Run starts.
	onLoad  func(Snapshot)
	lastGen Generation
}

// NewLoop creates a loop around ctrl. queueSize bounds pending work (default 128).
func NewLoop(ctrl *Controller, queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 128
	}
	l := &Loop{
		ctrl:  ctrl,
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
	l.publish()
	return l
}

// Run processes queued work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.New("playback loop already running")
	}
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
			l.publish()
		}
	}
}

// OnLoad registers fn to run on the loop goroutine after every item that issued
// a new load. Unlike the controller's event channel it never drops a load.
// It must be called before Run.
func (l *Loop) OnLoad(fn func(Snapshot)) {
	l.onLoad = fn
}

// Done is closed once Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Do runs fn on the loop and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(*Controller) error) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	result := make(chan error, 1)
	work := func() {
		err := fn(l.ctrl)
		// Publish before replying so the caller observes its own change.
		l.publish()
		result <- err
	}

	select {
	case l.queue <- work:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The work may have run right before the loop stopped.
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopStopped
		}
	}
}

// Post queues fn without waiting for it to run. It reports false when the loop has stopped.
func (l *Loop) Post(fn func(*Controller)) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.queue <- func() { fn(l.ctrl) }:
		return true
	case <-l.done:
		return false
	}
}

// Snapshot returns the state published after the last processed item.
// Safe to call from any goroutine.
func (l *Loop) Snapshot() Snapshot {
	return *l.snapshot.Load()
}

// Callbacks returns a Callbacks implementation that posts into the loop.
// Media backends call it from their own goroutines.
func (l *Loop) Callbacks() Callbacks {
	return loopCallbacks{loop: l}
}

func (l *Loop) publish() {
	s := l.ctrl.Snapshot()
	l.snapshot.Store(&s)

	if s.Generation != l.lastGen {
		l.lastGen = s.Generation
		if l.onLoad != nil {
			l.onLoad(s)
		}
	}
}

type loopCallbacks struct {
	loop *Loop
}

func (cb loopCallbacks) OnMetadataLoaded(gen Generation, duration time.Duration) {
	cb.loop.Post(func(c *Controller) { c.OnMetadataLoaded(gen, duration) })
}

func (cb loopCallbacks) OnTimeUpdate(gen Generation, position time.Duration) {
	cb.loop.Post(func(c *Controller) { c.OnTimeUpdate(gen, position) })
}

func (cb loopCallbacks) OnEnded(gen Generation) {
	cb.loop.Post(func(c *Controller) { c.OnEnded(gen) })
}

func (cb loopCallbacks) OnError(gen Generation, code ErrorCode) {
	cb.loop.Post(func(c *Controller) { c.OnError(gen, code) })
}
