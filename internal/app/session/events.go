package session

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/infra/store"
)

// History outcomes.
const (
	OutcomeEnded   = "ended"
	OutcomeErrored = "errored"
	OutcomeSkipped = "skipped"
)

const storeTimeout = 2 * time.Second

// forwardEvents drains controller events until the controller is closed.
func (m *Manager) forwardEvents() {
	defer close(m.forwarded)

	var prev playback.Snapshot
	for ev := range m.controller.Events() {
		m.handleEvent(ev, prev)
		prev = ev.Snapshot
	}
}

func (m *Manager) handleEvent(ev playback.Event, prev playback.Snapshot) {
	s := ev.Snapshot

	switch ev.Type {
	case playback.EventTrackChanged:
		if prev.Generation != 0 && (prev.Status == playback.StatusPlaying || prev.Status == playback.StatusPaused) {
			m.recordHistory(prev, OutcomeSkipped)
		}
		m.savePreferences(s)
	case playback.EventMetadataLoaded:
		m.disarmWatchdog(s.Generation)
	case playback.EventErrored:
		m.disarmWatchdog(s.Generation)
		m.recordHistory(s, OutcomeErrored)
	case playback.EventEnded:
		m.recordHistory(s, OutcomeEnded)
	case playback.EventVolumeChanged, playback.EventRepeatChanged:
		m.savePreferences(s)
	}

	if ev.Type != playback.EventPositionChanged {
		zlog.Debug().Msgf("session: event: type=%s index=%d status=%s generation=%d", ev.Type, s.Index, s.Status, s.Generation)
	}

	m.notification.Broadcast(&playerv1.Notification{
		Type:  playerv1.NotificationType(ev.Type.String()),
		State: ToPlayerState(s),
	})
}

// armWatchdog fails the load of s with a load timeout unless metadata arrives
// first. It runs on the loop goroutine for every load.
func (m *Manager) armWatchdog(s playback.Snapshot) {
	gen := s.Generation
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watchdog != nil {
		m.watchdog.Stop()
		m.watchdog = nil
	}
	if m.loadTimeout <= 0 || m.closed {
		return
	}

	m.watchdogGen = gen
	m.watchdog = time.AfterFunc(m.loadTimeout, func() {
		m.loop.Post(func(c *playback.Controller) {
			s := c.Snapshot()
			if s.Generation != gen || s.Status != playback.StatusLoading || s.DurationKnown {
				return
			}
			zlog.Warn().Msgf("session: load timed out: index=%d id=%s timeout=%s", s.Index, s.Track.ID, m.loadTimeout)
			c.OnError(gen, playback.ErrorLoadTimeout)
		})
	})
}

// disarmWatchdog stops the watchdog if it still guards gen. Events arrive after
// the loop may have armed a newer load.
func (m *Manager) disarmWatchdog(gen playback.Generation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watchdog != nil && m.watchdogGen == gen {
		m.watchdog.Stop()
		m.watchdog = nil
	}
}

func (m *Manager) savePreferences(s playback.Snapshot) {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	err := m.store.SavePreferences(ctx, store.Preferences{
		Volume:      s.Volume,
		Repeat:      s.Repeat.String(),
		LastIndex:   s.Index,
		LastTrackID: s.Track.ID,
	})
	if err != nil {
		zlog.Warn().Msgf("session: failed to save preferences: %v", err)
	}
}

func (m *Manager) recordHistory(s playback.Snapshot, outcome string) {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	_, err := m.store.AppendHistory(ctx, store.HistoryEntry{
		TrackID:  s.Track.ID,
		Title:    s.Track.DisplayTitle(),
		Outcome:  outcome,
		Position: s.Position,
	})
	if err != nil {
		zlog.Warn().Msgf("session: failed to record history: id=%s error=%v", s.Track.ID, err)
	}
}
