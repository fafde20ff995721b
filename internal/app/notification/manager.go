// Package notification provides the notification manager for broadcasting player events.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
)

// DefaultSendTimeout bounds how long a single subscriber may block a broadcast.
const DefaultSendTimeout = 500 * time.Millisecond

// Stream represents a notification stream for a subscriber.
type Stream interface {
	Send(*playerv1.Notification) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id     string
	stream Stream
	failed chan struct{} // closed when the subscription is dropped
	once   sync.Once
}

func (s *subscription) drop() {
	s.once.Do(func() { close(s.failed) })
}

// Manager manages notification subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	sendTimeout   time.Duration
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		sendTimeout:   DefaultSendTimeout,
	}
}

// Subscribe adds a new subscription and returns its ID and a channel closed
// when the manager drops it after a failed or timed-out send.
func (m *Manager) Subscribe(stream Stream) (string, <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	sub := &subscription{
		id:     id,
		stream: stream,
		failed: make(chan struct{}),
	}
	m.subscriptions[id] = sub
	zlog.Debug().Msgf("notification: subscribed: id=%s total=%d", id, len(m.subscriptions))
	return id, sub.failed
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subscriptions[subscriptionID]; ok {
		sub.drop()
		delete(m.subscriptions, subscriptionID)
	}
}

// Broadcast stamps the notification with the next sequence number and sends it
// to all subscribers in parallel. Subscribers that fail or time out are dropped.
func (m *Manager) Broadcast(notification *playerv1.Notification) {
	notification.SequenceNo = m.NextSequenceNo()

	m.mu.RLock()
	// Copy subscriptions to avoid holding lock during sends
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.stream.Send(notification)
			}()

			select {
			case err := <-done:
				if err != nil {
					zlog.Debug().Msgf("notification: send failed, dropping: id=%s error=%v", s.id, err)
					m.Unsubscribe(s.id)
				}
			case <-ctx.Done():
				zlog.Debug().Msgf("notification: send timed out, dropping: id=%s", s.id)
				m.Unsubscribe(s.id)
			}
		}(sub)
	}

	wg.Wait()
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subscriptions {
		sub.drop()
	}
	m.subscriptions = make(map[string]*subscription)
}
