// Package ws serves player notifications over WebSocket for browser clients.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/app/notification"
	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/app/session"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed is read-only; any page may watch it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Session is the part of the session manager the feed needs.
type Session interface {
	Snapshot() playback.Snapshot
	GetNotificationManager() *notification.Manager
	Done() <-chan struct{}
}

// Handler returns an HTTP handler that streams notifications as JSON text frames.
// The first frame is always an initial_state notification.
func Handler(s Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			zlog.Warn().Msgf("ws: upgrade failed: remote=%s error=%v", r.RemoteAddr, err)
			return
		}
		defer conn.Close()

		notifManager := s.GetNotificationManager()
		stream := &connStream{conn: conn}

		stream.mu.Lock()
		id, dropped := notifManager.Subscribe(stream)
		defer notifManager.Unsubscribe(id)
		err = stream.write(&playerv1.Notification{
			Type:       playerv1.NotificationTypeInitialState,
			SequenceNo: notifManager.NextSequenceNo(),
			State:      session.ToPlayerState(s.Snapshot()),
		})
		stream.mu.Unlock()
		if err != nil {
			return
		}
		zlog.Info().Msgf("ws: client connected: id=%s remote=%s", id, r.RemoteAddr)

		// Drain incoming messages (ping/pong, close frames) without blocking.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		select {
		case <-closed:
		case <-dropped:
		case <-r.Context().Done():
		case <-s.Done():
		}

		select {
		case <-s.Done():
			stream.mu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"))
			stream.mu.Unlock()
		default:
		}
		zlog.Info().Msgf("ws: client disconnected: id=%s", id)
	})
}

// connStream adapts a websocket connection to notification.Stream.
type connStream struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *connStream) Send(n *playerv1.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(n)
}

func (c *connStream) write(n *playerv1.Notification) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(n)
}
