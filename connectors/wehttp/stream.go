package wehttp

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-store-go/we"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// stream forwards snapshots published by a store to a websocket client.
// Notification never blocks on the network: a client that falls more than the
// buffer behind is disconnected.
type stream[S any] struct {
	conn    *websocket.Conn
	encoder SnapshotEncoder[S]
	updates chan we.Snapshot[S]

	done     chan struct{}
	once     sync.Once
	overflow atomic.Bool
}

func newStream[S any](conn *websocket.Conn, encoder SnapshotEncoder[S], buffer int) *stream[S] {
	if buffer < 1 {
		buffer = 1
	}

	return &stream[S]{
		conn:    conn,
		encoder: encoder,
		updates: make(chan we.Snapshot[S], buffer),
		done:    make(chan struct{}),
	}
}

func (s *stream[S]) offer(snapshot we.Snapshot[S]) {
	select {
	case s.updates <- snapshot:
	default:
		s.overflow.Store(true)
		s.stop()
	}
}

func (s *stream[S]) stop() {
	s.once.Do(func() { close(s.done) })
}

// discard reads and drops client messages so that control frames are
// processed and a closed connection is noticed.
func (s *stream[S]) discard() {
	defer s.stop()
	for {
		if _, _, err := s.conn.NextReader(); err != nil {
			return
		}
	}
}

func (s *stream[S]) run() error {
	for {
		select {
		case <-s.done:
			if s.overflow.Load() {
				message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "subscriber too slow")
				_ = s.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
			}
			return nil

		case snapshot := <-s.updates:
			resource, err := s.encoder.Resource(snapshot)
			if err != nil {
				return err
			}

			encoded, err := json.Marshal(resource)
			if err != nil {
				return errors.Wrap(err, "failed to marshal snapshot")
			}

			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, encoded); err != nil {
				return errors.Wrap(err, "failed to write snapshot")
			}
		}
	}
}

func (service *httpService[S]) subscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			service.log.Info().Err(err).Msg("failed to upgrade subscription")
			return
		}
		defer conn.Close()

		client := newStream(conn, service.encoder, service.buffer)
		subscription := service.store.SubscribeSnapshots(client.offer)
		defer subscription.Unsubscribe()

		go client.discard()

		if err := client.run(); err != nil {
			service.log.Info().Err(err).Msg("subscription terminated")
		}
	}
}
