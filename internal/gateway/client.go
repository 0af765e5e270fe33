package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/atelier/console-backend/internal/chatstate"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// TurnRecorder receives finalized turns for durable storage. The archive
// implements it; a nil recorder disables recording.
type TurnRecorder interface {
	RecordFinal(ctx context.Context, sessionKey string, msg chatstate.Message) error
}

// Client is the transport collaborator: it holds the websocket link to the
// agent gateway, pumps inbound frames into the store, and mirrors the link
// state through the store's ConnectionStatus. Retry and backoff live here,
// never in the store.
type Client struct {
	url      string
	store    *chatstate.Store
	recorder TurnRecorder
	log      *logrus.Entry

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a gateway client. recorder may be nil.
func New(url string, store *chatstate.Store, recorder TurnRecorder) *Client {
	return &Client{
		url:      url,
		store:    store,
		recorder: recorder,
		log:      logrus.WithField("component", "gateway"),
	}
}

// Run dials the gateway and keeps the link alive until ctx is cancelled,
// reconnecting with capped exponential backoff. It blocks; run it in its
// own goroutine.
func (c *Client) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if err := c.connectAndPump(ctx); err != nil {
			if ctx.Err() != nil {
				c.store.Apply(chatstate.ConnectionChanged{Status: chatstate.Status{}})
				return
			}
			c.log.WithError(err).Warn("gateway link lost")
			c.store.Apply(chatstate.ConnectionChanged{Status: chatstate.Status{Error: err.Error()}})
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (c *Client) connectAndPump(ctx context.Context) error {
	c.store.Apply(chatstate.ConnectionChanged{Status: chatstate.Status{Connecting: true}})

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	c.store.Apply(chatstate.ConnectionChanged{Status: chatstate.Status{Connected: true}})
	c.log.Info("gateway connected")

	// Close the socket when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		c.dispatch(ctx, data)
	}
}

// dispatch decodes one frame and applies it. Decode failures are dropped;
// a bad frame must never take down the read loop.
func (c *Client) dispatch(ctx context.Context, data []byte) {
	ev, err := DecodeFrame(data)
	if err != nil {
		if errors.Is(err, ErrUnknownFrame) {
			c.log.WithError(err).Debug("dropping frame")
		} else {
			c.log.WithError(err).Warn("dropping malformed frame")
		}
		return
	}

	c.store.Apply(ev)

	if fin, ok := ev.(chatstate.Finalized); ok && c.recorder != nil {
		key := fin.SessionKey
		if key == "" {
			key = c.store.ActiveKey()
		}
		if msg, ok := c.store.Message(key, fin.ID); ok {
			if err := c.recorder.RecordFinal(ctx, key, msg); err != nil {
				c.log.WithError(err).Warn("archive write failed")
			}
		}
	}
}

// Send posts a user turn to the gateway for the given session. The mutex
// serializes writers; the read loop is the only reader and needs no lock.
func (c *Client) Send(sessionKey, content string) error {
	data, err := encodeSend(sessionKey, content)
	if err != nil {
		return fmt.Errorf("gateway: encode send: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("gateway: not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("gateway: write: %w", err)
	}
	return nil
}
