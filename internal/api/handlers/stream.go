package handlers

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/atelier/console-backend/internal/chatstate"
)

const statePushInterval = 30 * time.Second

// StateSocket pushes a fresh snapshot to the panel UI whenever the store
// revision advances, plus a periodic keepalive snapshot. The socket is
// read-discarding: mutations go through the HTTP operations, not this
// channel.
func StateSocket(store *chatstate.Store) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		changes, cancel := store.Subscribe()
		defer cancel()

		// Drain inbound frames so close/ping control frames are processed;
		// anything else the client sends is ignored.
		readClosed := make(chan struct{})
		go func() {
			defer close(readClosed)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		if err := c.WriteJSON(store.Snapshot()); err != nil {
			return
		}

		keepalive := time.NewTicker(statePushInterval)
		defer keepalive.Stop()

		lastSent := store.Revision()
		for {
			forced := false
			select {
			case <-readClosed:
				return
			case <-changes:
			case <-keepalive.C:
				forced = true
			}

			snap := store.Snapshot()
			if !forced && snap.Revision == lastSent {
				continue
			}
			if err := c.WriteJSON(snap); err != nil {
				logrus.WithError(err).Debug("state socket closed")
				return
			}
			lastSent = snap.Revision
		}
	}
}
