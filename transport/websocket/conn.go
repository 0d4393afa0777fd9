package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/matchbridge/match"
	"github.com/wricardo/matchbridge/match/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// ErrConnClosed is returned by Send after the connection has shut down.
var ErrConnClosed = errors.New("websocket connection closed")

// Conn is a client-side WebSocket link to a match server. Writes are
// serialized through a buffered channel and a single write pump, so callers
// may send from any goroutine; message order is preserved.
type Conn struct {
	conn *websocket.Conn
	send chan match.Outbound
	ev   session.Events

	done     chan struct{}
	doneOnce sync.Once
}

// Dial opens a WebSocket connection to wsURL. It satisfies session.Dialer
// and returns once the connection is established or with the error that
// prevented it. The supplied event callbacks fire on close and on
// transport-level errors.
func Dial(ctx context.Context, wsURL string, ev session.Events) (session.Transport, error) {
	wsConn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		conn: wsConn,
		send: make(chan match.Outbound, 256),
		ev:   ev,
		done: make(chan struct{}),
	}

	go c.writePump()
	go c.readPump()

	return c, nil
}

// Send queues a message for delivery. It fails only once the connection has
// shut down.
func (c *Conn) Send(msg match.Outbound) error {
	select {
	case <-c.done:
		return ErrConnClosed
	case c.send <- msg:
		return nil
	}
}

// Close shuts the connection down. Safe to call multiple times.
func (c *Conn) Close() error {
	c.doneOnce.Do(func() {
		close(c.done)
	})
	return c.conn.Close()
}

// writePump pumps queued messages to the WebSocket connection and keeps the
// link alive with periodic pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		// Shut the whole connection down so pending Send calls fail instead
		// of blocking on a pump that is gone.
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.reportError(err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection. Malformed inbound
// payloads are ignored; well-formed responses are parsed but not dispatched
// anywhere yet (reserved for future use). When the read loop ends the close
// callback fires exactly once.
func (c *Conn) readPump() {
	defer func() {
		c.Close()
		if c.ev.OnClose != nil {
			c.ev.OnClose()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				select {
				case <-c.done:
					// Expected after a local Close.
				default:
					c.reportError(err)
				}
			}
			return
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(data, &payload); err != nil {
			// Non-object or malformed payload; ignore.
			continue
		}
		_ = payload
	}
}

func (c *Conn) reportError(err error) {
	if c.ev.OnError != nil {
		c.ev.OnError(err)
	} else {
		log.Printf("WebSocket error: %v", err)
	}
}
