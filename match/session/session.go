package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/matchbridge/match"
)

// Event names a session lifecycle notification.
type Event string

const (
	EventConnect Event = "connect"
	EventClose   Event = "close"
	EventError   Event = "error"
)

// Handler receives a lifecycle event. err is non-nil only for EventError.
type Handler func(err error)

// Transport is the outbound streaming link a connected session writes to.
// The production implementation lives in transport/websocket.
type Transport interface {
	Send(msg match.Outbound) error
	Close() error
}

// Events carries the callbacks a dialer must wire into the transport it
// opens: OnClose fires once when the link drops, OnError on transport-level
// errors while the link is open.
type Events struct {
	OnClose func()
	OnError func(err error)
}

// Dialer opens a transport to the given address. It returns once the link is
// open or with the error that prevented it.
type Dialer func(ctx context.Context, wsURL string, ev Events) (Transport, error)

// Session owns the streaming connection for one match. Messages sent before
// the connection is established are queued in FIFO order and flushed — after
// the authentication handshake — once the transport opens. After Disconnect
// the session is terminal and further sends are silently dropped.
type Session struct {
	MatchID   string
	AuthToken string
	WSURL     string

	// Debug enables verbose logging of session activity.
	Debug bool

	dial Dialer

	mu        sync.Mutex
	transport Transport
	connected bool
	closed    bool
	queue     []match.Outbound
	handlers  map[Event][]Handler
	tracked   *match.TrackedState
	flushStop chan struct{}
}

// New creates an idle session for the given match. Connect must be called
// before any message reaches the wire.
func New(matchID, authToken, wsURL string, dial Dialer) *Session {
	return &Session{
		MatchID:   matchID,
		AuthToken: authToken,
		WSURL:     wsURL,
		dial:      dial,
		handlers:  make(map[Event][]Handler),
	}
}

// Connect opens the transport to the session's target address and blocks
// until it is open or fails. On success the authentication message is sent
// first, then the pre-connection queue is flushed in order, then registered
// connect handlers fire.
//
// Connect is not guarded against double invocation: a second call dials a
// fresh transport and replaces the handle. This mirrors the historical
// contract; callers that need stricter behavior must guard themselves.
func (s *Session) Connect(ctx context.Context) error {
	t, err := s.dial(ctx, s.WSURL, Events{
		OnClose: s.handleTransportClose,
		OnError: s.handleTransportError,
	})
	if err != nil {
		return fmt.Errorf("connect match %s: %w", s.MatchID, err)
	}

	s.mu.Lock()
	if s.closed {
		// Disconnected while dialing; release the late transport.
		s.mu.Unlock()
		t.Close()
		return nil
	}
	s.transport = t
	s.connected = true
	queued := s.queue
	s.queue = nil
	s.mu.Unlock()

	// Authentication always precedes queued application messages.
	s.write(t, match.Authenticate(s.AuthToken))
	for _, msg := range queued {
		s.write(t, msg)
	}

	s.debugf("match %s connected to %s (%d queued messages flushed)", s.MatchID, s.WSURL, len(queued))
	s.emit(EventConnect, nil)
	return nil
}

// BeginMatch marks the application-level start of the match stream.
func (s *Session) BeginMatch() {
	s.send(match.InitFrames())
}

// SendStateUpdate streams the given frames verbatim.
func (s *Session) SendStateUpdate(frames []match.StateFrame) {
	s.send(match.SceneFrames(frames))
}

// EndMatch marks the application-level end of the match stream.
func (s *Session) EndMatch() {
	s.send(match.EndFrames())
}

// TrackState stores state by reference and flushes it as a single-frame
// update every interval. Mutations made to the state between ticks appear in
// the next flushed frame. Re-invocation cancels the prior tracker; only one
// tracker is active per session. Disconnect stops the flush loop.
//
// The state is read at each tick; callers that mutate it from another
// goroutine must coordinate with the flush interval themselves.
func (s *Session) TrackState(state *match.TrackedState, interval time.Duration) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.flushStop != nil {
		close(s.flushStop)
	}
	stop := make(chan struct{})
	s.flushStop = stop
	s.tracked = state
	s.mu.Unlock()

	go s.flushLoop(interval, stop)
}

// On registers a handler for connect, close, or error events. Multiple
// handlers per event are allowed and fire in registration order; there is no
// de-duplication and no removal.
func (s *Session) On(event Event, handler Handler) {
	s.mu.Lock()
	s.handlers[event] = append(s.handlers[event], handler)
	s.mu.Unlock()
}

// Disconnect cancels any tracking timer, clears tracked state, closes the
// transport if open, and marks the session closed. Safe to call multiple
// times; only the first call has any effect.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.connected = false
	if s.flushStop != nil {
		close(s.flushStop)
		s.flushStop = nil
	}
	s.tracked = nil
	s.queue = nil
	t := s.transport
	s.transport = nil
	s.mu.Unlock()

	if t != nil {
		t.Close()
	}

	s.debugf("match %s disconnected", s.MatchID)
	s.emit(EventClose, nil)
}

// IsConnected reports whether the transport is currently open.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// send delivers a message to the transport when connected, queues it while
// still connecting, and drops it once closed.
func (s *Session) send(msg match.Outbound) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if !s.connected {
		s.queue = append(s.queue, msg)
		s.mu.Unlock()
		return
	}
	t := s.transport
	s.mu.Unlock()

	s.write(t, msg)
}

func (s *Session) write(t Transport, msg match.Outbound) {
	if err := t.Send(msg); err != nil {
		s.debugf("match %s: failed to send %s: %v", s.MatchID, msg.MessageType, err)
	}
}

func (s *Session) flushLoop(interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			state := s.tracked
			s.mu.Unlock()
			if state == nil {
				return
			}

			frame := match.StateFrame{
				Transforms:         state.Transforms,
				State:              state.State,
				TimeSinceLastFrame: float64(interval.Milliseconds()),
			}
			s.send(match.SceneFrames([]match.StateFrame{frame}))
		}
	}
}

// handleTransportClose reacts to the underlying connection closing on its
// own. It funnels into Disconnect so cleanup and close notification happen
// exactly once regardless of which side initiated the close.
func (s *Session) handleTransportClose() {
	s.Disconnect()
}

func (s *Session) handleTransportError(err error) {
	// Transport errors do not change state by themselves; the transport is
	// expected to also report close.
	s.emit(EventError, err)
}

func (s *Session) emit(event Event, err error) {
	s.mu.Lock()
	handlers := append([]Handler(nil), s.handlers[event]...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(err)
	}
}

func (s *Session) debugf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("[session] "+format, args...)
	}
}
