// Package session provides the per-match connection lifecycle manager.
//
// The session package implements:
//   - Session: the streaming connection state machine for one match
//   - Registry: thread-safe match-id to session mapping
//   - FIFO queueing of messages issued before the connection opens
//   - Periodic flushing of a mutable tracked-state object
//   - Multi-handler lifecycle event notification
//
// State Machine:
//
// A session moves through Idle → Connecting → Connected → Closed. While
// connecting, outbound calls are queued rather than sent. On open, the
// authentication message goes out first, then the queue drains in order, and
// subsequent sends go straight to the transport. Closed is terminal: the
// flush timer is cancelled, the tracked state is released, and further sends
// are silently dropped.
//
// Events:
//
// Handlers registered with On fire in registration order, multiple handlers
// per event are allowed, and there is no removal operation:
//   - connect: the transport opened and the queue was flushed
//   - close: the session closed, whether locally or by the peer
//   - error: a transport-level error; close is expected to follow
//
// Usage:
//
//	sess := session.New(matchID, token, wsURL, websocket.Dial)
//	sess.On(session.EventClose, func(error) { registry.Remove(matchID) })
//
//	sess.BeginMatch() // queued until the connection opens
//	if err := sess.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	sess.TrackState(state, 100*time.Millisecond)
//
// Concurrency:
//
// Session internals and the registry are mutex-guarded and safe for
// concurrent use. Disconnect is the only cancellation primitive: it stops
// the flush loop and drops queued sends immediately, but an in-flight
// Connect or user callback runs to completion independently.
package session
