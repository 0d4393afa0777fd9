// Package websocket provides the WebSocket transport for match connections.
//
// The websocket package implements:
//   - Client-side dialing of the per-match server address
//   - Serialized writes through a buffered channel and a single write pump
//   - Keep-alive via ping/pong with read and write deadlines
//   - Close and error notification back to the owning session
//
// Architecture:
//
// Each connection runs two goroutines: a write pump draining the send
// channel onto the wire, and a read pump consuming inbound frames. The read
// pump exists mainly to service pong handling and close detection; inbound
// payloads that are not JSON objects are dropped, and well-formed responses
// are currently not dispatched to any handler.
//
// Usage:
//
//	// Dial satisfies session.Dialer; sessions use it directly.
//	sess := session.New(matchID, token, wsURL, websocket.Dial)
//	err := sess.Connect(ctx)
//
// Concurrency:
//
// Send is safe from any goroutine and preserves message order. Close is
// idempotent; after it, Send fails with ErrConnClosed.
package websocket
