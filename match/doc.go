// Package match defines the wire and data model shared across the SDK.
//
// The match package contains:
//   - Activation: the inbound webhook payload from the orchestration service
//   - Outbound: the tagged client-to-server message envelope
//   - StateFrame / Transform: one timestamped snapshot of the game world
//   - TrackedState: the mutable state object a session can flush periodically
//   - TeamRoster / Team / Agent: the answer to a team request
//
// Message Protocol:
//
// All messages on the match connection are JSON text frames. Client-to-server
// shapes are:
//   - {messageType: "authenticate", token}
//   - {messageType: "init_frames"}
//   - {messageType: "end_frames"}
//   - {messageType: "scene_frames", frames: [{transforms, state?, timeSinceLastFrame}]}
//
// Transforms carry an object id, a position vector, and a rotation
// quaternion:
//   - {id, position: {x, y, z}, rotation: {x, y, z, w}}
//
// The package holds plain data declarations only; connection behavior lives
// in match/session and transport/websocket.
package match
