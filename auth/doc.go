// Package auth verifies the signed assertions that accompany webhook calls
// from the match-orchestration service.
//
// Assertions are time-bound HMAC-SHA256 JWTs signed with the shared secret
// issued to the game server. Verification checks structural validity, the
// signature, the validity window, and — when the claim set carries a match
// id — agreement with the call's declared match id.
//
// The verifier fails closed: every failure mode is reported as the single
// ErrInvalidCredential so callers cannot probe which check rejected a forged
// assertion.
package auth
