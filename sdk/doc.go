// Package sdk is the dispatch entry point of the match bridge.
//
// The sdk package implements:
//   - Webhook call verification via the auth package
//   - Routing by call kind (start_match, request_teams)
//   - Session registry lookup-or-create with idempotent re-delivery
//   - User callback invocation with a live, connected session
//   - A single global error sink for synchronous and asynchronous failures
//
// Dispatch Flow:
//
// An inbound activation call travels: adapter → Handle → credential
// verification → registry lookup-or-create → session Connect → OnMatchStart
// callback. When the session's connection later closes, the registered close
// handler evicts the registry entry.
//
// Error Taxonomy:
//
//   - ErrMissingCredential: no assertion on the call
//   - ErrInvalidCredential: assertion failed verification (one generic kind)
//   - ErrMissingField: start_match payload incomplete
//   - ErrNoTeamProvider: request_teams with no provider configured
//   - ErrUnknownCallKind: unrecognized callType
//
// Provider, callback, and transport failures are wrapped with context and
// surfaced once; the SDK contains no retry logic anywhere.
//
// Usage:
//
//	bridge := sdk.New(sdk.Config{
//		Secret: os.Getenv("MATCH_SECRET"),
//		OnMatchStart: func(ctx context.Context, s *session.Session) error {
//			s.BeginMatch()
//			s.TrackState(state, 100*time.Millisecond)
//			return nil
//		},
//	})
//	http.Handle("/webhook", api.Handler(bridge))
package sdk
