// Package api provides inbound HTTP adapters for the webhook endpoint.
//
// The api package implements:
//   - A framework-free http.Handler for the webhook
//   - A gorilla/mux route registrar
//   - A chi mount helper
//
// All adapters are thin glue: they decode the transport body into a
// match.Activation, forward it to sdk.Handle unchanged, and surface the
// outcome. The core never sees the HTTP framework in use.
//
// Request/Response Format:
//
// The webhook accepts a JSON POST body:
//
//	{
//	  "callType": "start_match" | "request_teams",
//	  "jwtData": "<signed assertion>",
//	  "matchId": "...",   // start_match only
//	  "authToken": "...", // start_match only
//	  "wsUrl": "..."      // start_match only
//	}
//
// Successful match starts return 200 with {"status":"ok","match_id":...};
// team requests return the roster JSON verbatim. Failures return 400 with
// {"error": message}.
//
// Usage:
//
//	// plain net/http
//	http.Handle("/match/webhook", api.Handler(bridge))
//
//	// gorilla/mux
//	r := mux.NewRouter()
//	api.RegisterRoutes(r, bridge, "/match/webhook")
//
//	// chi
//	r := chi.NewRouter()
//	api.Mount(r, bridge, "/match/webhook")
package api
