package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
	"github.com/wricardo/matchbridge/match"
	"github.com/wricardo/matchbridge/sdk"
)

// StartResponse is returned for a successful start_match call.
type StartResponse struct {
	Status  string `json:"status"`
	MatchID string `json:"match_id"`
}

// Handler returns a framework-free http.Handler for the webhook endpoint.
// It accepts POST only.
func Handler(bridge *sdk.SDK) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		handleWebhook(bridge, w, r)
	})
}

// RegisterRoutes mounts the webhook endpoint on a gorilla/mux router.
func RegisterRoutes(r *mux.Router, bridge *sdk.SDK, path string) {
	r.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		handleWebhook(bridge, w, req)
	}).Methods("POST")
}

// Mount mounts the webhook endpoint on a chi router.
func Mount(r chi.Router, bridge *sdk.SDK, path string) {
	r.Post(path, func(w http.ResponseWriter, req *http.Request) {
		handleWebhook(bridge, w, req)
	})
}

// handleWebhook decodes the activation payload, dispatches it, and maps the
// outcome: roster JSON verbatim for team requests, {status, match_id} for
// match starts, and a 400-class error body for every failure.
func handleWebhook(bridge *sdk.SDK, w http.ResponseWriter, r *http.Request) {
	var call match.Activation
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := bridge.Handle(r.Context(), call)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if result.Roster != nil {
		respondJSON(w, http.StatusOK, result.Roster)
		return
	}

	respondJSON(w, http.StatusOK, StartResponse{
		Status:  "ok",
		MatchID: result.Session.MatchID,
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
