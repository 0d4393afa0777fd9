// Command devserver is a local stand-in for the external match-orchestration
// service. It hosts the per-match WebSocket endpoint the SDK connects to and
// can mint signed activation webhooks at a running game server, so the whole
// flow — webhook, verification, connection, handshake, frame stream — runs
// end to end on one machine.
//
// Endpoints:
//   - GET  /match/{id}/ws        WebSocket endpoint; logs received messages
//   - POST /trigger/{id}/start   POST a signed start_match webhook to -game-url
//   - POST /trigger/teams        POST a signed request_teams webhook to -game-url
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/wricardo/matchbridge/auth"
	"github.com/wricardo/matchbridge/match"
)

var (
	port      = flag.Int("port", 9090, "Dev server port")
	host      = flag.String("host", "localhost", "Dev server host")
	secret    = flag.String("secret", envOr("MATCH_SECRET", "dev-secret"), "Shared webhook signing secret")
	authToken = flag.String("token", "dev-token", "Auth token handed to the game server for the match connection")
	gameURL   = flag.String("game-url", "http://localhost:8090/match/webhook", "Webhook endpoint of the game server under test")
	strict    = flag.Bool("strict", false, "Reject connections whose first message is not a valid authenticate")
	debug     = flag.Bool("debug", false, "Enable debug logging")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local development tool; allow all origins.
		return true
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	flag.Parse()

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	r := mux.NewRouter()
	r.HandleFunc("/match/{id}/ws", handleMatchWS)
	r.HandleFunc("/trigger/{id}/start", handleTriggerStart).Methods("POST")
	r.HandleFunc("/trigger/teams", handleTriggerTeams).Methods("POST")

	addr := fmt.Sprintf("%s:%d", *host, *port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Dev match server listening on %s", addr)
		log.Printf("Match WebSocket: ws://%s/match/{id}/ws", addr)
		log.Printf("Trigger webhook: POST http://%s/trigger/{id}/start -> %s", addr, *gameURL)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Dev server failed: %v", err)
		}
	}()

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// handleMatchWS accepts the SDK's match connection and logs everything it
// streams. With -strict, the first message must be a valid authenticate.
func handleMatchWS(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[%s] game server connected", matchID)
	authed := false

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[%s] read error: %v", matchID, err)
			} else {
				log.Printf("[%s] game server disconnected", matchID)
			}
			return
		}

		var msg match.Outbound
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[%s] unparseable message: %s", matchID, data)
			continue
		}

		if *strict && !authed {
			if msg.MessageType != match.MessageAuthenticate || msg.Token != *authToken {
				log.Printf("[%s] rejected: first message was %s", matchID, msg.MessageType)
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authenticate first"))
				return
			}
		}

		switch msg.MessageType {
		case match.MessageAuthenticate:
			authed = true
			log.Printf("[%s] authenticated", matchID)
		case match.MessageSceneFrames:
			if *debug {
				log.Printf("[%s] %d frame(s): %s", matchID, len(msg.Frames), data)
			} else {
				log.Printf("[%s] %d frame(s)", matchID, len(msg.Frames))
			}
		default:
			log.Printf("[%s] %s", matchID, msg.MessageType)
		}
	}
}

// handleTriggerStart signs a start_match activation for {id} and posts it to
// the configured game server webhook.
func handleTriggerStart(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	assertion, err := auth.Sign(*secret, matchID, 5*time.Minute)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	call := match.Activation{
		CallType:  match.CallStartMatch,
		JWTData:   assertion,
		MatchID:   matchID,
		AuthToken: *authToken,
		WSURL:     fmt.Sprintf("ws://%s:%d/match/%s/ws", *host, *port, matchID),
	}

	postWebhook(w, call)
}

// handleTriggerTeams signs a request_teams activation and posts it to the
// configured game server webhook.
func handleTriggerTeams(w http.ResponseWriter, r *http.Request) {
	assertion, err := auth.Sign(*secret, "", 5*time.Minute)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	postWebhook(w, match.Activation{
		CallType: match.CallRequestTeams,
		JWTData:  assertion,
	})
}

func postWebhook(w http.ResponseWriter, call match.Activation) {
	body, err := json.Marshal(call)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(*gameURL, "application/json", bytes.NewReader(body))
	if err != nil {
		http.Error(w, fmt.Sprintf("webhook delivery failed: %v", err), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	log.Printf("webhook %s -> %s (%s)", call.CallType, *gameURL, resp.Status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}
