// Command simulate runs an example game server against the bridge: it hosts
// the webhook endpoint, answers team requests with a canned roster, and on
// match start drives a scripted game loop over the match connection
// (begin, periodic tracked-state flush, scene updates, end).
//
// Pair it with cmd/devserver for a fully local round trip:
//
//	devserver -port 9090 &
//	simulate -secret dev-secret -token dev-token &
//	curl -X POST http://localhost:9090/trigger/demo1/start
package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/matchbridge/api"
	"github.com/wricardo/matchbridge/match"
	"github.com/wricardo/matchbridge/match/session"
	"github.com/wricardo/matchbridge/sdk"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	cmd := &cli.Command{
		Name:  "simulate",
		Usage: "Run an example game server that streams a scripted match",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Value: ":8090",
				Usage: "Address to serve the webhook endpoint on",
			},
			&cli.StringFlag{
				Name:  "path",
				Value: "/match/webhook",
				Usage: "Webhook path",
			},
			&cli.StringFlag{
				Name:    "secret",
				Value:   "dev-secret",
				Sources: cli.EnvVars("MATCH_SECRET"),
				Usage:   "Shared webhook signing secret",
			},
			&cli.BoolFlag{
				Name:  "ngrok",
				Usage: "Expose the webhook endpoint through an ngrok tunnel",
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN"),
				Usage:   "Ngrok auth token",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	bridge := sdk.New(sdk.Config{
		Secret:         cmd.String("secret"),
		Debug:          cmd.Bool("debug"),
		OnMatchStart:   startDemoMatch,
		OnRequestTeams: demoRoster,
		OnError: func(err error) {
			log.Printf("[bridge] %v", err)
		},
	})

	r := mux.NewRouter()
	api.RegisterRoutes(r, bridge, cmd.String("path"))

	srv := &http.Server{
		Addr:         cmd.String("listen"),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Webhook endpoint: http://%s%s", cmd.String("listen"), cmd.String("path"))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		authToken := cmd.String("ngrok-auth")
		if authToken == "" {
			log.Println("WARNING: ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		} else {
			go func() {
				tun, err := ngrok.Listen(ctx,
					ngrokConfig.HTTPEndpoint(),
					ngrok.WithAuthtoken(authToken),
				)
				if err != nil {
					log.Printf("Failed to start ngrok tunnel: %v", err)
					return
				}
				defer tun.Close()

				log.Printf("Ngrok tunnel established: %s%s", tun.URL(), cmd.String("path"))
				if err := http.Serve(tun, r); err != nil && err != http.ErrServerClosed {
					log.Printf("Ngrok server error: %v", err)
				}
			}()
		}
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)

	for _, sess := range bridge.Registry().All() {
		sess.Disconnect()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// demoRoster answers team requests with a fixed two-team composition.
func demoRoster(ctx context.Context) (*match.TeamRoster, error) {
	return &match.TeamRoster{
		Teams: []match.Team{
			{Name: "home", Agents: []match.Agent{{Name: "striker"}, {Name: "keeper", Role: "defense"}}},
			{Name: "away", Agents: []match.Agent{{Name: "striker"}, {Name: "keeper", Role: "defense"}}},
		},
	}, nil
}

// startDemoMatch is the OnMatchStart callback: it kicks off the scripted
// game loop and returns immediately so the webhook response is not held up.
func startDemoMatch(ctx context.Context, sess *session.Session) error {
	log.Printf("Match %s started, streaming demo loop", sess.MatchID)
	go runDemoLoop(sess)
	return nil
}

// runDemoLoop streams a minute of fake gameplay: a ball orbiting the origin
// with the tracked-state flush carrying scores and elapsed time.
func runDemoLoop(sess *session.Session) {
	state := &match.TrackedState{
		Transforms: []match.Transform{
			{ID: "ball", Rotation: match.Quaternion{W: 1}},
		},
		State: map[string]any{
			"scores":  map[string]int{"home": 0, "away": 0},
			"elapsed": 0,
		},
	}

	sess.BeginMatch()
	sess.TrackState(state, 100*time.Millisecond)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	const ticks = 240 // one minute
	for i := 0; i < ticks && sess.IsConnected(); i++ {
		<-ticker.C

		// Mutate the tracked state in place; the flush loop picks it up.
		angle := float64(i) / 10
		state.Transforms[0].Position = match.Vector3{
			X: 5 * math.Cos(angle),
			Z: 5 * math.Sin(angle),
		}
		state.State["elapsed"] = i / 4

		if i > 0 && i%80 == 0 {
			scores := state.State["scores"].(map[string]int)
			scores["home"]++
			state.State["announcement"] = fmt.Sprintf("GOAL! home leads %d-%d", scores["home"], scores["away"])
		}
	}

	sess.EndMatch()
	sess.Disconnect()
	log.Printf("Match %s demo loop finished", sess.MatchID)
}
