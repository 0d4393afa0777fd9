package sdk

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/wricardo/matchbridge/auth"
	"github.com/wricardo/matchbridge/match"
	"github.com/wricardo/matchbridge/match/session"
	"github.com/wricardo/matchbridge/transport/websocket"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = auth.ErrInvalidCredential
	ErrMissingField      = errors.New("missing required field")
	ErrNoTeamProvider    = errors.New("no team roster provider configured")
	ErrUnknownCallKind   = errors.New("unknown call type")
)

// MatchStartFunc is invoked with the live session after a start_match call
// connects. Errors are forwarded to the error sink and surfaced to the
// caller; the session stays connected regardless.
type MatchStartFunc func(ctx context.Context, s *session.Session) error

// RequestTeamsFunc answers a request_teams call.
type RequestTeamsFunc func(ctx context.Context) (*match.TeamRoster, error)

// Config is the surface the host application configures the SDK with.
type Config struct {
	// Secret is the shared secret used to verify webhook assertions.
	Secret string

	// OnMatchStart runs after a new match connection is established.
	OnMatchStart MatchStartFunc

	// OnRequestTeams answers team roster requests. Required only if the
	// orchestration service sends request_teams calls.
	OnRequestTeams RequestTeamsFunc

	// OnError receives every error the SDK surfaces, including asynchronous
	// session errors.
	OnError func(err error)

	// Debug enables verbose logging.
	Debug bool

	// Dialer overrides the transport used for match connections. Defaults to
	// the WebSocket transport; tests substitute a fake.
	Dialer session.Dialer
}

// SDK is the dispatch entry point bridging the orchestration service's
// webhook calls to live match sessions. Each SDK instance owns its own
// session registry, so multiple independent instances can coexist in one
// process.
type SDK struct {
	cfg      Config
	registry *session.Registry
}

// New creates an SDK from the given configuration.
func New(cfg Config) *SDK {
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.Dial
	}
	return &SDK{
		cfg:      cfg,
		registry: session.NewRegistry(),
	}
}

// Registry exposes the live session registry for inspection and tooling.
func (s *SDK) Registry() *session.Registry {
	return s.registry
}

// Result is the outcome of a dispatched call: a live session for
// start_match, a roster for request_teams. Exactly one field is set.
type Result struct {
	Session *session.Session
	Roster  *match.TeamRoster
}

// Handle verifies an inbound activation call and dispatches it by kind.
//
// start_match looks up the registry first: re-delivery of an already active
// match returns the existing session unchanged, with no new connection and
// no second OnMatchStart invocation. Otherwise a session is created,
// registered, connected, and only then handed to OnMatchStart.
//
// request_teams invokes the configured roster provider and returns its
// result verbatim.
//
// Every error returned here is also forwarded to the configured error sink.
func (s *SDK) Handle(ctx context.Context, call match.Activation) (*Result, error) {
	if call.JWTData == "" {
		return nil, s.fail(ErrMissingCredential)
	}
	if _, err := auth.Verify(call.JWTData, s.cfg.Secret, call.MatchID); err != nil {
		return nil, s.fail(ErrInvalidCredential)
	}

	switch call.CallType {
	case match.CallRequestTeams:
		return s.handleRequestTeams(ctx)
	case match.CallStartMatch:
		return s.handleStartMatch(ctx, call)
	default:
		return nil, s.fail(fmt.Errorf("%w: %q", ErrUnknownCallKind, call.CallType))
	}
}

func (s *SDK) handleRequestTeams(ctx context.Context) (*Result, error) {
	if s.cfg.OnRequestTeams == nil {
		return nil, s.fail(ErrNoTeamProvider)
	}

	roster, err := s.cfg.OnRequestTeams(ctx)
	if err != nil {
		return nil, s.fail(fmt.Errorf("team provider: %w", err))
	}

	return &Result{Roster: roster}, nil
}

func (s *SDK) handleStartMatch(ctx context.Context, call match.Activation) (*Result, error) {
	if call.MatchID == "" || call.AuthToken == "" || call.WSURL == "" {
		return nil, s.fail(fmt.Errorf("%w: matchId, authToken and wsUrl are required", ErrMissingField))
	}

	// Idempotent re-delivery: an already active match keeps its session.
	if existing, ok := s.registry.Get(call.MatchID); ok {
		s.debugf("match %s already active, reusing session", call.MatchID)
		return &Result{Session: existing}, nil
	}

	sess := session.New(call.MatchID, call.AuthToken, call.WSURL, s.cfg.Dialer)
	sess.Debug = s.cfg.Debug
	sess.On(session.EventClose, func(error) {
		s.registry.Remove(call.MatchID)
	})
	sess.On(session.EventError, func(err error) {
		s.sink(fmt.Errorf("match %s transport: %w", call.MatchID, err))
	})

	if err := s.registry.Put(call.MatchID, sess); err != nil {
		// Lost a race with a concurrent activation of the same match.
		if existing, ok := s.registry.Get(call.MatchID); ok {
			return &Result{Session: existing}, nil
		}
		return nil, s.fail(err)
	}

	if err := sess.Connect(ctx); err != nil {
		s.registry.Remove(call.MatchID)
		return nil, s.fail(err)
	}

	if s.cfg.OnMatchStart != nil {
		if err := s.cfg.OnMatchStart(ctx, sess); err != nil {
			// The connection stays up; only the initialization failed.
			wrapped := fmt.Errorf("match start callback: %w", err)
			log.Printf("[sdk] %v", wrapped)
			s.sink(wrapped)
			return nil, wrapped
		}
	}

	return &Result{Session: sess}, nil
}

// fail forwards an error to the sink and returns it unchanged.
func (s *SDK) fail(err error) error {
	s.sink(err)
	return err
}

func (s *SDK) sink(err error) {
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
	}
	s.debugf("error: %v", err)
}

func (s *SDK) debugf(format string, args ...interface{}) {
	if s.cfg.Debug {
		log.Printf("[sdk] "+format, args...)
	}
}
