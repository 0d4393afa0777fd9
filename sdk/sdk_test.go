package sdk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/matchbridge/auth"
	"github.com/wricardo/matchbridge/match"
	"github.com/wricardo/matchbridge/match/session"
)

const testSecret = "test-shared-secret"

// fakeTransport records sent messages and the event callbacks wired in.
type fakeTransport struct {
	mu     sync.Mutex
	sent   []match.Outbound
	closed bool
}

func (f *fakeTransport) Send(msg match.Outbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeDialer counts dials and hands out fresh fake transports.
type fakeDialer struct {
	mu    sync.Mutex
	dials int
	last  *fakeTransport
	err   error
}

func (d *fakeDialer) dial(ctx context.Context, wsURL string, ev session.Events) (session.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	d.last = &fakeTransport{}
	return d.last, nil
}

func signedStartCall(t *testing.T, matchID string) match.Activation {
	t.Helper()
	assertion, err := auth.Sign(testSecret, matchID, time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	return match.Activation{
		CallType:  match.CallStartMatch,
		JWTData:   assertion,
		MatchID:   matchID,
		AuthToken: "auth-token",
		WSURL:     "ws://example.test/match/" + matchID,
	}
}

func signedTeamsCall(t *testing.T) match.Activation {
	t.Helper()
	assertion, err := auth.Sign(testSecret, "", time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	return match.Activation{
		CallType: match.CallRequestTeams,
		JWTData:  assertion,
	}
}

func TestHandle_StartMatch(t *testing.T) {
	dialer := &fakeDialer{}
	var started []*session.Session
	bridge := New(Config{
		Secret: testSecret,
		Dialer: dialer.dial,
		OnMatchStart: func(ctx context.Context, s *session.Session) error {
			started = append(started, s)
			return nil
		},
	})

	result, err := bridge.Handle(context.Background(), signedStartCall(t, "match-1"))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if result.Session == nil {
		t.Fatal("Expected a session result")
	}
	if result.Session.MatchID != "match-1" {
		t.Errorf("Expected match id 'match-1', got %q", result.Session.MatchID)
	}
	if !result.Session.IsConnected() {
		t.Error("Expected session to be connected")
	}

	if len(started) != 1 {
		t.Fatalf("Expected OnMatchStart once, got %d", len(started))
	}
	if started[0] != result.Session {
		t.Error("Expected callback to receive the returned session")
	}

	if len(dialer.last.sent) == 0 || dialer.last.sent[0].MessageType != match.MessageAuthenticate {
		t.Error("Expected authenticate as the first wire message")
	}
	if dialer.last.sent[0].Token != "auth-token" {
		t.Errorf("Expected auth token on authenticate, got %q", dialer.last.sent[0].Token)
	}

	if bridge.Registry().Count() != 1 {
		t.Errorf("Expected 1 registry entry, got %d", bridge.Registry().Count())
	}
}

func TestHandle_Idempotent(t *testing.T) {
	dialer := &fakeDialer{}
	starts := 0
	bridge := New(Config{
		Secret: testSecret,
		Dialer: dialer.dial,
		OnMatchStart: func(ctx context.Context, s *session.Session) error {
			starts++
			return nil
		},
	})

	first, err := bridge.Handle(context.Background(), signedStartCall(t, "match-1"))
	if err != nil {
		t.Fatalf("First Handle failed: %v", err)
	}
	second, err := bridge.Handle(context.Background(), signedStartCall(t, "match-1"))
	if err != nil {
		t.Fatalf("Second Handle failed: %v", err)
	}

	if first.Session != second.Session {
		t.Error("Expected re-delivery to return the same session instance")
	}
	if starts != 1 {
		t.Errorf("Expected OnMatchStart once, got %d", starts)
	}
	if dialer.dials != 1 {
		t.Errorf("Expected a single connection attempt, got %d", dialer.dials)
	}
}

func TestHandle_CredentialFailures(t *testing.T) {
	dialer := &fakeDialer{}
	bridge := New(Config{Secret: testSecret, Dialer: dialer.dial})

	t.Run("missing credential", func(t *testing.T) {
		call := signedStartCall(t, "match-1")
		call.JWTData = ""
		_, err := bridge.Handle(context.Background(), call)
		if !errors.Is(err, ErrMissingCredential) {
			t.Errorf("Expected ErrMissingCredential, got %v", err)
		}
	})

	t.Run("tampered assertion", func(t *testing.T) {
		call := signedStartCall(t, "match-1")
		call.JWTData = call.JWTData[:len(call.JWTData)-4] + "AAAA"
		_, err := bridge.Handle(context.Background(), call)
		if !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("Expected ErrInvalidCredential, got %v", err)
		}
	})

	t.Run("assertion for another match", func(t *testing.T) {
		call := signedStartCall(t, "match-1")
		call.MatchID = "match-2"
		call.WSURL = "ws://example.test/match/match-2"
		_, err := bridge.Handle(context.Background(), call)
		if !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("Expected ErrInvalidCredential, got %v", err)
		}
	})

	if bridge.Registry().Count() != 0 {
		t.Errorf("Expected no registry entries after failures, got %d", bridge.Registry().Count())
	}
	if dialer.dials != 0 {
		t.Errorf("Expected no connection attempts, got %d", dialer.dials)
	}
}

func TestHandle_MissingField(t *testing.T) {
	dialer := &fakeDialer{}
	bridge := New(Config{Secret: testSecret, Dialer: dialer.dial})

	for _, strip := range []string{"matchId", "authToken", "wsUrl"} {
		t.Run("missing "+strip, func(t *testing.T) {
			// The assertion must stay valid, so sign without a match id claim.
			assertion, err := auth.Sign(testSecret, "", time.Minute)
			if err != nil {
				t.Fatalf("Sign failed: %v", err)
			}
			call := match.Activation{
				CallType:  match.CallStartMatch,
				JWTData:   assertion,
				MatchID:   "match-1",
				AuthToken: "auth-token",
				WSURL:     "ws://example.test/ws",
			}
			switch strip {
			case "matchId":
				call.MatchID = ""
			case "authToken":
				call.AuthToken = ""
			case "wsUrl":
				call.WSURL = ""
			}

			_, err = bridge.Handle(context.Background(), call)
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("Expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestHandle_UnknownCallKind(t *testing.T) {
	bridge := New(Config{Secret: testSecret, Dialer: (&fakeDialer{}).dial})

	assertion, err := auth.Sign(testSecret, "", time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	_, err = bridge.Handle(context.Background(), match.Activation{
		CallType: "reticulate_splines",
		JWTData:  assertion,
	})
	if !errors.Is(err, ErrUnknownCallKind) {
		t.Errorf("Expected ErrUnknownCallKind, got %v", err)
	}
}

func TestHandle_RequestTeams(t *testing.T) {
	t.Run("no provider configured", func(t *testing.T) {
		bridge := New(Config{Secret: testSecret, Dialer: (&fakeDialer{}).dial})

		_, err := bridge.Handle(context.Background(), signedTeamsCall(t))
		if !errors.Is(err, ErrNoTeamProvider) {
			t.Errorf("Expected ErrNoTeamProvider, got %v", err)
		}
		if bridge.Registry().Count() != 0 {
			t.Error("Team request must not mutate the registry")
		}
	})

	t.Run("provider result returned verbatim", func(t *testing.T) {
		roster := &match.TeamRoster{
			Teams: []match.Team{{Name: "red", Agents: []match.Agent{{Name: "bot"}}}},
		}
		bridge := New(Config{
			Secret: testSecret,
			Dialer: (&fakeDialer{}).dial,
			OnRequestTeams: func(ctx context.Context) (*match.TeamRoster, error) {
				return roster, nil
			},
		})

		result, err := bridge.Handle(context.Background(), signedTeamsCall(t))
		if err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
		if result.Roster != roster {
			t.Error("Expected the provider's roster instance, unmodified")
		}
	})

	t.Run("provider error propagates", func(t *testing.T) {
		providerErr := errors.New("roster database down")
		bridge := New(Config{
			Secret: testSecret,
			Dialer: (&fakeDialer{}).dial,
			OnRequestTeams: func(ctx context.Context) (*match.TeamRoster, error) {
				return nil, providerErr
			},
		})

		_, err := bridge.Handle(context.Background(), signedTeamsCall(t))
		if !errors.Is(err, providerErr) {
			t.Errorf("Expected provider error to propagate, got %v", err)
		}
	})
}

func TestHandle_ConnectFailure(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("connection refused")}
	bridge := New(Config{Secret: testSecret, Dialer: dialer.dial})

	_, err := bridge.Handle(context.Background(), signedStartCall(t, "match-1"))
	if err == nil {
		t.Fatal("Expected Handle to fail when the connection cannot open")
	}
	if !errors.Is(err, dialer.err) {
		t.Errorf("Expected dial error to be wrapped, got %v", err)
	}
	if bridge.Registry().Count() != 0 {
		t.Error("Failed connection must not leave a registry entry")
	}
}

func TestHandle_CallbackError(t *testing.T) {
	dialer := &fakeDialer{}
	callbackErr := errors.New("scene load failed")
	var sunk []error
	bridge := New(Config{
		Secret: testSecret,
		Dialer: dialer.dial,
		OnMatchStart: func(ctx context.Context, s *session.Session) error {
			return callbackErr
		},
		OnError: func(err error) { sunk = append(sunk, err) },
	})

	_, err := bridge.Handle(context.Background(), signedStartCall(t, "match-1"))
	if !errors.Is(err, callbackErr) {
		t.Fatalf("Expected callback error to surface, got %v", err)
	}

	// Partial failure: the connection succeeded, only initialization failed.
	sess, ok := bridge.Registry().Get("match-1")
	if !ok {
		t.Fatal("Expected session to remain registered after callback failure")
	}
	if !sess.IsConnected() {
		t.Error("Expected session to remain connected after callback failure")
	}

	found := false
	for _, e := range sunk {
		if errors.Is(e, callbackErr) {
			found = true
		}
	}
	if !found {
		t.Error("Expected callback error in the error sink")
	}
}

func TestHandle_CloseEvictsRegistry(t *testing.T) {
	dialer := &fakeDialer{}
	bridge := New(Config{Secret: testSecret, Dialer: dialer.dial})

	result, err := bridge.Handle(context.Background(), signedStartCall(t, "match-1"))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	result.Session.Disconnect()

	if bridge.Registry().Count() != 0 {
		t.Errorf("Expected registry eviction on close, got %d entries", bridge.Registry().Count())
	}

	// A fresh activation after close creates a new session.
	again, err := bridge.Handle(context.Background(), signedStartCall(t, "match-1"))
	if err != nil {
		t.Fatalf("Handle after close failed: %v", err)
	}
	if again.Session == result.Session {
		t.Error("Expected a new session after the previous one closed")
	}
	if dialer.dials != 2 {
		t.Errorf("Expected 2 connection attempts, got %d", dialer.dials)
	}
}

func TestHandle_ErrorSink(t *testing.T) {
	var sunk []error
	bridge := New(Config{
		Secret:  testSecret,
		Dialer:  (&fakeDialer{}).dial,
		OnError: func(err error) { sunk = append(sunk, err) },
	})

	call := signedStartCall(t, "match-1")
	call.JWTData = "garbage"
	_, err := bridge.Handle(context.Background(), call)
	if err == nil {
		t.Fatal("Expected Handle to fail")
	}

	if len(sunk) != 1 || !errors.Is(sunk[0], ErrInvalidCredential) {
		t.Errorf("Expected ErrInvalidCredential in the sink, got %v", sunk)
	}
}
