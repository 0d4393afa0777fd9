package match

// Call types accepted on the webhook.
const (
	CallStartMatch   = "start_match"
	CallRequestTeams = "request_teams"
)

// Activation is the payload of an inbound webhook call from the
// match-orchestration service. Adapters decode the transport body into this
// structure and forward it to the dispatcher unchanged.
type Activation struct {
	CallType  string `json:"callType"`
	JWTData   string `json:"jwtData"`
	MatchID   string `json:"matchId,omitempty"`
	AuthToken string `json:"authToken,omitempty"`
	WSURL     string `json:"wsUrl,omitempty"`
}

// Vector3 is a position in world space.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a rotation.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Transform is the pose of a single tracked object.
type Transform struct {
	ID       string     `json:"id"`
	Position Vector3    `json:"position"`
	Rotation Quaternion `json:"rotation"`
}

// StateFrame is one timestamped snapshot of transforms and game state sent
// over the match connection. State is an open-ended bag (scores, announced
// events, elapsed time) with no schema beyond being JSON-serializable.
type StateFrame struct {
	Transforms         []Transform    `json:"transforms"`
	State              map[string]any `json:"state,omitempty"`
	TimeSinceLastFrame float64        `json:"timeSinceLastFrame"`
}

// TrackedState is the mutable per-match state a session flushes periodically
// when tracking is enabled. It is held by reference: mutations made by the
// game loop between ticks appear in the next flushed frame.
type TrackedState struct {
	Transforms []Transform    `json:"transforms"`
	State      map[string]any `json:"state,omitempty"`
}

// Agent is one participant slot in a team.
type Agent struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Team is a named group of agents.
type Team struct {
	Name   string  `json:"name"`
	Agents []Agent `json:"agents"`
}

// TeamRoster is the answer to a request_teams call: the set of teams and
// their agent compositions. The dispatcher returns it to the adapter
// verbatim.
type TeamRoster struct {
	Teams []Team `json:"teams"`
}
