package match

// MessageType tags an outbound message on the match connection.
type MessageType string

const (
	MessageAuthenticate MessageType = "authenticate"
	MessageInitFrames   MessageType = "init_frames"
	MessageEndFrames    MessageType = "end_frames"
	MessageSceneFrames  MessageType = "scene_frames"
)

// Outbound is a client-to-server message. Only the fields relevant to the
// message type are populated; payloads are immutable once constructed.
type Outbound struct {
	MessageType MessageType  `json:"messageType"`
	Token       string       `json:"token,omitempty"`
	Frames      []StateFrame `json:"frames,omitempty"`
}

// Authenticate builds the handshake message sent first on every connection.
func Authenticate(token string) Outbound {
	return Outbound{MessageType: MessageAuthenticate, Token: token}
}

// InitFrames marks the application-level start of the match stream.
func InitFrames() Outbound {
	return Outbound{MessageType: MessageInitFrames}
}

// EndFrames marks the application-level end of the match stream.
func EndFrames() Outbound {
	return Outbound{MessageType: MessageEndFrames}
}

// SceneFrames carries the given frame list verbatim.
func SceneFrames(frames []StateFrame) Outbound {
	return Outbound{MessageType: MessageSceneFrames, Frames: frames}
}
