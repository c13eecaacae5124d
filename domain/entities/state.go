package entities

// SessionState represents the lifecycle state of a voice session
type SessionState string

const (
	SessionStateDisconnected SessionState = "disconnected"
	SessionStateConnecting   SessionState = "connecting"
	SessionStateConnected    SessionState = "connected"
	SessionStateError        SessionState = "error"
)

// CanConnect reports whether a connect attempt is allowed from this state.
// Connecting from CONNECTING or CONNECTED would create a duplicate session.
func (s SessionState) CanConnect() bool {
	return s == SessionStateDisconnected || s == SessionStateError
}

func (s SessionState) String() string {
	return string(s)
}
