package gameserver

// ClientConnectionState represents the state machine of a channel connection.
type ClientConnectionState int32

const (
	ClientStateConnected    ClientConnectionState = iota // TCP connected, waiting for ChannelLogin
	ClientStateLoggedIn                                  // session key validated, controlling a creature
	ClientStateDisconnected                              // connection closed
)

func (s ClientConnectionState) String() string {
	switch s {
	case ClientStateConnected:
		return "CONNECTED"
	case ClientStateLoggedIn:
		return "LOGGED_IN"
	case ClientStateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}
