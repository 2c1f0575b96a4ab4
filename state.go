package hibiscus

import "fmt"

// StateKind enumerates the closed set of values a Client's lifecycle state
// can take.
type StateKind int

const (
	StateDisconnected StateKind = iota
	StateConnecting
	StateConnectionSucceeded
	StateConnected
	StateConnectionFailed
	StateClosing
	StateClosed
)

func (k StateKind) String() string {
	switch k {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnectionSucceeded:
		return "ConnectionSucceeded"
	case StateConnected:
		return "Connected"
	case StateConnectionFailed:
		return "ConnectionFailed"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("StateKind(%d)", k)
	}
}

// State is one value from the Client's lifecycle state machine. Only the
// fields relevant to Kind are populated.
type State struct {
	Kind StateKind

	// Params holds the parameters passed to Connect, for Connecting.
	Params Params

	// Response holds the login response, for ConnectionSucceeded.
	Response Message

	// Cause holds the connect or interruption failure, for
	// ConnectionFailed. It is nil when the failure was a login rejection
	// rather than a transport or context error (see ConnectFailed).
	Cause error
}

// IsClosingOrClosed is the guard every public Client operation checks
// before doing any work.
func (s State) IsClosingOrClosed() bool {
	return s.Kind == StateClosing || s.Kind == StateClosed
}

func (s State) String() string {
	return s.Kind.String()
}

func disconnectedState() State               { return State{Kind: StateDisconnected} }
func connectingState(p Params) State         { return State{Kind: StateConnecting, Params: p} }
func succeededState(resp Message) State      { return State{Kind: StateConnectionSucceeded, Response: resp} }
func connectedState() State                  { return State{Kind: StateConnected} }
func failedState(resp Message, cause error) State {
	return State{Kind: StateConnectionFailed, Response: resp, Cause: cause}
}
func closingState() State { return State{Kind: StateClosing} }
func closedState() State  { return State{Kind: StateClosed} }
