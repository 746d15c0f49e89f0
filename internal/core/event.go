package core

// EventKind is a transport notification delivered to the hub.
type EventKind int

const (
	// EventConnected registers a freshly accepted, unauthorized session.
	EventConnected EventKind = iota
	// EventLineReceived carries one line read from the session's transport.
	EventLineReceived
	// EventDisconnected reports that the transport for the session has gone away.
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventLineReceived:
		return "line_received"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is the only way transports talk to the hub.
type Event struct {
	Kind    EventKind
	Session *Session
	Line    string
}
