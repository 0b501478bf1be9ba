package mqtt

// EventKind classifies items on the client's event stream.
type EventKind int

const (
	// EventPublish carries an inbound message on a subscribed topic.
	EventPublish EventKind = iota
	// EventConnect signals a (re)established broker connection.
	EventConnect
	// EventConnectionLost signals a dropped broker connection.
	EventConnectionLost
	// EventReconnecting signals an in-progress reconnect attempt.
	EventReconnecting
)

func (k EventKind) String() string {
	switch k {
	case EventPublish:
		return "publish"
	case EventConnect:
		return "connect"
	case EventConnectionLost:
		return "connection_lost"
	case EventReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Event is one item on the transport's sequential event stream. Only
// EventPublish events carry a topic and payload; connection-level events
// carry a human-readable detail string.
type Event struct {
	Kind    EventKind
	Topic   string
	Payload []byte
	Detail  string
}
