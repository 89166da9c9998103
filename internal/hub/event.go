package hub

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventServerMessage is an informational text from the server.
	EventServerMessage EventKind = iota
	// EventErrorMessage reports a failure to the offending connection only.
	EventErrorMessage
	// EventUserList carries the current online-user list.
	EventUserList
	// EventJoinedRoom acknowledges a join to the requesting connection.
	EventJoinedRoom
	// EventLeftRoom acknowledges a leave to the requesting connection.
	EventLeftRoom
	// EventChatMessage delivers a routed chat message; the message's
	// Channel selects the wire representation.
	EventChatMessage
	// EventUserTyping notifies that a user started typing.
	EventUserTyping
	// EventUserStoppedTyping notifies that a user stopped typing.
	EventUserStoppedTyping
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Text     string      // server/error messages
	Room     string      // join/leave acks
	Username string      // typing notifications
	Users    []UserEntry // user list
	Message  *Message    // chat messages
	Err      *Error      // non-nil for EventErrorMessage
}

func serverMessage(text string) *Event {
	return &Event{Kind: EventServerMessage, Text: text}
}

func errorMessage(err *Error) *Event {
	return &Event{Kind: EventErrorMessage, Text: err.Message, Err: err}
}
