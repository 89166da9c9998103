package hub

// CommandKind describes what a connection wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the connection to a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the connection from a room.
	CommandLeaveRoom
	// CommandGlobalMessage sends a message to every live connection.
	CommandGlobalMessage
	// CommandRoomMessage sends a message to the members of a room.
	CommandRoomMessage
	// CommandPrivateMessage sends a message to every session of a user.
	CommandPrivateMessage
	// CommandTypingStart marks the sender as typing.
	CommandTypingStart
	// CommandTypingStop clears the sender's typing state.
	CommandTypingStop
	// CommandRequestUserList asks for the current online-user list.
	CommandRequestUserList
)

// Command is an action requested by a live connection. Fields beyond Kind
// are set per kind; the transport mapper validates shape before a command
// is built.
type Command struct {
	Client *Client
	Kind   CommandKind

	Room          string
	Text          string
	ToUserID      int64
	HasFormatting bool
	Image         string
}
