package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client. Data decodes
// into exactly one of the typed payloads below, selected by Type; payloads
// are validated before any handler runs.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client -> hub event names.
const (
	InboundJoinRoom        = "join_room"
	InboundLeaveRoom       = "leave_room"
	InboundRoomMessage     = "room_message"
	InboundPrivateMessage  = "private_message"
	InboundChatMessage     = "chat_message"
	InboundTypingStart     = "typing_start"
	InboundTypingStop      = "typing_stop"
	InboundRequestUserList = "request_user_list"
)

// Hub -> client event names.
const (
	OutboundJoinedRoom        = "joined_room"
	OutboundLeftRoom          = "left_room"
	OutboundNewRoomMessage    = "new_room_message"
	OutboundNewPrivateMessage = "new_private_message"
	OutboundNewMessage        = "new_message"
	OutboundUpdateUserList    = "update_user_list"
	OutboundServerMessage     = "server_message"
	OutboundUserTyping        = "user_typing"
	OutboundUserStoppedTyping = "user_stopped_typing"
	OutboundErrorMessage      = "error_message"
)

// JoinRoomData requests to join or leave a live room.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// RoomMessageData is a room-scoped chat message from the client.
type RoomMessageData struct {
	RoomID        string `json:"roomId"`
	Text          string `json:"text"`
	HasFormatting bool   `json:"hasFormatting"`
	Image         string `json:"image,omitempty"`
}

// PrivateMessageData is a point-to-point chat message from the client.
type PrivateMessageData struct {
	ToUserID      int64  `json:"toUserId"`
	Text          string `json:"text"`
	HasFormatting bool   `json:"hasFormatting"`
	Image         string `json:"image,omitempty"`
}

// ChatMessageData is a global chat message from the client.
type ChatMessageData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// RoomAck acknowledges a live join or leave to the requesting connection.
type RoomAck struct {
	RoomID string `json:"roomId"`
}

// NewMessage is a delivered global chat message.
type NewMessage struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// NewRoomMessage is a delivered room-scoped chat message.
type NewRoomMessage struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp"`
	RoomID        string `json:"roomId"`
	HasFormatting bool   `json:"hasFormatting"`
	Image         string `json:"image,omitempty"`
	Type          string `json:"type"`
}

// NewPrivateMessage is a delivered point-to-point chat message. From is
// the sender's display name; every copy of one emission shares one ID.
type NewPrivateMessage struct {
	ID            string `json:"id"`
	From          string `json:"from"`
	ToUserID      int64  `json:"toUserId"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp"`
	HasFormatting bool   `json:"hasFormatting"`
	Image         string `json:"image,omitempty"`
	Type          string `json:"type"`
}

// UserEntry is one live session in the online-user list. Multiple sessions
// of one user appear as separate entries.
type UserEntry struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// ServerMessage is an informational text from the server.
type ServerMessage struct {
	Text string `json:"text"`
}

// TypingNotice reports a typing start or stop for a display name.
type TypingNotice struct {
	Username string `json:"username"`
}

// ErrorMessage reports a failure to the offending connection only.
type ErrorMessage struct {
	Text string `json:"text"`
}
