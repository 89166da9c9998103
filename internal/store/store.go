package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered user.
type User struct {
	ID            int64
	Username      string
	PasswordHash  string
	Status        string // online, away, busy, offline
	StatusMessage string
	CreatedAt     time.Time
}

// Room represents a persisted chat room.
type Room struct {
	ID          int64
	Name        string
	Description string
	IsDefault   bool
	CreatorID   int64
	CreatedAt   time.Time
}

// Message represents a persisted chat message. Exactly one of RoomID and
// ReceiverID is set: room messages carry RoomID, private messages carry
// ReceiverID.
type Message struct {
	ID             int64
	SenderID       int64
	SenderUsername string
	RoomID         *int64
	ReceiverID     *int64
	Body           string
	HasFormatting  bool
	Image          *string
	IsRead         bool
	CreatedAt      time.Time
}

// Conversation is one private-message partner with summary info.
type Conversation struct {
	UserID          int64
	Username        string
	LastMessage     string
	LastMessageTime time.Time
	UnreadCount     int
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UpdateProfile updates a user's status and status message.
	UpdateProfile(ctx context.Context, id int64, status, statusMessage string) error
}

// RoomStore handles room persistence. This is the membership collaborator
// the live hub's join authorization hook can be wired to.
type RoomStore interface {
	// CreateRoom creates a new room and adds the creator as a member.
	CreateRoom(ctx context.Context, name, description string, creatorID int64) (*Room, error)

	// GetRoomByID retrieves a room by ID.
	GetRoomByID(ctx context.Context, id int64) (*Room, error)

	// GetRoomByName retrieves a room by name.
	GetRoomByName(ctx context.Context, name string) (*Room, error)

	// ListRooms lists all rooms.
	ListRooms(ctx context.Context) ([]*Room, error)

	// AddMember adds a user to a room. Adding an existing member is a no-op.
	AddMember(ctx context.Context, roomID, userID int64) error

	// RemoveMember removes a user from a room.
	RemoveMember(ctx context.Context, roomID, userID int64) error

	// IsMember checks if user is a member of the room.
	IsMember(ctx context.Context, roomID, userID int64) (bool, error)

	// ListMembers lists member user IDs of a room.
	ListMembers(ctx context.Context, roomID int64) ([]int64, error)
}

// MessageStore handles message persistence. The hub never calls this
// during live routing; the REST endpoints do.
type MessageStore interface {
	// SaveMessage persists a message and returns it with ID and timestamp set.
	SaveMessage(ctx context.Context, msg *Message) (*Message, error)

	// ListRoomMessages returns one page of a room's history, oldest first
	// within the page, plus the total message count.
	ListRoomMessages(ctx context.Context, roomID int64, page, limit int) ([]*Message, int, error)

	// ListPrivateMessages returns one page of the two-party history between
	// userA and userB, oldest first within the page, plus the total count.
	ListPrivateMessages(ctx context.Context, userA, userB int64, page, limit int) ([]*Message, int, error)

	// MarkPrivateRead marks messages from senderID to receiverID as read.
	MarkPrivateRead(ctx context.Context, senderID, receiverID int64) error

	// ListConversations returns the user's private-message partners with
	// last message and unread count, most recent first.
	ListConversations(ctx context.Context, userID int64) ([]*Conversation, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
