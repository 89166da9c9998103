package hub

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// JoinAuthorizer is the seam through which a caller can wire live room
// joins to a persisted membership policy. A nil authorizer admits any
// room identifier.
type JoinAuthorizer func(userID int64, roomID string) bool

// Hub coordinates presence, live room membership, message routing and
// typing state for all connections. A single run-loop goroutine owns all
// mutable state; transports talk to it exclusively through channels, so
// events interleave but never run concurrently over the registries.
type Hub struct {
	log *zerolog.Logger

	presence *PresenceRegistry
	rooms    *RoomMembership
	router   *MessageRouter
	typing   *TypingCoordinator
	b        Broadcaster

	authorizeJoin JoinAuthorizer

	register   chan *Client
	unregister chan *Client
	commands   chan *Command
}

// New constructs a hub. The authorizer may be nil.
func New(logger *zerolog.Logger, authorize JoinAuthorizer) *Hub {
	presence := NewPresenceRegistry()
	rooms := NewRoomMembership()
	b := NewBroadcaster(presence, rooms)

	return &Hub{
		log:           logger,
		presence:      presence,
		rooms:         rooms,
		router:        NewMessageRouter(presence, rooms),
		typing:        NewTypingCoordinator(b),
		b:             b,
		authorizeJoin: authorize,
		register:      make(chan *Client, 16),
		unregister:    make(chan *Client, 16),
		commands:      make(chan *Command, 256),
	}
}

// RegisterClient admits an authenticated connection into the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection. Safe to call once per disconnect
// regardless of what the connection managed to do while alive.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Submit queues a command for processing. Commands from one connection
// are processed in arrival order.
func (h *Hub) Submit(cmd *Command) {
	h.commands <- cmd
}

// Run processes events until the context is cancelled. Each event is
// handled to completion before the next one; there is no other goroutine
// touching hub state.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case cmd := <-h.commands:
			h.dispatch(cmd)
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	if err := h.presence.Register(c); err != nil {
		h.log.Error().Err(err).Str("conn_id", c.ConnID).Msg("register client")
		// The connection was admitted at the transport; tell it why it
		// will never receive anything else.
		c.send(errorMessage(domainError(ErrCodeInternal, "Connection could not be registered.")))
		return
	}
	h.log.Info().Str("conn_id", c.ConnID).Str("username", c.Username).Msg("client connected")

	h.b.ToAll(&Event{Kind: EventUserList, Users: h.presence.Snapshot()})
	h.b.ToConn(c.ConnID, serverMessage(fmt.Sprintf("Welcome to the chat, %s!", c.Username)))
	h.b.ToAllExcept(c.ConnID, serverMessage(fmt.Sprintf("%s has joined the chat.", c.Username)))
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.presence.Get(c.ConnID); !ok {
		return
	}
	h.log.Info().Str("conn_id", c.ConnID).Str("username", c.Username).Msg("client disconnected")

	h.presence.Unregister(c.ConnID)
	h.rooms.DropConnection(c.ConnID)
	h.typing.DropConnection(c.ConnID, c.Username)

	h.b.ToAll(serverMessage(fmt.Sprintf("%s has left the chat.", c.Username)))
	h.b.ToAll(&Event{Kind: EventUserList, Users: h.presence.Snapshot()})
}

// dispatch runs one command with per-connection failure isolation: a
// panicking handler produces an error event for that connection and a log
// entry, never a process-wide fault.
func (h *Hub) dispatch(cmd *Command) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().
				Str("conn_id", cmd.Client.ConnID).
				Interface("panic", r).
				Msg("command handler panicked")
			cmd.Client.send(errorMessage(domainError(ErrCodeInternal, "An error occurred processing your request.")))
		}
	}()

	// Closed is terminal: commands queued behind a disconnect are dropped.
	c, ok := h.presence.Get(cmd.Client.ConnID)
	if !ok {
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(c, cmd.Room)
	case CommandLeaveRoom:
		h.handleLeave(c, cmd.Room)
	case CommandGlobalMessage:
		d, err := h.router.Global(c, cmd.Text)
		h.deliver(c, d, err)
	case CommandRoomMessage:
		d, err := h.router.Room(c, cmd.Room, cmd.Text, cmd.HasFormatting, cmd.Image)
		h.deliver(c, d, err)
	case CommandPrivateMessage:
		d, err := h.router.Private(c, cmd.ToUserID, cmd.Text, cmd.HasFormatting, cmd.Image)
		h.deliver(c, d, err)
	case CommandTypingStart:
		h.typing.Start(c)
	case CommandTypingStop:
		h.typing.Stop(c)
	case CommandRequestUserList:
		h.b.ToConn(c.ConnID, &Event{Kind: EventUserList, Users: h.presence.Snapshot()})
	default:
		c.send(errorMessage(domainError(ErrCodeBadRequest, "Unknown command.")))
	}
}

func (h *Hub) handleJoin(c *Client, roomID string) {
	if roomID == "" {
		c.send(errorMessage(domainError(ErrCodeBadRequest, "Room is required.")))
		return
	}
	if h.authorizeJoin != nil && !h.authorizeJoin(c.UserID, roomID) {
		c.send(errorMessage(domainError(ErrCodeForbidden, "Not allowed to join this room.")))
		return
	}
	h.rooms.Join(c.ConnID, roomID)
	h.b.ToConn(c.ConnID, &Event{Kind: EventJoinedRoom, Room: roomID})
}

func (h *Hub) handleLeave(c *Client, roomID string) {
	if roomID == "" {
		c.send(errorMessage(domainError(ErrCodeBadRequest, "Room is required.")))
		return
	}
	h.rooms.Leave(c.ConnID, roomID)
	h.b.ToConn(c.ConnID, &Event{Kind: EventLeftRoom, Room: roomID})
}

// deliver fans a routed message out to its delivery set, or reports the
// validation failure back to the sender only.
func (h *Hub) deliver(c *Client, d *Delivery, routeErr *Error) {
	if routeErr != nil {
		c.send(errorMessage(routeErr))
		return
	}
	msg := d.Message
	h.b.ToConns(d.Conns, &Event{Kind: EventChatMessage, Message: &msg})
}
