package hub

import (
	"fmt"
	"strings"
	"time"
)

// Delivery is the outcome of routing one chat message: the stamped message
// and the exact set of connections it goes to, computed from registry
// snapshots at routing time. Membership changes after this point do not
// retroactively apply.
type Delivery struct {
	Message Message
	Conns   []string
}

// MessageRouter validates and stamps outbound chat messages for the three
// channels and computes each delivery set.
type MessageRouter struct {
	presence *PresenceRegistry
	rooms    *RoomMembership
	ids      idGenerator
	now      func() time.Time
}

// NewMessageRouter builds a router over the given registries.
func NewMessageRouter(presence *PresenceRegistry, rooms *RoomMembership) *MessageRouter {
	return &MessageRouter{
		presence: presence,
		rooms:    rooms,
		now:      time.Now,
	}
}

// Global routes a message to every live connection. Text must be non-empty
// after trimming.
func (r *MessageRouter) Global(sender *Client, text string) (*Delivery, *Error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domainError(ErrCodeInvalidMessage, "Invalid message format.")
	}
	ts := r.now()
	return &Delivery{
		Message: Message{
			ID:        r.ids.next(sender.ConnID, ts),
			Channel:   ChannelGlobal,
			Username:  sender.Username,
			Text:      text,
			Timestamp: ts,
		},
		Conns: r.presence.Conns(),
	}, nil
}

// Room routes a message to the current members of a room. Empty text is
// tolerated when the message carries an image; at least one of the two
// must be present.
func (r *MessageRouter) Room(sender *Client, roomID, text string, hasFormatting bool, image string) (*Delivery, *Error) {
	if roomID == "" {
		return nil, domainError(ErrCodeBadRequest, "Room is required.")
	}
	if strings.TrimSpace(text) == "" && image == "" {
		return nil, domainError(ErrCodeInvalidMessage, "Invalid message format.")
	}
	ts := r.now()
	return &Delivery{
		Message: Message{
			ID:            r.ids.next(roomID, ts),
			Channel:       ChannelRoom,
			Username:      sender.Username,
			Text:          text,
			RoomID:        roomID,
			HasFormatting: hasFormatting,
			Image:         image,
			Timestamp:     ts,
		},
		Conns: r.rooms.MembersOf(roomID),
	}, nil
}

// Private routes a message to every live session of the target user plus
// an echo to the sending connection, all copies sharing one message ID.
// A target with zero live sessions is not an error; the echo still
// happens. Self-messages are permitted at this layer.
func (r *MessageRouter) Private(sender *Client, toUserID int64, text string, hasFormatting bool, image string) (*Delivery, *Error) {
	if toUserID == 0 {
		return nil, domainError(ErrCodeBadRequest, "Recipient is required.")
	}
	if strings.TrimSpace(text) == "" && image == "" {
		return nil, domainError(ErrCodeInvalidMessage, "Invalid message format.")
	}
	ts := r.now()

	conns := r.presence.SessionsOf(toUserID)
	echo := true
	for _, id := range conns {
		if id == sender.ConnID {
			echo = false
			break
		}
	}
	if echo {
		conns = append(conns, sender.ConnID)
	}

	return &Delivery{
		Message: Message{
			ID:            r.ids.next(fmt.Sprintf("%d-%d", sender.UserID, toUserID), ts),
			Channel:       ChannelPrivate,
			Username:      sender.Username,
			Text:          text,
			ToUserID:      toUserID,
			HasFormatting: hasFormatting,
			Image:         image,
			Timestamp:     ts,
		},
		Conns: conns,
	}, nil
}

// idGenerator stamps message IDs from scope plus a monotonically
// non-decreasing millisecond component. A per-process sequence keeps two
// messages within the same millisecond distinct.
type idGenerator struct {
	lastMillis int64
	seq        int
}

func (g *idGenerator) next(scope string, ts time.Time) string {
	millis := ts.UnixMilli()
	if millis <= g.lastMillis {
		millis = g.lastMillis
		g.seq++
	} else {
		g.lastMillis = millis
		g.seq = 0
	}
	if g.seq > 0 {
		return fmt.Sprintf("%s-%d-%d", scope, millis, g.seq)
	}
	return fmt.Sprintf("%s-%d", scope, millis)
}
