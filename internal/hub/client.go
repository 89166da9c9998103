package hub

import "time"

// Identity is the pre-validated user identity a Gate produces for an
// admitted connection.
type Identity struct {
	UserID   int64
	Username string
}

// Gate decides whether an inbound connection may be admitted. The token is
// opaque to the hub; verification is delegated to the implementation.
type Gate interface {
	Admit(token string) (Identity, error)
}

// Client is one live, authenticated connection as seen by the hub.
// Events written to the Events channel are drained by the transport's
// write loop; slow consumers are dropped rather than blocked on.
type Client struct {
	ConnID      string
	UserID      int64
	Username    string
	ConnectedAt time.Time

	Events chan *Event
}

// NewClient constructs a client for an admitted identity.
func NewClient(connID string, id Identity) *Client {
	return &Client{
		ConnID:      connID,
		UserID:      id.UserID,
		Username:    id.Username,
		ConnectedAt: time.Now(),
		Events:      make(chan *Event, 32),
	}
}

func (c *Client) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
