package hub

// TypingCoordinator tracks which display names are currently typing and
// notifies every other connection about start/stop transitions. The state
// is ephemeral; no TTL is enforced, but a disconnect always clears the
// name and emits a stop so no client is left with a stale indicator.
type TypingCoordinator struct {
	broadcast Broadcaster
	typing    map[string]struct{}
}

// NewTypingCoordinator builds a coordinator that notifies through b.
func NewTypingCoordinator(b Broadcaster) *TypingCoordinator {
	return &TypingCoordinator{
		broadcast: b,
		typing:    make(map[string]struct{}),
	}
}

// Start marks the client's display name as typing and notifies everyone
// else. Repeated starts keep a single logical typing state.
func (t *TypingCoordinator) Start(c *Client) {
	t.typing[c.Username] = struct{}{}
	t.broadcast.ToAllExcept(c.ConnID, &Event{Kind: EventUserTyping, Username: c.Username})
}

// Stop clears the typing state and notifies everyone else. Safe to call
// without a preceding Start.
func (t *TypingCoordinator) Stop(c *Client) {
	delete(t.typing, c.Username)
	t.broadcast.ToAllExcept(c.ConnID, &Event{Kind: EventUserStoppedTyping, Username: c.Username})
}

// DropConnection is invoked from the disconnect path. It unconditionally
// emits a stop notification for the connection's display name, whether or
// not a start was ever recorded.
func (t *TypingCoordinator) DropConnection(connID, username string) {
	delete(t.typing, username)
	t.broadcast.ToAllExcept(connID, &Event{Kind: EventUserStoppedTyping, Username: username})
}

// Typing reports whether a display name is currently marked typing.
func (t *TypingCoordinator) Typing(username string) bool {
	_, ok := t.typing[username]
	return ok
}
