package hub

// UserEntry is one live connection's identity as reported in user lists.
// Multiple sessions of the same user appear as separate entries.
type UserEntry struct {
	UserID   int64
	Username string
}

// PresenceRegistry is the authoritative table of currently connected
// sessions. It is owned by the hub's run loop and must only be touched
// from there.
type PresenceRegistry struct {
	clients map[string]*Client
	order   []string
	byUser  map[int64]map[string]struct{}
}

// NewPresenceRegistry constructs an empty registry.
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		clients: make(map[string]*Client),
		byUser:  make(map[int64]map[string]struct{}),
	}
}

// Register inserts a client keyed by its connection ID. An existing entry
// for the same connection ID is never overwritten.
func (p *PresenceRegistry) Register(c *Client) error {
	if _, exists := p.clients[c.ConnID]; exists {
		return ErrDuplicateConn
	}
	p.clients[c.ConnID] = c
	p.order = append(p.order, c.ConnID)

	conns, ok := p.byUser[c.UserID]
	if !ok {
		conns = make(map[string]struct{})
		p.byUser[c.UserID] = conns
	}
	conns[c.ConnID] = struct{}{}
	return nil
}

// Unregister removes the entry for a connection ID. Calling it for an
// unknown connection is a no-op.
func (p *PresenceRegistry) Unregister(connID string) {
	c, ok := p.clients[connID]
	if !ok {
		return
	}
	delete(p.clients, connID)

	for i, id := range p.order {
		if id == connID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}

	if conns, ok := p.byUser[c.UserID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(p.byUser, c.UserID)
		}
	}
}

// Get returns the client for a connection ID.
func (p *PresenceRegistry) Get(connID string) (*Client, bool) {
	c, ok := p.clients[connID]
	return c, ok
}

// Snapshot returns one entry per live connection, in connect order.
// Entries are deliberately not de-duplicated across sessions of one user.
func (p *PresenceRegistry) Snapshot() []UserEntry {
	entries := make([]UserEntry, 0, len(p.order))
	for _, connID := range p.order {
		c := p.clients[connID]
		entries = append(entries, UserEntry{UserID: c.UserID, Username: c.Username})
	}
	return entries
}

// SessionsOf returns the connection IDs of every live session of a user,
// in connect order.
func (p *PresenceRegistry) SessionsOf(userID int64) []string {
	conns, ok := p.byUser[userID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(conns))
	for _, connID := range p.order {
		if _, member := conns[connID]; member {
			ids = append(ids, connID)
		}
	}
	return ids
}

// Conns returns every live connection ID in connect order.
func (p *PresenceRegistry) Conns() []string {
	ids := make([]string, len(p.order))
	copy(ids, p.order)
	return ids
}

// Len returns the number of live connections.
func (p *PresenceRegistry) Len() int {
	return len(p.clients)
}
