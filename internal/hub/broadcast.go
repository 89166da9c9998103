package hub

// Broadcaster is the fan-out primitive the hub's components use to deliver
// an event to a computed set of live connections. It is injected so that
// components stay testable without a live transport.
type Broadcaster interface {
	ToAll(ev *Event)
	ToAllExcept(connID string, ev *Event)
	ToRoom(roomID string, ev *Event)
	ToUser(userID int64, ev *Event)
	ToConn(connID string, ev *Event)
	ToConns(connIDs []string, ev *Event)
}

// fanout implements Broadcaster over the presence registry and the live
// room membership table.
type fanout struct {
	presence *PresenceRegistry
	rooms    *RoomMembership
}

// NewBroadcaster builds the registry-backed Broadcaster.
func NewBroadcaster(presence *PresenceRegistry, rooms *RoomMembership) Broadcaster {
	return &fanout{presence: presence, rooms: rooms}
}

func (f *fanout) ToAll(ev *Event) {
	f.ToConns(f.presence.Conns(), ev)
}

func (f *fanout) ToAllExcept(connID string, ev *Event) {
	for _, id := range f.presence.Conns() {
		if id == connID {
			continue
		}
		f.ToConn(id, ev)
	}
}

func (f *fanout) ToRoom(roomID string, ev *Event) {
	f.ToConns(f.rooms.MembersOf(roomID), ev)
}

func (f *fanout) ToUser(userID int64, ev *Event) {
	f.ToConns(f.presence.SessionsOf(userID), ev)
}

func (f *fanout) ToConn(connID string, ev *Event) {
	if c, ok := f.presence.Get(connID); ok {
		c.send(ev)
	}
}

func (f *fanout) ToConns(connIDs []string, ev *Event) {
	for _, id := range connIDs {
		f.ToConn(id, ev)
	}
}
