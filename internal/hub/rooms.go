package hub

// RoomMembership tracks which live connections participate in which rooms.
// The relation exists only while a connection is alive; it is independent
// of any persisted room-membership record and makes no authorization
// decision itself.
type RoomMembership struct {
	rooms map[string]map[string]struct{} // roomID -> conn set
	conns map[string]map[string]struct{} // connID -> room set
}

// NewRoomMembership constructs an empty membership table.
func NewRoomMembership() *RoomMembership {
	return &RoomMembership{
		rooms: make(map[string]map[string]struct{}),
		conns: make(map[string]map[string]struct{}),
	}
}

// Join adds a connection to a room. Joining a room already joined is a
// no-op that still counts as success.
func (m *RoomMembership) Join(connID, roomID string) {
	members, ok := m.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		m.rooms[roomID] = members
	}
	members[connID] = struct{}{}

	joined, ok := m.conns[connID]
	if !ok {
		joined = make(map[string]struct{})
		m.conns[connID] = joined
	}
	joined[roomID] = struct{}{}
}

// Leave removes a connection from a room. Leaving a room not joined is a
// no-op.
func (m *RoomMembership) Leave(connID, roomID string) {
	if members, ok := m.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(m.rooms, roomID)
		}
	}
	if joined, ok := m.conns[connID]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(m.conns, connID)
		}
	}
}

// MembersOf returns the connection IDs currently in a room.
func (m *RoomMembership) MembersOf(roomID string) []string {
	members, ok := m.rooms[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(members))
	for connID := range members {
		ids = append(ids, connID)
	}
	return ids
}

// RoomsOf returns the rooms a connection has joined.
func (m *RoomMembership) RoomsOf(connID string) []string {
	joined, ok := m.conns[connID]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(joined))
	for roomID := range joined {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// DropConnection removes a connection from every room it had joined.
// Called exactly once from the disconnect path; safe to call for an
// unknown connection.
func (m *RoomMembership) DropConnection(connID string) {
	joined, ok := m.conns[connID]
	if !ok {
		return
	}
	for roomID := range joined {
		if members, ok := m.rooms[roomID]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(m.rooms, roomID)
			}
		}
	}
	delete(m.conns, connID)
}
