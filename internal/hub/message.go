package hub

import "time"

// Channel determines how a chat message's delivery set is computed.
type Channel string

const (
	ChannelGlobal  Channel = "global"
	ChannelRoom    Channel = "room"
	ChannelPrivate Channel = "private"
)

// Message is a transient chat message. It is constructed at routing time,
// delivered to the computed set of live connections, and discarded.
// Persistence is handled by the REST layer, never here.
type Message struct {
	ID            string
	Channel       Channel
	Username      string // sender display name
	Text          string
	RoomID        string // room channel only
	ToUserID      int64  // private channel only
	HasFormatting bool
	Image         string
	Timestamp     time.Time
}
