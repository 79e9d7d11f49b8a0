package notify

// Channel is a named broadcast domain. A connection belongs to exactly one
// channel for its whole lifetime.
type Channel string

const (
	ChannelClient Channel = "client"
	ChannelAdmin  Channel = "admin"
)

// Channels lists every channel the relay serves, in routing order.
var Channels = []Channel{ChannelClient, ChannelAdmin}

// Path is the connection path that selects this channel.
func (c Channel) Path() string {
	return "/" + string(c)
}
