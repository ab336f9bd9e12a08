package realtime

// Channel is a named broadcast group. The variant set is closed: exactly one
// channel per list view exists, and publishing to anything else is rejected
// instead of silently creating a group nobody reads.
type Channel string

const (
	// ChannelActive carries refreshes of the active wishlist.
	ChannelActive Channel = "active"
	// ChannelArchived carries refreshes of the archived wishlist.
	ChannelArchived Channel = "archived"
)

// Channels returns every defined channel.
func Channels() []Channel {
	return []Channel{ChannelActive, ChannelArchived}
}

func (c Channel) Valid() bool {
	return c == ChannelActive || c == ChannelArchived
}

func (c Channel) String() string {
	return string(c)
}
