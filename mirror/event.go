package mirror

// Event kinds replayed into the realtime store
const (
	EventChannelCreated   = "channel.created"
	EventParticipantJoin  = "participant.joined"
	EventParticipantLeave = "participant.left"
	EventMessageSent      = "message.sent"
	EventMessageRead      = "message.read"
	EventChannelClosed    = "channel.closed"
)

// Event describes one channel mutation; the primary store has already
// accepted it when the event is created
type Event struct {
	Kind      string                 `json:"kind"`
	ChannelID string                 `json:"channelID"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
