package lookups

// Symbols of legal channel states
const (
	ChannelStatusOpen int32 = iota
	ChannelStatusClosed
)

// ChannelStatus returns a "generic" string for a given value
func ChannelStatus(value int32) string {

	var str = ""

	switch {
	case value == ChannelStatusOpen:
		str = "open"
	case value == ChannelStatusClosed:
		str = "closed"
	}

	return str
}
