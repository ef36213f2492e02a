package lookups

// Symbols of legal poll states
const (
	PollStatusActive int32 = iota
	PollStatusExpired
	PollStatusDeleted
)

// PollStatus returns a "generic" string for a given value
func PollStatus(value int32) string {

	var str = ""

	switch {
	case value == PollStatusActive:
		str = "active"
	case value == PollStatusExpired:
		str = "expired"
	case value == PollStatusDeleted:
		str = "deleted"
	}

	return str
}
