package lookups

// since there are no joins in MongoDB, text descriptions of code values are
// resolved by the API before documents are sent to clients

// registry of lookup/code types
const (
	LTuserRole = iota
	LTpollStatus
	LTchannelStatus
)

// LookupType returns the name of a code type
func LookupType(lt int) string {

	var str = ""

	switch {
	case lt == LTuserRole:
		str = "user role"
	case lt == LTpollStatus:
		str = "poll status"
	case lt == LTchannelStatus:
		str = "channel status"
	}

	return str
}
