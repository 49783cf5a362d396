package core

// ErrorKind classifies failures by how the login flow treats them
type ErrorKind int

const (
	KindNone              ErrorKind = iota // No error
	KindLookupTimeout                      // Speculative existence check timed out (soft)
	KindInteractionFailed                  // Required click/type could not be forced through
	KindSession                            // Automation backend failed independent of element state
	KindConfig                             // Invalid configuration
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLookupTimeout:
		return "lookup_timeout"
	case KindInteractionFailed:
		return "interaction_failed"
	case KindSession:
		return "session"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// IsHard returns true if the kind aborts the flow when raised
func (k ErrorKind) IsHard() bool {
	switch k {
	case KindInteractionFailed, KindSession, KindConfig:
		return true
	default:
		return false
	}
}
