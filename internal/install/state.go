package install

// State is a stage of server installation.
//
// Unknown, Created, Booted and Success are ordered: a monitor only ever moves
// forward through them. Error and Deleted are terminal and sit outside that
// order; they are reachable from any non-terminal state.
type State int

const (
	// StateUnknown means nothing has been observed yet.
	StateUnknown State = iota
	// StateCreated means the provider reports the instance exists.
	StateCreated
	// StateBooted means the installer has started publishing attributes.
	StateBooted
	// StateSuccess means the management endpoint and fingerprint are known.
	StateSuccess
	// StateError means installation failed or timed out.
	StateError
	// StateDeleted means the server was deleted.
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateCreated:
		return "created"
	case StateBooted:
		return "booted"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	case StateDeleted:
		return "deleted"
	default:
		return "invalid"
	}
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateError || s == StateDeleted
}

// ordered reports whether s belongs to the forward-only sequence.
func (s State) ordered() bool {
	return s >= StateUnknown && s <= StateSuccess
}

// allows reports whether moving from s to next is a legal transition.
func (s State) allows(next State) bool {
	if s.Terminal() {
		return false
	}
	if next.ordered() {
		return next > s
	}
	return next == StateError || next == StateDeleted
}
