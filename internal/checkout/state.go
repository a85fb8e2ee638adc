package checkout

// State is the client-side position in a payment attempt. Terminal
// states are only ever entered from a server-reported payment status.
type State string

const (
	StateNotStarted State = "not_started"
	StateInitiating State = "initiating"
	StatePending    State = "pending"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFailed
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// CanTransitionTo enumerates the legal moves of the payment attempt.
func CanTransitionTo(from, to State) bool {
	switch from {
	case StateNotStarted:
		return to == StateInitiating
	case StateInitiating:
		// Initiation failure falls back to not_started with no partial
		// payment record kept.
		return to == StatePending || to == StateNotStarted
	case StatePending:
		return to == StateSuccess || to == StateFailed
	default:
		return false
	}
}

// PollResult is the outcome of a polling run. Exhausting the attempt
// budget yields ResultIndeterminate, never a silent failure.
type PollResult string

const (
	ResultSuccess       PollResult = "success"
	ResultFailed        PollResult = "failed"
	ResultIndeterminate PollResult = "indeterminate"
)
