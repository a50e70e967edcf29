package engine

// Policy selects how a plan run reacts to a failing step.
type Policy int

const (
	// PolicyHalt stops the run and propagates the step error.
	PolicyHalt Policy = iota

	// PolicyRevert discards the failing step's mutations and returns the
	// last good context without an error.
	PolicyRevert

	// PolicySkip discards the failing step's mutations and continues with
	// the remaining steps.
	PolicySkip
)

func (p Policy) String() string {
	switch p {
	case PolicyHalt:
		return "halt"
	case PolicyRevert:
		return "revert"
	case PolicySkip:
		return "skip"
	default:
		return "unknown"
	}
}
