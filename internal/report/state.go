package report

// State is a step of a single submission:
// Collecting -> Validating -> {DryRunDone | AwaitingCredential} -> Submitting -> {Succeeded | Failed}
type State int

const (
	StateCollecting State = iota
	StateValidating
	StateAwaitingCredential
	StateSubmitting
	StateDryRunDone
	StateSucceeded
	StateFailed
)

var stateNames = map[State]string{
	StateCollecting:         "collecting_input",
	StateValidating:         "validating",
	StateAwaitingCredential: "awaiting_credential",
	StateSubmitting:         "submitting",
	StateDryRunDone:         "dry_run_done",
	StateSucceeded:          "succeeded",
	StateFailed:             "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s
func (s State) Terminal() bool {
	return s == StateDryRunDone || s == StateSucceeded || s == StateFailed
}

// MarshalText lets State appear by name in JSON output
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
