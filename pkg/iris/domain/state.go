package domain

// State of the orchestrator. A cycle goes Idle -> AwaitingFrame -> AwaitingAnalysis -> Idle, or skips straight back
// to Idle when there's nothing to see.
type State int

const (
	StateIdle = State(iota)
	StateAwaitingFrame
	StateAwaitingAnalysis
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFrame:
		return "awaiting frame"
	case StateAwaitingAnalysis:
		return "awaiting analysis"
	default:
		return "unknown"
	}
}

// TriggerOutcome what happened to a describe request.
type TriggerOutcome int

const (
	// TriggerOutcomeStarted a new cycle has started
	TriggerOutcomeStarted = TriggerOutcome(iota)
	// TriggerOutcomeIgnored a cycle is already in flight; the trigger is dropped, not queued
	TriggerOutcomeIgnored
	// TriggerOutcomeNeedsConfiguration there's no credential; the user was asked to configure one
	TriggerOutcomeNeedsConfiguration
)

func (t TriggerOutcome) String() string {
	switch t {
	case TriggerOutcomeStarted:
		return "started"
	case TriggerOutcomeIgnored:
		return "ignored"
	case TriggerOutcomeNeedsConfiguration:
		return "needs configuration"
	default:
		return "unknown"
	}
}

// CycleOutcome how a completed cycle ended.
type CycleOutcome int

const (
	CycleOutcomeDescribed = CycleOutcome(iota)
	CycleOutcomeFailed
	CycleOutcomeNoFrame
)

func (c CycleOutcome) String() string {
	switch c {
	case CycleOutcomeDescribed:
		return "described"
	case CycleOutcomeFailed:
		return "failed"
	case CycleOutcomeNoFrame:
		return "no frame"
	default:
		return "unknown"
	}
}

// Status a snapshot of what the user would see on the screen.
type Status struct {
	State           State
	LastResponse    string
	SettingsVisible bool
}
