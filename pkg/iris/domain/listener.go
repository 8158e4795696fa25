package domain

// Listener is notified about everything the presentation layer may want to show. Callbacks are invoked outside of
// the orchestrator's lock, from whatever goroutine made the change.
type Listener interface {
	StateChanged(state State)
	CycleCompleted(outcome CycleOutcome, lastResponse string)
	TriggerRejected(outcome TriggerOutcome)
	// SettingsVisibilityChanged with `visible` set to true is a request to show the configuration surface.
	SettingsVisibilityChanged(visible bool)
}

// NopListener can be embedded to implement only some of the callbacks.
type NopListener struct{}

func (NopListener) StateChanged(State) {}

func (NopListener) CycleCompleted(CycleOutcome, string) {}

func (NopListener) TriggerRejected(TriggerOutcome) {}

func (NopListener) SettingsVisibilityChanged(bool) {}
