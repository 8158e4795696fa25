package domain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/juju/clock"

	"kgeyst.com/iris/pkg/common"
)

const DefaultCycleTimeout = 2 * time.Minute

// JobRunner runs cycles off the caller's goroutine, one at a time. common.JobQueue is the production implementation.
// Enqueue returns false if the runner no longer accepts jobs.
type JobRunner interface {
	Enqueue(job common.Job) bool
}

// Orchestrator is the main state machine: it receives triggers from the gesture surfaces, captures a frame, has it
// analyzed and speaks the result. At most one cycle is in flight; triggers which arrive while a cycle runs are
// dropped (the user can always trigger again).
type Orchestrator struct {
	mutex            sync.Mutex
	state            State
	lastResponse     string
	settingsVisible  bool
	listeners        []Listener
	frameSource      FrameSource
	analyzer         Analyzer
	speechOutput     SpeechOutput
	configRepository ProviderConfigRepository
	jobRunner        JobRunner
	tapDetector      *TapDetector
	locale           string
	cycleTimeout     time.Duration
	logger           log.Interface
}

func NewOrchestrator(
	frameSource FrameSource,
	analyzer Analyzer,
	speechOutput SpeechOutput,
	configRepository ProviderConfigRepository,
	jobRunner JobRunner,
	clock clock.Clock,
	config *common.Config,
	logger log.Interface,
) *Orchestrator {
	o := &Orchestrator{
		state:            StateIdle,
		lastResponse:     InitialLastResponse,
		frameSource:      frameSource,
		analyzer:         analyzer,
		speechOutput:     speechOutput,
		configRepository: configRepository,
		jobRunner:        jobRunner,
		locale:           config.GetStringOrDefault(ConfigKeyLocale, DefaultLocale),
		cycleTimeout:     config.GetDurationOrDefault(ConfigKeyCycleTimeout, DefaultCycleTimeout),
		logger:           logger,
	}
	o.tapDetector = NewTapDetector(
		clock,
		config.GetDurationOrDefault(ConfigKeyTapWindow, DefaultTapWindow),
		config.GetIntOrDefault(ConfigKeyTapCount, DefaultTapCount),
		func() { o.Trigger("") },
		o.ShowSettings,
	)
	return o
}

// AddListener must be called before the first trigger.
func (o *Orchestrator) AddListener(listener Listener) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.listeners = append(o.listeners, listener)
}

// Welcome greets the user on startup.
func (o *Orchestrator) Welcome() {
	o.speechOutput.Speak(WelcomeMessage, o.locale)
}

// Trigger requests a description of what the camera sees. An empty query means DefaultQuery. The cycle itself runs
// on the job runner; Trigger only tells whether it was started.
func (o *Orchestrator) Trigger(query string) TriggerOutcome {
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultQuery
	}
	o.mutex.Lock()
	if o.state != StateIdle {
		o.mutex.Unlock()
		o.logger.WithField("state", o.State()).Debug("trigger ignored: a cycle is in flight")
		o.notify(func(l Listener) { l.TriggerRejected(TriggerOutcomeIgnored) })
		return TriggerOutcomeIgnored
	}
	config, err := o.configRepository.Load()
	if err != nil {
		o.logger.WithError(err).Warn("failed to load the provider settings")
		config = ProviderConfig{}
	}
	if !config.HasCredential() {
		o.settingsVisible = true
		o.mutex.Unlock()
		o.speechOutput.Speak(ConfigurePromptMessage, o.locale)
		o.notify(func(l Listener) {
			l.TriggerRejected(TriggerOutcomeNeedsConfiguration)
			l.SettingsVisibilityChanged(true)
		})
		return TriggerOutcomeNeedsConfiguration
	}
	o.state = StateAwaitingFrame
	o.mutex.Unlock()
	o.notify(func(l Listener) { l.StateChanged(StateAwaitingFrame) })
	cycleID := uuid.NewString()
	accepted := o.jobRunner.Enqueue(func() error {
		o.runCycle(cycleID, config, query)
		return nil
	})
	if !accepted {
		o.logger.Warn("trigger ignored: the job runner is stopped")
		o.setState(StateIdle)
		o.notify(func(l Listener) { l.TriggerRejected(TriggerOutcomeIgnored) })
		return TriggerOutcomeIgnored
	}
	return TriggerOutcomeStarted
}

// Tap feeds the tap detector. Taps are ignored while the settings are shown.
func (o *Orchestrator) Tap() bool {
	o.mutex.Lock()
	settingsVisible := o.settingsVisible
	o.mutex.Unlock()
	if settingsVisible {
		return false
	}
	o.tapDetector.Tap()
	return true
}

// ShowSettings asks the presentation layer to reveal the configuration surface.
func (o *Orchestrator) ShowSettings() {
	o.setSettingsVisible(true)
}

func (o *Orchestrator) CloseSettings() {
	o.setSettingsVisible(false)
}

// SaveSettings persists the new provider settings and closes the settings. A cycle already in flight keeps using
// the settings it started with.
func (o *Orchestrator) SaveSettings(config ProviderConfig) error {
	err := o.configRepository.Save(config)
	if err != nil {
		return err
	}
	o.setSettingsVisible(false)
	return nil
}

func (o *Orchestrator) Settings() (ProviderConfig, error) {
	return o.configRepository.Load()
}

// ToggleListening voice commands aren't supported: the user is told so.
func (o *Orchestrator) ToggleListening() {
	o.speechOutput.Speak(VoiceCommandsDisabledMessage, o.locale)
}

func (o *Orchestrator) StopSpeaking() {
	o.speechOutput.Stop()
}

func (o *Orchestrator) State() State {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.state
}

func (o *Orchestrator) Status() Status {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return Status{
		State:           o.state,
		LastResponse:    o.lastResponse,
		SettingsVisible: o.settingsVisible,
	}
}

// Close drops pending taps. Cycles in flight are left to the job runner.
func (o *Orchestrator) Close() {
	o.tapDetector.Stop()
}

func (o *Orchestrator) runCycle(cycleID string, config ProviderConfig, query string) {
	logger := o.logger.WithFields(log.Fields{
		"cycle":    cycleID,
		"provider": config.Provider,
	})
	outcome := CycleOutcomeFailed
	// Whatever happens below, the state machine goes back to Idle.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("cycle panicked: %v", r)
			o.setLastResponse(FormatFailure(Failure{Kind: FailureKindUnknown, Message: fmt.Sprint(r)}))
			o.speechOutput.Speak(ApologyMessage, o.locale)
			outcome = CycleOutcomeFailed
		}
		o.finishCycle(outcome)
		logger.WithField("outcome", outcome).Info("cycle completed")
	}()
	logger.WithField("query", query).Info("cycle started")
	o.speechOutput.Speak(AnalyzingMessage, o.locale)
	frame, ok := o.frameSource.CaptureFrame()
	if !ok {
		o.speechOutput.Speak(CannotSeeMessage, o.locale)
		outcome = CycleOutcomeNoFrame
		return
	}
	o.setState(StateAwaitingAnalysis)
	ctx, cancel := context.WithTimeout(context.Background(), o.cycleTimeout)
	defer cancel()
	startTime := time.Now()
	result := o.analyzer.Analyze(ctx, frame, query, config)
	logger = logger.WithDuration(time.Since(startTime))
	switch r := result.(type) {
	case Description:
		o.setLastResponse(r.Text)
		o.speechOutput.Speak(r.Text, o.locale)
		outcome = CycleOutcomeDescribed
	case Failure:
		logger.WithField("kind", r.Kind).WithField("message", r.Message).Warn("analysis failed")
		o.setLastResponse(FormatFailure(r))
		o.speechOutput.Speak(ApologyMessage, o.locale)
	default:
		o.setLastResponse(FormatFailure(Failure{Kind: FailureKindUnknown, Message: "no result"}))
		o.speechOutput.Speak(ApologyMessage, o.locale)
	}
}

func (o *Orchestrator) finishCycle(outcome CycleOutcome) {
	o.mutex.Lock()
	o.state = StateIdle
	lastResponse := o.lastResponse
	o.mutex.Unlock()
	o.notify(func(l Listener) {
		l.StateChanged(StateIdle)
		l.CycleCompleted(outcome, lastResponse)
	})
}

func (o *Orchestrator) setState(state State) {
	o.mutex.Lock()
	o.state = state
	o.mutex.Unlock()
	o.notify(func(l Listener) { l.StateChanged(state) })
}

func (o *Orchestrator) setLastResponse(lastResponse string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.lastResponse = lastResponse
}

func (o *Orchestrator) setSettingsVisible(visible bool) {
	o.mutex.Lock()
	o.settingsVisible = visible
	o.mutex.Unlock()
	o.notify(func(l Listener) { l.SettingsVisibilityChanged(visible) })
}

func (o *Orchestrator) notify(f func(l Listener)) {
	o.mutex.Lock()
	listeners := o.listeners
	o.mutex.Unlock()
	for _, listener := range listeners {
		f(listener)
	}
}
