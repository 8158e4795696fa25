package domain

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeFrameSource struct {
	mutex    sync.Mutex
	frame    Frame
	ok       bool
	captures int
}

func newFakeFrameSource(ok bool) *fakeFrameSource {
	return &fakeFrameSource{
		frame: Frame{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"},
		ok:    ok,
	}
}

func (f *fakeFrameSource) CaptureFrame() (Frame, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.captures++
	return f.frame, f.ok
}

func (f *fakeFrameSource) Captures() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.captures
}

type fakeAnalyzer struct {
	mutex   sync.Mutex
	result  AnalysisResult
	panic   bool
	release chan struct{}
	configs []ProviderConfig
	queries []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ Frame, query string, config ProviderConfig) AnalysisResult {
	f.mutex.Lock()
	f.configs = append(f.configs, config)
	f.queries = append(f.queries, query)
	release := f.release
	f.mutex.Unlock()
	if release != nil {
		<-release
	}
	if f.panic {
		panic("analyzer exploded")
	}
	return f.result
}

func (f *fakeAnalyzer) Calls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.configs)
}

func (f *fakeAnalyzer) Configs() []ProviderConfig {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]ProviderConfig(nil), f.configs...)
}

type fakeSpeechOutput struct {
	mutex      sync.Mutex
	utterances []string
	stops      int
}

func (f *fakeSpeechOutput) Speak(text, _ string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.utterances = append(f.utterances, text)
}

func (f *fakeSpeechOutput) Stop() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.stops++
}

func (f *fakeSpeechOutput) Utterances() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.utterances...)
}

type fakeConfigRepository struct {
	mutex  sync.Mutex
	config ProviderConfig
	err    error
}

func (f *fakeConfigRepository) Load() (ProviderConfig, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.config, f.err
}

func (f *fakeConfigRepository) Save(config ProviderConfig) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.config = config
	return nil
}

type recordingListener struct {
	NopListener
	mutex      sync.Mutex
	completed  []CycleOutcome
	rejected   []TriggerOutcome
	visibility []bool
}

func (r *recordingListener) CycleCompleted(outcome CycleOutcome, _ string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.completed = append(r.completed, outcome)
}

func (r *recordingListener) TriggerRejected(outcome TriggerOutcome) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.rejected = append(r.rejected, outcome)
}

func (r *recordingListener) SettingsVisibilityChanged(visible bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.visibility = append(r.visibility, visible)
}

func (r *recordingListener) Completed() []CycleOutcome {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]CycleOutcome(nil), r.completed...)
}

// fakeVisionModel fails with `err` (if set) or answers with its own name.
type fakeVisionModel struct {
	name     string
	err      error
	block    bool
	attempts *[]string
	mutex    *sync.Mutex
	requests []DescribeRequest
}

func (f *fakeVisionModel) Name() string {
	return f.name
}

func (f *fakeVisionModel) Describe(ctx context.Context, request DescribeRequest) (string, error) {
	f.mutex.Lock()
	*f.attempts = append(*f.attempts, f.name)
	f.requests = append(f.requests, request)
	f.mutex.Unlock()
	if f.block {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "", errors.New("test model was not cancelled")
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return "described by " + f.name, nil
}

func (f *fakeAnalyzer) Queries() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeSpeechOutput) Stops() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.stops
}

func (r *recordingListener) Rejected() []TriggerOutcome {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]TriggerOutcome(nil), r.rejected...)
}

func (r *recordingListener) Visibility() []bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]bool(nil), r.visibility...)
}
