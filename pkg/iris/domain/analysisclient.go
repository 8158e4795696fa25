package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/juju/clock"
)

// DefaultSimulationDelay makes simulated answers feel like real ones.
const DefaultSimulationDelay = time.Second

// Analyzer see AnalysisClient.
type Analyzer interface {
	Analyze(ctx context.Context, frame Frame, query string, config ProviderConfig) AnalysisResult
}

// AnalysisClient turns a frame and a query into a description by calling the provider selected in the config.
// It never returns an error or panics: every problem comes back as a Failure.
type AnalysisClient struct {
	paths           map[Provider]ProviderPath
	systemPrompt    string
	simulationDelay time.Duration
	clock           clock.Clock
	logger          log.Interface
}

func NewAnalysisClient(
	paths map[Provider]ProviderPath,
	systemPrompt string,
	simulationDelay time.Duration,
	clock clock.Clock,
	logger log.Interface,
) *AnalysisClient {
	return &AnalysisClient{
		paths:           paths,
		systemPrompt:    systemPrompt,
		simulationDelay: simulationDelay,
		clock:           clock,
		logger:          logger,
	}
}

func (a *AnalysisClient) Analyze(ctx context.Context, frame Frame, query string, config ProviderConfig) (result AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Errorf("analysis panicked: %v", r)
			result = Failure{Kind: FailureKindUnknown, Message: fmt.Sprint(r)}
		}
	}()
	if !config.HasCredential() {
		return a.simulate(ctx)
	}
	path, ok := a.paths[config.Provider]
	if !ok {
		return Failure{Kind: FailureKindUnknown, Message: fmt.Sprintf("unsupported provider %q", config.Provider)}
	}
	if len(frame.Data) == 0 {
		return Failure{Kind: FailureKindUnknown, Message: "empty frame"}
	}
	return path.Analyze(ctx, DescribeRequest{
		Image:        NewImage(frame),
		Query:        query,
		SystemPrompt: a.systemPrompt,
		Credential:   config.Credential,
	})
}

// Lets the whole pipeline be exercised without a credential (and without the network).
func (a *AnalysisClient) simulate(ctx context.Context) AnalysisResult {
	select {
	case <-a.clock.After(a.simulationDelay):
		return Description{Text: SimulationModeNotice}
	case <-ctx.Done():
		return FailureFromError(ctx.Err())
	}
}
