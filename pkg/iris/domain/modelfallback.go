package domain

import (
	"context"
	"time"

	"github.com/apex/log"
)

// DefaultModelTimeout bounds a single model call.
const DefaultModelTimeout = 30 * time.Second

// ModelFallback tries the models one after another, from the most to the least capable, until one succeeds.
// Authorization failures stop the loop: no other model will accept a bad key either.
// Models are never tried concurrently, that would only waste quota.
type ModelFallback struct {
	models       []VisionModel
	modelTimeout time.Duration
	logger       log.Interface
}

func NewModelFallback(models []VisionModel, modelTimeout time.Duration, logger log.Interface) *ModelFallback {
	return &ModelFallback{
		models:       models,
		modelTimeout: modelTimeout,
		logger:       logger,
	}
}

func (m *ModelFallback) Analyze(ctx context.Context, request DescribeRequest) AnalysisResult {
	if len(m.models) == 0 {
		return Failure{Kind: FailureKindAllModelsExhausted, Message: "no models configured"}
	}
	var lastFailure Failure
	for _, model := range m.models {
		if ctx.Err() != nil {
			return FailureFromError(ctx.Err())
		}
		logger := m.logger.WithField("model", model.Name())
		logger.Debug("trying model")
		text, err := describeWithTimeout(ctx, model, request, m.modelTimeout)
		if err == nil {
			return Description{Text: text}
		}
		lastFailure = FailureFromError(err)
		logger.WithError(err).Warn("model failed")
		if lastFailure.Kind == FailureKindAuth {
			return lastFailure
		}
	}
	return Failure{Kind: FailureKindAllModelsExhausted, Message: lastFailure.Message}
}

// SingleModel the provider path without fallback.
type SingleModel struct {
	model   VisionModel
	timeout time.Duration
	logger  log.Interface
}

func NewSingleModel(model VisionModel, timeout time.Duration, logger log.Interface) *SingleModel {
	return &SingleModel{
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *SingleModel) Analyze(ctx context.Context, request DescribeRequest) AnalysisResult {
	text, err := describeWithTimeout(ctx, s.model, request, s.timeout)
	if err != nil {
		s.logger.WithField("model", s.model.Name()).WithError(err).Warn("model failed")
		return FailureFromError(err)
	}
	return Description{Text: text}
}

// A zero timeout means no per-model deadline.
func describeWithTimeout(ctx context.Context, model VisionModel, request DescribeRequest, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return model.Describe(ctx, request)
}
