package logging

import (
	"context"
	"time"

	"github.com/apex/log"

	"kgeyst.com/iris/pkg/iris/domain"
	"kgeyst.com/iris/pkg/iris/infrastructure/metrics"
)

type visionModelDecorator struct {
	wrappedVisionModel domain.VisionModel
	provider           domain.Provider
	logger             log.Interface
}

// NewVisionModelDecorator logs every call to the wrapped model and records it in the metrics. The credential is
// never logged.
func NewVisionModelDecorator(wrappedVisionModel domain.VisionModel, provider domain.Provider, logger log.Interface) domain.VisionModel {
	return &visionModelDecorator{
		wrappedVisionModel: wrappedVisionModel,
		provider:           provider,
		logger:             logger,
	}
}

func (v *visionModelDecorator) Name() string {
	return v.wrappedVisionModel.Name()
}

func (v *visionModelDecorator) Describe(ctx context.Context, request domain.DescribeRequest) (string, error) {
	logger := v.logger.WithFields(log.Fields{
		"provider": v.provider,
		"model":    v.Name(),
	})
	logger.WithField("query", request.Query).WithField("imageSize", len(request.Image.Base64)).Debug("describe request")
	t := time.Now()
	response, err := v.wrappedVisionModel.Describe(ctx, request)
	elapsed := time.Since(t)
	metrics.ModelAttemptDurationSeconds.WithLabelValues(string(v.provider), v.Name()).Observe(elapsed.Seconds())
	if err != nil {
		failure := domain.FailureFromError(err)
		metrics.ModelAttemptsTotal.WithLabelValues(string(v.provider), v.Name(), failure.Kind.String()).Inc()
		logger.WithDuration(elapsed).WithError(err).Debug("describe failed")
		return "", err
	}
	metrics.ModelAttemptsTotal.WithLabelValues(string(v.provider), v.Name(), "ok").Inc()
	logger.WithDuration(elapsed).WithField("response", response).Debug("describe response")
	return response, nil
}

// DecorateAll see NewVisionModelDecorator.
func DecorateAll[T domain.VisionModel](models []T, provider domain.Provider, logger log.Interface) []domain.VisionModel {
	result := make([]domain.VisionModel, 0, len(models))
	for _, model := range models {
		result = append(result, NewVisionModelDecorator(model, provider, logger))
	}
	return result
}
