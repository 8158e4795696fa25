package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgeyst.com/iris/pkg/iris/domain"
	"kgeyst.com/iris/pkg/iris/infrastructure/metrics"
)

type stubVisionModel struct {
	response string
	err      error
}

func (s *stubVisionModel) Name() string {
	return "stub-model"
}

func (s *stubVisionModel) Describe(context.Context, domain.DescribeRequest) (string, error) {
	return s.response, s.err
}

func newMemoryLogger() (*log.Logger, *memory.Handler) {
	handler := memory.New()
	return &log.Logger{Handler: handler, Level: log.DebugLevel}, handler
}

func TestVisionModelDecorator_PassesThrough(t *testing.T) {
	logger, handler := newMemoryLogger()
	attempts := metrics.ModelAttemptsTotal.WithLabelValues("gemini", "stub-model", "ok")
	before := testutil.ToFloat64(attempts)
	model := NewVisionModelDecorator(&stubVisionModel{response: "A tree."}, domain.ProviderGemini, logger)

	response, err := model.Describe(context.Background(), domain.DescribeRequest{Query: "what?", Credential: "top-secret"})

	require.NoError(t, err)
	assert.Equal(t, "A tree.", response)
	assert.Equal(t, "stub-model", model.Name())
	assert.Equal(t, before+1, testutil.ToFloat64(attempts))
	require.Len(t, handler.Entries, 2)
	for _, entry := range handler.Entries {
		assert.Equal(t, "stub-model", entry.Fields.Get("model"))
		for _, value := range entry.Fields {
			assert.NotEqual(t, "top-secret", value)
		}
	}
}

func TestVisionModelDecorator_RecordsFailureKind(t *testing.T) {
	logger, _ := newMemoryLogger()
	attempts := metrics.ModelAttemptsTotal.WithLabelValues("openai", "stub-model", "auth")
	before := testutil.ToFloat64(attempts)
	providerError := domain.NewHTTPError(401, "Incorrect API key provided")
	model := NewVisionModelDecorator(&stubVisionModel{err: providerError}, domain.ProviderOpenAI, logger)

	_, err := model.Describe(context.Background(), domain.DescribeRequest{})

	assert.True(t, errors.Is(err, providerError))
	assert.Equal(t, before+1, testutil.ToFloat64(attempts))
}

func TestDecorateAll(t *testing.T) {
	logger, _ := newMemoryLogger()
	models := DecorateAll([]*stubVisionModel{{}, {}}, domain.ProviderGemini, logger)
	assert.Len(t, models, 2)
}
