package domain

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kgeyst.com/iris/pkg/common"
)

type modelSpec struct {
	name  string
	err   error
	block bool
}

func newFakeModels(specs ...modelSpec) ([]VisionModel, *[]string) {
	attempts := &[]string{}
	mutex := &sync.Mutex{}
	var models []VisionModel
	for _, spec := range specs {
		models = append(models, &fakeVisionModel{
			name:     spec.name,
			err:      spec.err,
			block:    spec.block,
			attempts: attempts,
			mutex:    mutex,
		})
	}
	return models, attempts
}

func TestModelFallback_TriesModelsInOrderUntilOneSucceeds(t *testing.T) {
	models, attempts := newFakeModels(
		modelSpec{name: "m1", err: NewHTTPError(http.StatusNotFound, "models/m1 is not found")},
		modelSpec{name: "m2", err: NewHTTPError(http.StatusInternalServerError, "internal error")},
		modelSpec{name: "m3"},
		modelSpec{name: "m4"},
	)
	fallback := NewModelFallback(models, time.Second, common.NewDiscardLogger())

	result := fallback.Analyze(context.Background(), DescribeRequest{Query: "what's that?"})

	assert.Equal(t, Description{Text: "described by m3"}, result)
	assert.Equal(t, []string{"m1", "m2", "m3"}, *attempts)
}

func TestModelFallback_AuthFailureStopsImmediately(t *testing.T) {
	models, attempts := newFakeModels(
		modelSpec{name: "m1", err: NewHTTPError(http.StatusForbidden, "permission denied")},
		modelSpec{name: "m2"},
	)
	fallback := NewModelFallback(models, time.Second, common.NewDiscardLogger())

	result := fallback.Analyze(context.Background(), DescribeRequest{})

	assert.Equal(t, Failure{Kind: FailureKindAuth, Message: "permission denied"}, result)
	assert.Equal(t, []string{"m1"}, *attempts)
}

func TestModelFallback_AuthFailureDetectedFromMessage(t *testing.T) {
	models, attempts := newFakeModels(
		modelSpec{name: "m1", err: NewHTTPError(http.StatusNotFound, "not found")},
		modelSpec{name: "m2", err: NewHTTPError(http.StatusBadRequest, "API key not valid. Please pass a valid API key.")},
		modelSpec{name: "m3"},
	)
	fallback := NewModelFallback(models, time.Second, common.NewDiscardLogger())

	result := fallback.Analyze(context.Background(), DescribeRequest{})

	failure, ok := result.(Failure)
	assert.True(t, ok)
	assert.Equal(t, FailureKindAuth, failure.Kind)
	assert.Equal(t, []string{"m1", "m2"}, *attempts)
}

func TestModelFallback_AllModelsExhausted(t *testing.T) {
	models, attempts := newFakeModels(
		modelSpec{name: "m1", err: NewHTTPError(http.StatusNotFound, "m1 not found")},
		modelSpec{name: "m2", err: NewNoCandidatesError("No response candidates")},
		modelSpec{name: "m3", err: errors.New("connection reset by peer")},
	)
	fallback := NewModelFallback(models, time.Second, common.NewDiscardLogger())

	result := fallback.Analyze(context.Background(), DescribeRequest{})

	assert.Equal(t, Failure{Kind: FailureKindAllModelsExhausted, Message: "connection reset by peer"}, result)
	assert.Equal(t, []string{"m1", "m2", "m3"}, *attempts)
}

func TestModelFallback_TimedOutModelIsSkipped(t *testing.T) {
	models, attempts := newFakeModels(
		modelSpec{name: "slow", block: true},
		modelSpec{name: "fast"},
	)
	fallback := NewModelFallback(models, 20*time.Millisecond, common.NewDiscardLogger())

	result := fallback.Analyze(context.Background(), DescribeRequest{})

	assert.Equal(t, Description{Text: "described by fast"}, result)
	assert.Equal(t, []string{"slow", "fast"}, *attempts)
}

func TestModelFallback_StopsWhenCancelled(t *testing.T) {
	models, attempts := newFakeModels(modelSpec{name: "m1"})
	fallback := NewModelFallback(models, time.Second, common.NewDiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := fallback.Analyze(ctx, DescribeRequest{})

	failure, ok := result.(Failure)
	assert.True(t, ok)
	assert.Equal(t, FailureKindUnknown, failure.Kind)
	assert.Empty(t, *attempts)
}

func TestModelFallback_NoModels(t *testing.T) {
	fallback := NewModelFallback(nil, time.Second, common.NewDiscardLogger())
	result := fallback.Analyze(context.Background(), DescribeRequest{})
	assert.Equal(t, FailureKindAllModelsExhausted, result.(Failure).Kind)
}

func TestSingleModel(t *testing.T) {
	models, _ := newFakeModels(
		modelSpec{name: "ok"},
		modelSpec{name: "http", err: NewHTTPError(http.StatusTooManyRequests, "quota exceeded")},
		modelSpec{name: "transport", err: errors.New("dial tcp: no such host")},
	)
	logger := common.NewDiscardLogger()

	assert.Equal(t, Description{Text: "described by ok"}, NewSingleModel(models[0], time.Second, logger).Analyze(context.Background(), DescribeRequest{}))
	assert.Equal(t, Failure{Kind: FailureKindHTTP, Message: "quota exceeded"}, NewSingleModel(models[1], time.Second, logger).Analyze(context.Background(), DescribeRequest{}))
	assert.Equal(t, Failure{Kind: FailureKindUnknown, Message: "dial tcp: no such host"}, NewSingleModel(models[2], time.Second, logger).Analyze(context.Background(), DescribeRequest{}))
}

func TestModelFallback_NumbersInAMessageDoNotStopTheFallback(t *testing.T) {
	models, attempts := newFakeModels(
		modelSpec{name: "m1", err: NewHTTPError(http.StatusInternalServerError, "backend error at line 403")},
		modelSpec{name: "m2"},
	)

	result := NewModelFallback(models, time.Second, common.NewDiscardLogger()).Analyze(context.Background(), DescribeRequest{})

	assert.Equal(t, Description{Text: "described by m2"}, result)
	assert.Equal(t, []string{"m1", "m2"}, *attempts)
}

func TestIsAuthorizationFailure(t *testing.T) {
	assert.True(t, IsAuthorizationFailure(http.StatusUnauthorized, ""))
	assert.True(t, IsAuthorizationFailure(http.StatusForbidden, ""))
	assert.True(t, IsAuthorizationFailure(http.StatusBadRequest, "API key not valid"))
	assert.True(t, IsAuthorizationFailure(0, "Request is unauthenticated"))
	assert.False(t, IsAuthorizationFailure(0, "Request failed with 403"))
	assert.False(t, IsAuthorizationFailure(http.StatusTooManyRequests, "quota 401 exceeded for project 403"))
	assert.True(t, IsAuthorizationFailure(http.StatusBadRequest, "PERMISSION_DENIED"))
	assert.False(t, IsAuthorizationFailure(http.StatusNotFound, "models/gemini-pro-vision is not found for API version v1beta"+
		", or is not supported for generateContent"))
	assert.False(t, IsAuthorizationFailure(http.StatusInternalServerError, "internal error, code 4010"))
	assert.True(t, IsAuthorizationError(NewHTTPError(http.StatusForbidden, "nope")))
	assert.False(t, IsAuthorizationError(errors.New("403")))
}
