package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/domain"
)

func newTestModel(serverURL string, client *http.Client) *VisionModel {
	return NewVisionModel(common.NewConfig(map[string]any{ConfigKeyBaseURL: serverURL}), client)
}

func newTestRequest() domain.DescribeRequest {
	return domain.DescribeRequest{
		Image:        domain.Image{MIMEType: "image/png", Base64: "iVBORw0KGgo="},
		Query:        "Read the sign.",
		SystemPrompt: "Be brief.",
		Credential:   "sk-test",
	}
}

func TestVisionModel_Describe(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"The sign says EXIT."}}]}`))
	}))
	defer server.Close()

	text, err := newTestModel(server.URL, server.Client()).Describe(context.Background(), newTestRequest())

	require.NoError(t, err)
	assert.Equal(t, "The sign says EXIT.", text)
	assert.Equal(t, "gpt-4o", received["model"])
	assert.Equal(t, float64(300), received["max_tokens"])
	messages := received["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "Be brief."}, messages[0])
	userContent := messages[1].(map[string]any)["content"].([]any)
	require.Len(t, userContent, 2)
	assert.Equal(t, map[string]any{"type": "text", "text": "Read the sign."}, userContent[0])
	assert.Equal(t, map[string]any{
		"type":      "image_url",
		"image_url": map[string]any{"url": "data:image/png;base64,iVBORw0KGgo="},
	}, userContent[1])
}

func TestVisionModel_HTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	}))
	defer server.Close()

	result := domain.NewSingleModel(newTestModel(server.URL, server.Client()), 0, common.NewDiscardLogger()).
		Analyze(context.Background(), newTestRequest())

	assert.Equal(t, domain.Failure{Kind: domain.FailureKindHTTP, Message: "Rate limit reached"}, result)
}

func TestVisionModel_HTTPFailureWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestModel(server.URL, server.Client()).Describe(context.Background(), newTestRequest())

	var providerError *domain.ProviderError
	require.ErrorAs(t, err, &providerError)
	assert.Equal(t, "OpenAI API failed", providerError.Message)
	assert.Equal(t, http.StatusBadGateway, providerError.StatusCode)
}

func TestVisionModel_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestModel(server.URL, server.Client()).Describe(context.Background(), newTestRequest())

	var providerError *domain.ProviderError
	require.ErrorAs(t, err, &providerError)
	assert.Equal(t, domain.FailureKindNoCandidates, providerError.Kind)
}

func TestVisionModel_EmptyContentIsNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""},"finish_reason":"content_filter"}]}`))
	}))
	defer server.Close()

	result := domain.NewSingleModel(newTestModel(server.URL, server.Client()), 0, common.NewDiscardLogger()).
		Analyze(context.Background(), newTestRequest())

	failure, ok := result.(domain.Failure)
	require.True(t, ok)
	assert.Equal(t, domain.FailureKindNoCandidates, failure.Kind)
}

func TestVisionModel_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	result := domain.NewSingleModel(newTestModel(baseURL, nil), 0, common.NewDiscardLogger()).
		Analyze(context.Background(), newTestRequest())

	failure, ok := result.(domain.Failure)
	require.True(t, ok)
	assert.Equal(t, domain.FailureKindUnknown, failure.Kind)
	assert.Contains(t, failure.Message, "failed to send request")
	assert.NotContains(t, failure.Message, "sk-test")
	assert.NotContains(t, failure.Message, baseURL)
}

func TestVisionModel_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	result := domain.NewSingleModel(newTestModel(server.URL, server.Client()), 0, common.NewDiscardLogger()).
		Analyze(context.Background(), newTestRequest())

	failure, ok := result.(domain.Failure)
	require.True(t, ok)
	assert.Equal(t, domain.FailureKindUnknown, failure.Kind)
}
