package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/domain"
)

const (
	// ConfigKeyBaseURL the OpenAI endpoint; overridden in tests
	ConfigKeyBaseURL = "openaiBaseURL"
	// ConfigKeyModel the chat model to use
	ConfigKeyModel = "openaiModel"
	// ConfigKeyMaxTokens limits the length of a description
	ConfigKeyMaxTokens = "openaiMaxTokens"
)

const (
	DefaultBaseURL   = "https://api.openai.com"
	DefaultModel     = "gpt-4o"
	DefaultMaxTokens = 300
)

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageURL struct {
	URL string `json:"url"`
}

type imageContent struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// VisionModel calls the chat completions API with a bearer credential. There's no fallback for this provider.
type VisionModel struct {
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

func NewVisionModel(config *common.Config, client *http.Client) *VisionModel {
	if client == nil {
		client = http.DefaultClient
	}
	return &VisionModel{
		baseURL:   strings.TrimSuffix(config.GetStringOrDefault(ConfigKeyBaseURL, DefaultBaseURL), "/"),
		model:     config.GetStringOrDefault(ConfigKeyModel, DefaultModel),
		maxTokens: config.GetIntOrDefault(ConfigKeyMaxTokens, DefaultMaxTokens),
		client:    client,
	}
}

func (v *VisionModel) Name() string {
	return v.model
}

func (v *VisionModel) Describe(ctx context.Context, request domain.DescribeRequest) (string, error) {
	body := chatRequest{
		Model:     v.model,
		MaxTokens: v.maxTokens,
		Messages: []message{
			{
				Role:    "system",
				Content: request.SystemPrompt,
			},
			{
				Role: "user",
				Content: []any{
					textContent{Type: "text", Text: request.Query},
					imageContent{Type: "image_url", ImageURL: imageURL{URL: request.Image.DataURL()}},
				},
			},
		},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + request.Credential,
	}
	statusCode, data, err := common.PostJSON(ctx, v.client, v.baseURL+"/v1/chat/completions", headers, body)
	if err != nil {
		return "", err
	}
	if statusCode < 200 || statusCode >= 300 {
		return "", &domain.ProviderError{
			Kind:       domain.FailureKindHTTP,
			StatusCode: statusCode,
			Message:    errorMessage(data),
		}
	}
	var response chatResponse
	err = json.Unmarshal(data, &response)
	if err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", domain.NewNoCandidatesError("no choices in response")
	}
	description := strings.TrimSpace(response.Choices[0].Message.Content)
	if description == "" {
		return "", domain.NewNoCandidatesError("empty content in response")
	}
	return description, nil
}

func errorMessage(data []byte) string {
	var response errorResponse
	if json.Unmarshal(data, &response) == nil && response.Error.Message != "" {
		return response.Error.Message
	}
	return "OpenAI API failed"
}
