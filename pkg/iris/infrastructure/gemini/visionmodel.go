package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/domain"
)

const (
	// ConfigKeyBaseURL the Gemini endpoint; overridden in tests
	ConfigKeyBaseURL = "geminiBaseURL"
	// ConfigKeyModels the models to try, from the most preferred to the least
	ConfigKeyModels = "geminiModels"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModels are tried in this order. Older models are kept around because availability differs between keys
// and regions.
var DefaultModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-001",
	"gemini-1.5-pro",
	"gemini-1.5-pro-001",
	"gemini-pro-vision",
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// VisionModel calls one Gemini model. The credential travels as the `key` query parameter.
type VisionModel struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewVisionModel(baseURL, model string, client *http.Client) *VisionModel {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &VisionModel{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  client,
	}
}

// NewVisionModels creates a model per configured model name, in the configured order.
func NewVisionModels(config *common.Config, client *http.Client) []*VisionModel {
	baseURL := config.GetStringOrDefault(ConfigKeyBaseURL, DefaultBaseURL)
	var models []*VisionModel
	for _, model := range config.GetStringSliceOrDefault(ConfigKeyModels, DefaultModels) {
		models = append(models, NewVisionModel(baseURL, model, client))
	}
	return models
}

func (v *VisionModel) Name() string {
	return v.model
}

func (v *VisionModel) Describe(ctx context.Context, request domain.DescribeRequest) (string, error) {
	body := generateContentRequest{
		Contents: []content{
			{
				Parts: []part{
					{Text: request.SystemPrompt + "\nUser Question: " + request.Query},
					{InlineData: &inlineData{
						MimeType: request.Image.MIMEType,
						Data:     request.Image.Base64,
					}},
				},
			},
		},
	}
	endpoint := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent?key=%s",
		v.baseURL,
		url.PathEscape(v.model),
		url.QueryEscape(request.Credential),
	)
	statusCode, data, err := common.PostJSON(ctx, v.client, endpoint, nil, body)
	if err != nil {
		return "", err
	}
	if statusCode < 200 || statusCode >= 300 {
		return "", domain.NewHTTPError(statusCode, errorMessage(statusCode, data))
	}
	var response generateContentResponse
	err = json.Unmarshal(data, &response)
	if err != nil {
		return "", fmt.Errorf("failed to parse the response of %s: %w", v.model, err)
	}
	if len(response.Candidates) == 0 {
		return "", domain.NewNoCandidatesError("no candidates returned by " + v.model)
	}
	var text strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	description := strings.TrimSpace(text.String())
	if description == "" {
		// A blocked candidate has a finish reason but no parts.
		reason := response.Candidates[0].FinishReason
		if reason == "" {
			reason = "empty"
		}
		return "", domain.NewNoCandidatesError(fmt.Sprintf("no text returned by %s (finish reason: %s)", v.model, reason))
	}
	return description, nil
}

func errorMessage(statusCode int, data []byte) string {
	var response errorResponse
	if json.Unmarshal(data, &response) == nil && response.Error.Message != "" {
		return response.Error.Message
	}
	return fmt.Sprintf("Gemini API failed with status %d", statusCode)
}
