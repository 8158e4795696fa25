package domain

import "context"

// DescribeRequest everything a vision model needs for one call.
type DescribeRequest struct {
	Image        Image
	Query        string
	SystemPrompt string
	Credential   string
}

// VisionModel a remote multimodal model which turns an image and a question into text.
type VisionModel interface {
	// Name the model identifier as known to the provider. Useful for debugging.
	Name() string
	// Describe makes one remote call. Provider-reported failures should be returned as *ProviderError, everything
	// else is treated as FailureKindUnknown.
	Describe(ctx context.Context, request DescribeRequest) (string, error)
}

// ProviderPath how a provider family is called: with a fallback over several models, or with a single one.
type ProviderPath interface {
	Analyze(ctx context.Context, request DescribeRequest) AnalysisResult
}
