package domain

import (
	"fmt"
	"strings"

	"kgeyst.com/iris/pkg/common"
)

// Provider a remote AI backend family; each has its own request/response shape.
type Provider string

const (
	// ProviderGemini the primary provider, with model fallback.
	ProviderGemini = Provider("gemini")
	// ProviderOpenAI the secondary provider, one fixed model.
	ProviderOpenAI = Provider("openai")
)

// DefaultProvider is used until the user picks one.
const DefaultProvider = ProviderGemini

var SupportedProviders = []string{string(ProviderGemini), string(ProviderOpenAI)}

func ParseProvider(value string) (Provider, error) {
	if strings.TrimSpace(value) == "" {
		return DefaultProvider, nil
	}
	if !common.IsStringInSlice(value, SupportedProviders) {
		return "", fmt.Errorf("unsupported provider %q (expected one of %s)", value, strings.Join(SupportedProviders, ", "))
	}
	return Provider(strings.ToLower(strings.TrimSpace(value))), nil
}

// ProviderConfig which backend to call and with what secret. It's read at the start of every cycle and stays
// authoritative for that cycle only.
type ProviderConfig struct {
	Provider   Provider
	Credential string
}

// HasCredential no network call is ever attempted without a credential.
func (p ProviderConfig) HasCredential() bool {
	return strings.TrimSpace(p.Credential) != ""
}

// ProviderConfigRepository supplies and persists the provider settings.
type ProviderConfigRepository interface {
	Load() (ProviderConfig, error)
	Save(config ProviderConfig) error
}
