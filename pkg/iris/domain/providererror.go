package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
)

// Matches what providers say when the key is wrong or lacks permissions. Status codes are checked separately: bare
// numbers in a message say nothing.
var authorizationMessageRegexp = regexp.MustCompile(`(?i)api[ _-]?key|permission[ _]denied|unauthenticated|unauthorized`)

// ProviderError a failure reported by a remote provider (as opposed to a transport-level problem).
type ProviderError struct {
	Kind       FailureKind
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// NewHTTPError classifies a non-2xx response: authorization problems get FailureKindAuth so that the model
// fallback stops right away.
func NewHTTPError(statusCode int, message string) *ProviderError {
	kind := FailureKindHTTP
	if IsAuthorizationFailure(statusCode, message) {
		kind = FailureKindAuth
	}
	return &ProviderError{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    message,
	}
}

func NewNoCandidatesError(message string) *ProviderError {
	return &ProviderError{
		Kind:    FailureKindNoCandidates,
		Message: message,
	}
}

func IsAuthorizationFailure(statusCode int, message string) bool {
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return true
	}
	return authorizationMessageRegexp.MatchString(message)
}

// IsAuthorizationError see IsAuthorizationFailure.
func IsAuthorizationError(err error) bool {
	var providerError *ProviderError
	return errors.As(err, &providerError) && providerError.Kind == FailureKindAuth
}

// FailureFromError folds any error into a Failure value.
func FailureFromError(err error) Failure {
	var providerError *ProviderError
	if errors.As(err, &providerError) {
		return Failure{Kind: providerError.Kind, Message: providerError.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Failure{Kind: FailureKindUnknown, Message: "request timed out"}
	}
	if err == nil {
		return Failure{Kind: FailureKindUnknown, Message: "unknown error"}
	}
	return Failure{Kind: FailureKindUnknown, Message: err.Error()}
}
