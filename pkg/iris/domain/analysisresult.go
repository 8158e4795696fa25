package domain

import "fmt"

// FailureKind tells why an analysis failed. Only the model fallback cares about the kind: users hear the same
// apology whatever it is.
type FailureKind int

const (
	// FailureKindUnknown any transport or parsing problem
	FailureKindUnknown = FailureKind(iota)
	// FailureKindAuth invalid or missing credential; retrying with another model can't help
	FailureKindAuth
	// FailureKindNoCandidates the provider answered but returned nothing usable
	FailureKindNoCandidates
	// FailureKindHTTP a non-2xx response with a provider-supplied message
	FailureKindHTTP
	// FailureKindAllModelsExhausted every fallback model failed for non-auth reasons
	FailureKindAllModelsExhausted
)

func (k FailureKind) String() string {
	switch k {
	case FailureKindAuth:
		return "auth"
	case FailureKindNoCandidates:
		return "no candidates"
	case FailureKindHTTP:
		return "http"
	case FailureKindAllModelsExhausted:
		return "all models exhausted"
	default:
		return "unknown"
	}
}

// AnalysisResult is either a Description or a Failure.
type AnalysisResult interface {
	isAnalysisResult()
}

type Description struct {
	Text string
}

type Failure struct {
	Kind    FailureKind
	Message string
}

func (Description) isAnalysisResult() {}

func (Failure) isAnalysisResult() {}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// FormatFailure is what the user sees as the last response after a failed analysis.
func FormatFailure(failure Failure) string {
	return fmt.Sprintf("Error (%s): %s", failure.Kind, failure.Message)
}
