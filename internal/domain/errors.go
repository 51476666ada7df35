package domain

import "errors"

type FailureKind string

const (
	KindProviderUnavailable FailureKind = "provider_unavailable"
	KindMalformedResponse   FailureKind = "malformed_response"
	KindNoDataAvailable     FailureKind = "no_data_available"
	KindInsufficientHistory FailureKind = "insufficient_history"
	KindAnalysisError       FailureKind = "analysis_error"
	KindUnknown             FailureKind = "unknown"
)

var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrNoDataAvailable     = errors.New("no data available")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrAnalysis            = errors.New("analysis error")
)

// KindOf classifies err against the failure taxonomy. An exhausted fallback
// chain wraps its per-source causes, so NoDataAvailable is matched first.
func KindOf(err error) FailureKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoDataAvailable):
		return KindNoDataAvailable
	case errors.Is(err, ErrProviderUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrInsufficientHistory):
		return KindInsufficientHistory
	case errors.Is(err, ErrAnalysis):
		return KindAnalysisError
	default:
		return KindUnknown
	}
}
