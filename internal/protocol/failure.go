package protocol

import "fmt"

// Reason tags a terminal protocol failure. Protocol errors always surface as
// a tagged Failure so the caller can render one specific message per reason.
type Reason string

const (
	// ReasonNoExecutor: the handshake exhausted its probe/inject/re-probe cycle.
	ReasonNoExecutor Reason = "NO_EXECUTOR"
	// ReasonInjectionFailed: the host rejected installing the executor.
	ReasonInjectionFailed Reason = "INJECTION_FAILED"
	// ReasonTimeout: dispatch got no correlated response within the bound.
	ReasonTimeout Reason = "TIMEOUT"
	// ReasonInvalidPayload: the wire exchange succeeded but the payload is
	// structurally malformed.
	ReasonInvalidPayload Reason = "INVALID_PAYLOAD"
	// ReasonExtraction: the executor reported an extraction error.
	ReasonExtraction Reason = "EXTRACTION_FAILED"
	// ReasonUnknown wraps any unexpected error with its message.
	ReasonUnknown Reason = "UNKNOWN"
)

// Failure is a terminal capture failure with its tagged reason.
type Failure struct {
	Reason  Reason
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s", f.Reason, f.Message)
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Reason, f.Err)
	}
	return string(f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// UserMessage renders the single human-readable line shown for this failure.
func (f *Failure) UserMessage() string {
	switch f.Reason {
	case ReasonNoExecutor:
		return "Could not reach the page extractor. Reload the page and try again."
	case ReasonInjectionFailed:
		return "Could not install the page extractor on this page."
	case ReasonTimeout:
		return "The page did not respond in time. Try again once it finishes loading."
	case ReasonInvalidPayload:
		return "The page returned an unreadable result."
	case ReasonExtraction:
		if f.Message != "" {
			return "Extraction failed: " + f.Message
		}
		return "Extraction failed on this page."
	default:
		return "Capture failed unexpectedly: " + f.Error()
	}
}

func failf(reason Reason, err error, format string, args ...any) *Failure {
	return &Failure{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
