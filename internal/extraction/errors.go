package extraction

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure for the caller.
type Kind string

const (
	KindRequestValidation     Kind = "request_validation"
	KindUnsupportedPlatform   Kind = "unsupported_platform"
	KindAcquisitionExhausted  Kind = "acquisition_exhausted"
	KindProviderMisconfigured Kind = "provider_misconfigured"
	KindExtractionFailed      Kind = "extraction_failed"
	KindPersistenceFailed     Kind = "persistence_failed"
	KindInternal              Kind = "internal"
)

// Error is the single error type returned across the pipeline boundary.
// Message is safe to show to users; Err carries the provider detail for logs.
type Error struct {
	Kind     Kind
	Stage    Stage
	Platform Platform
	Provider string
	Message  string
	Hint     string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal for anything foreign.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// NotConfigured reports a missing credential for provider.
func NotConfigured(provider string) *Error {
	return &Error{
		Kind:     KindProviderMisconfigured,
		Provider: provider,
		Message:  provider + " is not configured",
		Hint:     "contact the site administrator",
	}
}

// IsNotConfigured reports whether err stems from a missing credential.
func IsNotConfigured(err error) bool {
	return KindOf(err) == KindProviderMisconfigured
}

func validationError(msg string) *Error {
	return &Error{Kind: KindRequestValidation, Stage: StageClassifying, Message: msg}
}

func persistenceError(err error) *Error {
	return &Error{
		Kind:    KindPersistenceFailed,
		Stage:   StagePersisting,
		Message: "failed to save recipe",
		Hint:    "try again",
		Err:     err,
	}
}
