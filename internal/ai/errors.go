package ai

import (
	"errors"
	"fmt"
)

var ErrMissingCredential = errors.New("ai: missing API credential")

const DefaultRemediation = "Set THETASK_AI_API_KEY (or GEMINI_API_KEY) to enable the AI planner and hints."

// CredentialError is returned by every call when no API key is configured. It matches
// ErrMissingCredential with errors.Is.
type CredentialError struct {
	Remediation string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingCredential, e.Remediation)
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// APIError is a non-2xx answer from the model endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ai: api status %d: %s", e.StatusCode, e.Message)
}
