package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/abhisek/essaylens/internal/errs"
)

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema. Providers surface it wrapped in an
// *errs.ServiceError.
type ErrInvalidResponse struct {
	Content json.RawMessage
	// Field is the JSON pointer of the failing value, when known.
	Field string
	// Truncated is set when generation stopped at the token limit.
	Truncated bool
	Err       error
}

func (e *ErrInvalidResponse) Error() string {
	msg := "invalid LLM response"
	if e.Field != "" {
		msg += " at " + e.Field
	}
	if e.Truncated {
		msg += " (truncated at max tokens)"
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// providerError wraps a failure from the named provider as an llm
// ServiceError. status is the HTTP status when the SDK exposed one.
func providerError(provider string, status int, err error) error {
	return &errs.ServiceError{Service: "llm", Op: provider, StatusCode: status, Err: err}
}

// IsRateLimited reports whether err carries a 429 from an LLM provider.
func IsRateLimited(err error) bool {
	var se *errs.ServiceError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

// IsInvalidResponse reports whether err wraps an *ErrInvalidResponse.
func IsInvalidResponse(err error) bool {
	var ir *ErrInvalidResponse
	return errors.As(err, &ir)
}
