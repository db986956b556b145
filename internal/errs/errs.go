// Package errs defines the error taxonomy shared by the evaluation pipeline
// and the collaborator adapters.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError indicates a malformed or incomplete typing log.
type ValidationError struct {
	// Field is the JSON pointer of the offending field, or "" when the
	// document as a whole could not be read.
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid typing log at %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid typing log: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ServiceError indicates an external collaborator (embedding, similarity,
// grammar, classifier, LLM) was unreachable or returned a malformed result.
// It is never retried by the pipeline.
type ServiceError struct {
	Service    string // embedding, similarity, grammar, classifier, llm
	Op         string // backend-specific operation, e.g. "tei /embed"
	StatusCode int    // HTTP status when known, else 0
	Err        error
}

func (e *ServiceError) Error() string {
	msg := e.Service + " service"
	if e.Op != "" {
		msg += " (" + e.Op + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Service wraps err as a ServiceError unless it already is one.
func Service(service, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}

// Malformed reports a collaborator response that could not be interpreted.
func Malformed(service, op, format string, args ...any) error {
	return &ServiceError{Service: service, Op: op, Err: fmt.Errorf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsService reports whether err is or wraps a ServiceError.
func IsService(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
