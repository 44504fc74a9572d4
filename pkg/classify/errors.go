package classify

import (
	"errors"
	"fmt"
)

// Reason classifies a collaborator failure.
type Reason string

const (
	ReasonTimeout   Reason = "timeout"
	ReasonMalformed Reason = "malformed"
	ReasonTransport Reason = "transport"
)

// CollaboratorError wraps a failed collaborator exchange. It is always
// soft: the calling workflow degrades to its documented fallback instead
// of surfacing the failure to the end user.
type CollaboratorError struct {
	Reason Reason
	Err    error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("classify: collaborator %s: %v", e.Reason, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Timeoutf builds a timeout-reason CollaboratorError.
func Timeoutf(format string, args ...interface{}) error {
	return &CollaboratorError{Reason: ReasonTimeout, Err: fmt.Errorf(format, args...)}
}

// Malformedf builds a malformed-response CollaboratorError.
func Malformedf(format string, args ...interface{}) error {
	return &CollaboratorError{Reason: ReasonMalformed, Err: fmt.Errorf(format, args...)}
}

// Transportf builds a transport-failure CollaboratorError.
func Transportf(format string, args ...interface{}) error {
	return &CollaboratorError{Reason: ReasonTransport, Err: fmt.Errorf(format, args...)}
}

// ReasonOf extracts the failure reason from err, defaulting to transport
// for errors that did not come through this package.
func ReasonOf(err error) Reason {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ReasonTransport
}
