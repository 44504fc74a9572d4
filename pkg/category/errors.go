package category

import (
	"errors"
	"fmt"
)

// Kind enumerates the ways a tree mutation can be rejected.
type Kind string

const (
	KindDepthExceeded        Kind = "depth_exceeded"
	KindCycle                Kind = "cycle"
	KindNotFound             Kind = "not_found"
	KindDuplicateAssociation Kind = "duplicate_association"
)

// ValidationError rejects a single offending operation. It is always
// synchronous and never leaves the tree in a partially mutated state.
type ValidationError struct {
	Kind   Kind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("category: %s: %s", e.Kind, e.Detail)
}

// IsKind reports whether err is a ValidationError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}

func errDepthExceeded(format string, args ...interface{}) error {
	return &ValidationError{Kind: KindDepthExceeded, Detail: fmt.Sprintf(format, args...)}
}

func errCycle(format string, args ...interface{}) error {
	return &ValidationError{Kind: KindCycle, Detail: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...interface{}) error {
	return &ValidationError{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func errDuplicate(format string, args ...interface{}) error {
	return &ValidationError{Kind: KindDuplicateAssociation, Detail: fmt.Sprintf(format, args...)}
}

// PersistenceError reports that the tree document could not be written or
// read. The in-memory tree remains valid and usable for reads; the failed
// mutation must be surfaced loudly rather than silently dropped.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("category: persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
