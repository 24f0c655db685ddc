package finalize

import (
	"fmt"
	"strings"
)

// MissingFieldError reports a mandatory field the engine could not derive
// from the upstream manifest and the policy tables.
type MissingFieldError struct {
	// Field is the logical field name, qualified by the binary package
	// for per-binary fields (e.g. "Description of libhaskell-mylib-doc").
	Field string

	// Reason explains why derivation was impossible.
	Reason string
}

func (e *MissingFieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required field %s", e.Field)
	}
	return fmt.Sprintf("missing required field %s: %s", e.Field, e.Reason)
}

// Errors is the accumulated set of independent finalization failures.
// Independent field errors are collected rather than reported one at a
// time; unrecoverable structural errors abort finalization immediately
// and are returned alone.
type Errors []error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d finalization error(s): %s", len(e), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e Errors) Unwrap() []error { return e }
