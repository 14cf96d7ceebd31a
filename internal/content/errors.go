package content

import (
	"errors"
	"fmt"
)

// ErrNotFound reports an unknown subject or topic id. Callers match it with
// errors.Is; the wrapping message carries the offending id.
var ErrNotFound = errors.New("not found")

// ValidationError reports input that fails a shape check (empty name, bad
// category). The operation is rejected synchronously with no state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a failed save or load of the subject tree. A save
// failure does not roll back the in-memory mutation that triggered it; the
// mutation already succeeded logically, and data loss is possible if the
// process ends before the next successful save.
type PersistenceError struct {
	Op  string // "save" or "load"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
