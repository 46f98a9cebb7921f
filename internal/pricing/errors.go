package pricing

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when the course id is missing or malformed.
var ErrValidation = errors.New("courseId is required")

// ErrPriceNotFound is returned when neither a base product nor a course base
// price exists.
var ErrPriceNotFound = errors.New("price not found")

// UpstreamReadError wraps a failed read from the rule store.  Callers that
// can degrade (the "from $X" display price) log it and carry on.
type UpstreamReadError struct {
	Op  string
	Err error
}

func (e *UpstreamReadError) Error() string {
	return fmt.Sprintf("pricing: %s: %v", e.Op, e.Err)
}

func (e *UpstreamReadError) Unwrap() error { return e.Err }
