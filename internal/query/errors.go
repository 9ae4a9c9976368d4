package query

import (
	"errors"
	"fmt"
)

// ErrNoMatch is the interpreter-internal signal that local pattern
// matching found nothing to work with. It is never user-visible; the
// resolver reacts to it by trying the next interpreter in the chain.
var ErrNoMatch = errors.New("no query pattern matched")

// ErrUnresolvable means every interpretation path failed. The HTTP
// layer surfaces it as "could not understand the query".
var ErrUnresolvable = errors.New("query could not be resolved")

// ErrExternalService wraps network, timeout and malformed-response
// failures from the fallback interpreter. It is logged and collapsed
// into ErrUnresolvable before reaching the user.
var ErrExternalService = errors.New("external interpreter failed")

// UnknownFieldError reports a grouping or target field absent from the
// schema. It is surfaced distinctly from ErrUnresolvable so the UI can
// suggest valid field names.
type UnknownFieldError struct {
	Field string
	Known []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q (known fields: %v)", e.Field, e.Known)
}
