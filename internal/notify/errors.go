package notify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is matched by every error returned from the Decode
// functions.
var ErrInvalidRequest = errors.New("invalid request")

// ErrMalformedBody is returned when the request body is not JSON.
var ErrMalformedBody = fmt.Errorf("%w: body is not valid JSON", ErrInvalidRequest)

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a JSON body does not satisfy the schema of
// its ingestion route.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// Has reports whether the given field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
