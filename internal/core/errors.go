package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the ingestion pipeline. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrExtraction = errors.New("extraction error")
	ErrGeneration = errors.New("generation error")
	ErrStorage    = errors.New("storage error")
)

// Error carries the kind of a pipeline failure alongside its cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ValidationError reports caller input that cannot produce a document.
// Its message is safe to show to clients.
func ValidationError(msg string) error {
	return &Error{Kind: ErrValidation, Op: msg}
}

func ExtractionError(op string, err error) error {
	return &Error{Kind: ErrExtraction, Op: op, Err: err}
}

func GenerationError(op string, err error) error {
	return &Error{Kind: ErrGeneration, Op: op, Err: err}
}

func StorageError(op string, err error) error {
	return &Error{Kind: ErrStorage, Op: op, Err: err}
}
