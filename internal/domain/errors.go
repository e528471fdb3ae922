package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a request that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrScoresRequired signals a criminal case submitted without sentencing scores.
	ErrScoresRequired = errors.New("criminal cases require criminal_scores (0-10 per axis)")
	// ErrDataLoad signals a malformed persisted corpus record.
	ErrDataLoad = errors.New("corpus data load failed")
	// ErrGenerationTimeout signals that the text-generation call hit its deadline.
	ErrGenerationTimeout = errors.New("generation timed out")
	// ErrGenerationUnavailable signals a transport or provider failure of the generation call.
	ErrGenerationUnavailable = errors.New("generation provider unavailable")
	// ErrJournalDisabled signals that the ruling journal is not configured.
	ErrJournalDisabled = errors.New("ruling journal is disabled")
)

// LoadError wraps ErrDataLoad with the offending record position.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s line %d: %v", ErrDataLoad.Error(), e.Path, e.Line, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error { return []error{ErrDataLoad, e.Err} }

// NewLoadError creates a load error for path:line.
func NewLoadError(path string, line int, err error) error {
	return &LoadError{Path: path, Line: line, Err: err}
}
