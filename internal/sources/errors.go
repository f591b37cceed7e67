package sources

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for source files whose format is not known
var ErrUnsupportedFormat = errors.New("unsupported source format")

// LoadError records which source failed to load and from where
type LoadError struct {
	Source string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Source, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
