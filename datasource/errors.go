package datasource

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies why a load failed
type ErrorKind string

const (
	KindTransport ErrorKind = "transport" // the resource could not be reached
	KindStatus    ErrorKind = "status"    // the resource answered with a non-success status
	KindRead      ErrorKind = "read"      // the body could not be read
	KindCanceled  ErrorKind = "canceled"  // the load was canceled or timed out
)

// LoadError is returned by sources and the Loader when a forecast cannot be read
type LoadError struct {
	Kind       ErrorKind
	Source     string
	StatusCode int // set for KindStatus
	Err        error
}

func (e *LoadError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("load %s: %s (status %d): %v", e.Source, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// classify wraps err into a *LoadError, keeping an existing one untouched
func classify(source string, kind ErrorKind, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindCanceled
	}
	return &LoadError{Kind: kind, Source: source, Err: err}
}
