package services

import "fmt"

// ValidationError reports a malformed input listing. It is fatal to that
// listing's chunking only; batch processing continues past it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid listing: field %q %s", e.Field, e.Reason)
}

// RetrievalError wraps a similarity-search failure other than a filter
// rejection. It is surfaced to the caller as a failed answer and never
// retried.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("context retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
