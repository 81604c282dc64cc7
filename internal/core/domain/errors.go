// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDeleteInFlight  = errors.New("delete already in progress")
	ErrBulkInProgress  = errors.New("bulk delete already in progress")
	ErrNotConfirming   = errors.New("no bulk delete awaiting confirmation")
	ErrNothingSelected = errors.New("no resources selected")
	ErrDuplicateSubmit = errors.New("submission already in progress")
)

// NetworkError is a transport failure, a 5xx, or a response that could not be decoded.
type NetworkError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: server returned %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a 4xx rejection. Message is the server text, unchanged.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string { return e.Message }

// OpKind classifies which cache operation failed.
type OpKind string

const (
	OpFetch      OpKind = "fetch"
	OpMutation   OpKind = "mutation"
	OpDelete     OpKind = "delete"
	OpBulkDelete OpKind = "bulk_delete"
)

// OpError is what the collection cache records as its last error.
type OpError struct {
	Kind     OpKind
	Resource ResourceKind
	ID       int64
	Err      error
}

func (e *OpError) Error() string {
	switch e.Kind {
	case OpFetch:
		return fmt.Sprintf("failed to load %s: %v", e.Resource, e.Err)
	case OpDelete:
		return fmt.Sprintf("failed to delete %s %d: %v", e.Resource, e.ID, e.Err)
	case OpBulkDelete:
		return fmt.Sprintf("failed to delete %s: %v", e.Resource, e.Err)
	default:
		if e.ID != 0 {
			return fmt.Sprintf("failed to save %s %d: %v", e.Resource, e.ID, e.Err)
		}
		return fmt.Sprintf("failed to save %s: %v", e.Resource, e.Err)
	}
}

func (e *OpError) Unwrap() error { return e.Err }

// IsKind reports whether err is an OpError of the given kind.
func IsKind(err error, kind OpKind) bool {
	var op *OpError
	return errors.As(err, &op) && op.Kind == kind
}

// BulkDeleteError aggregates the failures of one bulk delete.
// RolledBack lists every id restored to the collection.
type BulkDeleteError struct {
	Failed     map[int64]error
	RolledBack []int64
}

func (e *BulkDeleteError) Error() string {
	ids := e.FailedIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("%d of the selected deletes failed (ids %s)", len(ids), strings.Join(parts, ", "))
}

// Unwrap exposes the per-id causes to errors.Is and errors.As.
func (e *BulkDeleteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.FailedIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

// FailedIDs returns the failed ids in ascending order.
func (e *BulkDeleteError) FailedIDs() []int64 {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UserMessage renders err for display. Server validation text is passed through as is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) && !IsKind(err, OpBulkDelete) {
		return ve.Message
	}
	return err.Error()
}
