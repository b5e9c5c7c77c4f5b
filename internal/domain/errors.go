package domain

import (
	"errors"
	"fmt"
)

var (
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrSubmitInFlight     = errors.New("a submission is already in progress for this workspace")
	ErrStaleFetch         = errors.New("assignment fetch result discarded: workspace changed while loading")
	ErrRowOutOfRange      = errors.New("row position out of range")
	ErrUnknownReportType  = errors.New("unknown report type")
	ErrInvalidBatchDate   = errors.New("batch date must be YYYY-MM-DD")
	ErrDocumentGeneration = errors.New("document generation failed")
)

// Validation error codes. The engine reports exactly one per failed batch.
const (
	CodeMissingHeaderField = "missing_header_field"
	CodeInvalidHeaderField = "invalid_header_field"
	CodeNoRows             = "no_rows"
	CodeSerialNotFound     = "serial_not_found"
	CodeRowUnresolved      = "row_unresolved"
	CodeMissingTestResult  = "missing_test_result"
	CodeInvalidTestResult  = "invalid_test_result"
	CodeDuplicateDevice    = "duplicate_device"
)

// ContextError reports missing operating context (user, lab, device type, purpose).
type ContextError struct {
	Field string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("missing context: %s", e.Field)
}

// ValidationError is a header, row or cross-row rule violation.
// Row and OtherRow are 1-based; zero means not row-specific.
type ValidationError struct {
	Code     string `json:"code"`
	Field    string `json:"field,omitempty"`
	Row      int    `json:"row,omitempty"`
	OtherRow int    `json:"other_row,omitempty"`
	Message  string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError wraps a network or backend failure during fetch or submit.
// Detail carries the backend-provided message when one was returned.
type TransportError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	default:
		return e.Op + ": request failed"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// DocumentGenerationError is a post-submission collaborator failure.
// It never rolls back the already-accepted submission.
type DocumentGenerationError struct {
	Err error
}

func (e *DocumentGenerationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDocumentGeneration, e.Err)
}

func (e *DocumentGenerationError) Unwrap() []error { return []error{ErrDocumentGeneration, e.Err} }
