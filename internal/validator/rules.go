package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rmtl/internal/domain"
)

// contextValidator requires the operating context supplied by the caller.
type contextValidator struct{}

func (contextValidator) RuleKey() string  { return "context.present" }
func (contextValidator) RuleName() string { return "Operating context present" }

func (contextValidator) Validate(_ context.Context, b *domain.Batch) error {
	c := b.Context
	switch {
	case c.UserID <= 0:
		return &domain.ContextError{Field: "user_id"}
	case c.LabID <= 0:
		return &domain.ContextError{Field: "lab_id"}
	case strings.TrimSpace(c.DeviceType) == "":
		return &domain.ContextError{Field: "device_type"}
	case strings.TrimSpace(c.TestingPurpose) == "":
		return &domain.ContextError{Field: "testing_purpose"}
	}
	return nil
}

// headerValidator checks the batch header fields every report needs.
type headerValidator struct{}

func (headerValidator) RuleKey() string  { return "header.complete" }
func (headerValidator) RuleName() string { return "Header complete" }

func (headerValidator) Validate(_ context.Context, b *domain.Batch) error {
	h := b.Header
	required := []struct {
		field string
		value string
	}{
		{"location_code", h.LocationCode},
		{"test_method", h.TestMethod},
		{"test_status", h.TestStatus},
		{"batch_date", h.BatchDate},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &domain.ValidationError{
				Code:    domain.CodeMissingHeaderField,
				Field:   r.field,
				Message: fmt.Sprintf("missing header field: %s", r.field),
			}
		}
	}
	if _, err := time.Parse(domain.BatchDateLayout, strings.TrimSpace(h.BatchDate)); err != nil {
		return &domain.ValidationError{
			Code:    domain.CodeInvalidHeaderField,
			Field:   "batch_date",
			Message: fmt.Sprintf("invalid header field: batch_date %q is not YYYY-MM-DD", h.BatchDate),
		}
	}
	return nil
}

// rowsPresentValidator requires at least one row with a serial.
type rowsPresentValidator struct{}

func (rowsPresentValidator) RuleKey() string  { return "rows.present" }
func (rowsPresentValidator) RuleName() string { return "At least one row" }

func (rowsPresentValidator) Validate(_ context.Context, b *domain.Batch) error {
	for i := range b.Rows {
		if b.Rows[i].HasSerial() {
			return nil
		}
	}
	return &domain.ValidationError{
		Code:    domain.CodeNoRows,
		Message: "no rows: enter at least one serial number",
	}
}

// rowsResolvedValidator checks each filled row in order.
type rowsResolvedValidator struct{}

func (rowsResolvedValidator) RuleKey() string  { return "rows.resolved" }
func (rowsResolvedValidator) RuleName() string { return "Rows resolved and decided" }

func (rowsResolvedValidator) Validate(_ context.Context, b *domain.Batch) error {
	rows, positions := b.FilledRows()
	for i := range rows {
		row := &rows[i]
		n := positions[i]
		switch {
		case row.NotFound:
			return &domain.ValidationError{
				Code:    domain.CodeSerialNotFound,
				Field:   "serial",
				Row:     n,
				Message: fmt.Sprintf("row %d: serial %q is not assigned to you", n, row.Serial),
			}
		case !row.Resolved():
			return &domain.ValidationError{
				Code:    domain.CodeRowUnresolved,
				Field:   "serial",
				Row:     n,
				Message: fmt.Sprintf("row %d: serial %q is not resolved to a device assignment", n, row.Serial),
			}
		case domain.NormalizeTestResult(row.TestResult) == domain.TestResultNone:
			return &domain.ValidationError{
				Code:    domain.CodeMissingTestResult,
				Field:   "test_result",
				Row:     n,
				Message: fmt.Sprintf("row %d: choose a test result", n),
			}
		case !domain.NormalizeTestResult(row.TestResult).Valid():
			return &domain.ValidationError{
				Code:    domain.CodeInvalidTestResult,
				Field:   "test_result",
				Row:     n,
				Message: fmt.Sprintf("row %d: test result %q must be PASS or FAIL", n, row.TestResult),
			}
		}
	}
	return nil
}

// uniqueDevicesValidator rejects the same physical device twice in one batch.
type uniqueDevicesValidator struct{}

func (uniqueDevicesValidator) RuleKey() string  { return "rows.unique_devices" }
func (uniqueDevicesValidator) RuleName() string { return "No duplicate devices" }

func (uniqueDevicesValidator) Validate(_ context.Context, b *domain.Batch) error {
	if !b.Profile.UniqueDevices {
		return nil
	}
	rows, positions := b.FilledRows()
	seen := make(map[int64]int, len(rows))
	for i := range rows {
		id := rows[i].DeviceID
		if id <= 0 {
			continue
		}
		if first, dup := seen[id]; dup {
			return &domain.ValidationError{
				Code:     domain.CodeDuplicateDevice,
				Field:    "serial",
				Row:      positions[i],
				OtherRow: first,
				Message:  fmt.Sprintf("row %d: device %q is already entered in row %d", positions[i], rows[i].Serial, first),
			}
		}
		seen[id] = positions[i]
	}
	return nil
}

// BuiltinValidators returns the batch rules in their evaluation order.
func BuiltinValidators() []Validator {
	return []Validator{
		contextValidator{},
		headerValidator{},
		rowsPresentValidator{},
		rowsResolvedValidator{},
		uniqueDevicesValidator{},
	}
}
