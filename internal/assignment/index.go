// Package assignment builds the serial-number lookup used to autofill test rows
// from the devices assigned to the current user and lab.
package assignment

import (
	"strings"

	"rmtl/internal/domain"
)

// Entry is the subset of an assignment needed to resolve a typed serial.
type Entry struct {
	AssignmentID int64  `json:"assignment_id"`
	DeviceID     int64  `json:"device_id"`
	Serial       string `json:"serial_number"`
	Make         string `json:"make"`
	Capacity     string `json:"capacity"`
	Phase        string `json:"phase"`
	LocationCode string `json:"location_code"`
	LocationName string `json:"location_name"`
	BenchName    string `json:"bench_name"`
	TesterName   string `json:"tester_name"`
	ApproverName string `json:"approver_name"`
}

// Index maps normalized serial numbers to assignments. It is immutable once
// built; a reload produces a new Index rather than patching an old one.
type Index struct {
	bySerial map[string]Entry
	order    []string
}

// NormalizeSerial trims and upper-cases a serial number.
func NormalizeSerial(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Build indexes records by serial. Later records win over earlier ones with the
// same serial; records without a serial are skipped.
func Build(records []domain.AssignmentRecord) *Index {
	idx := &Index{bySerial: make(map[string]Entry, len(records))}
	for i := range records {
		rec := &records[i]
		key := NormalizeSerial(rec.SerialNumber)
		if key == "" {
			continue
		}
		if _, seen := idx.bySerial[key]; !seen {
			idx.order = append(idx.order, key)
		}
		idx.bySerial[key] = Entry{
			AssignmentID: rec.AssignmentID,
			DeviceID:     rec.DeviceID,
			Serial:       key,
			Make:         rec.Make,
			Capacity:     rec.Capacity,
			Phase:        rec.Phase,
			LocationCode: rec.LocationCode,
			LocationName: rec.LocationName,
			BenchName:    rec.BenchName,
			TesterName:   rec.TesterName,
			ApproverName: rec.ApproverName,
		}
	}
	return idx
}

// Lookup resolves a raw, user-typed serial.
func (idx *Index) Lookup(raw string) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	e, ok := idx.bySerial[NormalizeSerial(raw)]
	return e, ok
}

// ByAssignmentID finds the entry for an assignment, used by the device picker.
func (idx *Index) ByAssignmentID(id int64) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	for _, key := range idx.order {
		if e := idx.bySerial[key]; e.AssignmentID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of distinct serials.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.bySerial)
}

// Entries returns the indexed assignments in first-seen serial order.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}
	out := make([]Entry, 0, len(idx.order))
	for _, key := range idx.order {
		out = append(out, idx.bySerial[key])
	}
	return out
}
