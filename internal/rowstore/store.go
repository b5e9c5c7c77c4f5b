// Package rowstore holds the ordered, editable test rows and batch header of
// one batch-entry screen.
package rowstore

import (
	"fmt"

	"rmtl/internal/assignment"
	"rmtl/internal/domain"
	"rmtl/internal/metrology"
)

// Options tunes store behaviour.
type Options struct {
	// InferResultFromRemarks fills an unset test result from the remark text.
	// An explicitly chosen result always wins.
	InferResultFromRemarks bool
}

// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	profile domain.ReportProfile
	opts    Options
	header  domain.BatchHeader
	rows    []domain.TestRow

	// autofilled is set once the first resolved assignment has back-filled
	// the header. Later resolutions leave the header alone until Clear.
	autofilled bool
}

// New creates a store holding a single empty row.
func New(profile domain.ReportProfile, opts Options) *Store {
	s := &Store{profile: profile, opts: opts}
	s.rows = []domain.TestRow{domain.NewRow(profile)}
	return s
}

// Profile returns the report profile the rows are shaped for.
func (s *Store) Profile() domain.ReportProfile { return s.profile }

// Header returns the current batch header.
func (s *Store) Header() domain.BatchHeader { return s.header }

// SetHeader replaces the header with explicit user input.
func (s *Store) SetHeader(h domain.BatchHeader) { s.header = h }

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// Rows returns a deep copy of all rows.
func (s *Store) Rows() []domain.TestRow {
	out := make([]domain.TestRow, len(s.rows))
	for i := range s.rows {
		out[i] = s.rows[i].Clone()
	}
	return out
}

// Row returns a copy of the row at pos.
func (s *Store) Row(pos int) (domain.TestRow, error) {
	if err := s.checkPos(pos); err != nil {
		return domain.TestRow{}, err
	}
	return s.rows[pos].Clone(), nil
}

// Batch snapshots the store for validation and submission.
func (s *Store) Batch(octx domain.OperatingContext) *domain.Batch {
	return &domain.Batch{
		Context: octx,
		Profile: s.profile,
		Header:  s.header,
		Rows:    s.Rows(),
	}
}

// AppendEmpty adds an empty row and returns its position.
func (s *Store) AppendEmpty() int {
	s.rows = append(s.rows, domain.NewRow(s.profile))
	return len(s.rows) - 1
}

// Remove deletes the row at pos. Removing the last remaining row leaves a
// single empty row behind.
func (s *Store) Remove(pos int) error {
	if err := s.checkPos(pos); err != nil {
		return err
	}
	if len(s.rows) == 1 {
		s.rows[0] = domain.NewRow(s.profile)
		return nil
	}
	s.rows = append(s.rows[:pos], s.rows[pos+1:]...)
	return nil
}

// Reset drops all rows after a successful submission, keeping the header and
// its autofill state.
func (s *Store) Reset() {
	s.rows = []domain.TestRow{domain.NewRow(s.profile)}
}

// Clear drops all rows and the header.
func (s *Store) Clear() {
	s.Reset()
	s.header = domain.BatchHeader{}
	s.autofilled = false
}

// OnSerialChanged resolves a typed serial against idx and updates the row's
// identity fields. Only the first resolved assignment back-fills the header,
// and only into empty fields.
func (s *Store) OnSerialChanged(pos int, raw string, idx *assignment.Index) error {
	if err := s.checkPos(pos); err != nil {
		return err
	}
	s.resolve(&s.rows[pos], raw, idx)
	return nil
}

// Reresolve re-runs serial resolution on every filled row, used after the
// index is replaced so no row stays bound to an abandoned assignment.
func (s *Store) Reresolve(idx *assignment.Index) {
	for i := range s.rows {
		if s.rows[i].HasSerial() {
			s.resolve(&s.rows[i], s.rows[i].Serial, idx)
		}
	}
}

func (s *Store) resolve(row *domain.TestRow, raw string, idx *assignment.Index) {
	row.Serial = raw
	entry, ok := idx.Lookup(raw)
	switch {
	case ok:
		row.Make = entry.Make
		row.Capacity = entry.Capacity
		row.DeviceID = entry.DeviceID
		row.AssignmentID = entry.AssignmentID
		row.NotFound = false
		if !s.autofilled {
			autofillHeader(&s.header, entry)
			s.autofilled = true
		}
	case assignment.NormalizeSerial(raw) != "":
		clearIdentity(row)
		row.NotFound = true
	default:
		row.Serial = ""
		clearIdentity(row)
		row.NotFound = false
	}
}

func clearIdentity(row *domain.TestRow) {
	row.Make = ""
	row.Capacity = ""
	row.DeviceID = 0
	row.AssignmentID = 0
}

func autofillHeader(h *domain.BatchHeader, e assignment.Entry) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&h.Phase, e.Phase)
	fill(&h.LocationCode, e.LocationCode)
	fill(&h.LocationName, e.LocationName)
	fill(&h.TestingBench, e.BenchName)
	fill(&h.TestingUser, e.TesterName)
	fill(&h.ApprovingUser, e.ApproverName)
}

// UpdateRow applies the editable fields of edit to the row at pos and
// recomputes its derived metrology. Blocks the row's profile does not carry
// are ignored.
func (s *Store) UpdateRow(pos int, edit domain.RowEdit) error {
	if err := s.checkPos(pos); err != nil {
		return err
	}
	row := &s.rows[pos]
	row.DeviceCondition = edit.DeviceCondition
	row.Remark = edit.Remark
	row.TestResult = domain.NormalizeTestResult(edit.TestResult)
	if row.TestResult == domain.TestResultNone && s.opts.InferResultFromRemarks {
		if r, ok := InferResult(edit.Remark); ok {
			row.TestResult = r
		}
	}

	if row.Single != nil && edit.Single != nil {
		row.Single.ChannelInput = rawOnly(*edit.Single)
	}
	if row.Dual != nil {
		if edit.Shunt != nil {
			row.Dual.Shunt = rawOnly(*edit.Shunt)
		}
		if edit.Neutral != nil {
			row.Dual.Neutral = rawOnly(*edit.Neutral)
		}
		row.Dual.CombinedSource = edit.Source
	}
	if row.Net != nil {
		if edit.Import != nil {
			row.Net.Import = rawOnly(*edit.Import)
		}
		if edit.Export != nil {
			row.Net.Export = rawOnly(*edit.Export)
		}
	}
	if row.Consumer != nil && edit.Consumer != nil {
		*row.Consumer = *edit.Consumer
	}
	if row.CT != nil && edit.CT != nil {
		*row.CT = *edit.CT
	}

	metrology.Recompute(row)
	return nil
}

func rawOnly(in domain.ChannelInput) domain.ChannelInput {
	in.ErrorPct = nil
	return in
}

// Pick adds rows for the given assignments, reusing trailing empty rows first.
// Assignments already present in the batch or missing from idx are skipped.
// It returns the number of rows added.
func (s *Store) Pick(idx *assignment.Index, assignmentIDs []int64) int {
	present := make(map[int64]bool, len(s.rows))
	for i := range s.rows {
		if s.rows[i].AssignmentID > 0 {
			present[s.rows[i].AssignmentID] = true
		}
	}

	added := 0
	for _, id := range assignmentIDs {
		if present[id] {
			continue
		}
		entry, ok := idx.ByAssignmentID(id)
		if !ok {
			continue
		}
		pos := s.firstEmpty()
		if pos < 0 {
			pos = s.AppendEmpty()
		}
		s.resolve(&s.rows[pos], entry.Serial, idx)
		present[id] = true
		added++
	}
	return added
}

func (s *Store) firstEmpty() int {
	for i := range s.rows {
		if !s.rows[i].HasSerial() {
			return i
		}
	}
	return -1
}

// Warnings lists rows whose serial did not match any assignment.
func (s *Store) Warnings() []ResolutionWarning {
	var out []ResolutionWarning
	for i := range s.rows {
		if s.rows[i].NotFound {
			out = append(out, ResolutionWarning{
				Row:     i + 1,
				Serial:  s.rows[i].Serial,
				Message: fmt.Sprintf("row %d: serial %q is not assigned to you", i+1, s.rows[i].Serial),
			})
		}
	}
	return out
}

// ResolutionWarning flags a typed serial with no matching assignment. It only
// becomes a blocking error when the batch is submitted.
type ResolutionWarning struct {
	Row     int    `json:"row"`
	Serial  string `json:"serial"`
	Message string `json:"message"`
}

func (s *Store) checkPos(pos int) error {
	if pos < 0 || pos >= len(s.rows) {
		return fmt.Errorf("row %d: %w", pos+1, domain.ErrRowOutOfRange)
	}
	return nil
}
