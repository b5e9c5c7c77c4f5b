package rowstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmtl/internal/assignment"
	"rmtl/internal/domain"
)

func testIndex() *assignment.Index {
	return assignment.Build([]domain.AssignmentRecord{
		{AssignmentID: 11, DeviceID: 101, SerialNumber: "AB123", Make: "L&T", Capacity: "10-60A", Phase: "1P",
			LocationCode: "Z1", LocationName: "Zone One", BenchName: "Bench-2", TesterName: "tester", ApproverName: "approver"},
		{AssignmentID: 12, DeviceID: 102, SerialNumber: "CD456", Make: "Secure", Capacity: "5-30A", Phase: "3P",
			LocationCode: "Z9", LocationName: "Zone Nine"},
		{AssignmentID: 13, DeviceID: 103, SerialNumber: "EF789", Make: "Genus", Capacity: "5-30A", Phase: "1P"},
	})
}

func newStore(rt domain.ReportType) *Store {
	p, _ := domain.ProfileFor(rt)
	return New(p, Options{})
}

func TestNew_StartsWithOneEmptyShapedRow(t *testing.T) {
	s := newStore(domain.ReportTypeContested)
	require.Equal(t, 1, s.Len())
	row, err := s.Row(0)
	require.NoError(t, err)
	assert.NotNil(t, row.Dual)
	assert.NotNil(t, row.Consumer)
	assert.Nil(t, row.Single)
	assert.Nil(t, row.CT)
}

func TestOnSerialChanged_Hit(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	require.NoError(t, s.OnSerialChanged(0, " ab123 ", testIndex()))

	row, _ := s.Row(0)
	assert.Equal(t, int64(101), row.DeviceID)
	assert.Equal(t, int64(11), row.AssignmentID)
	assert.Equal(t, "L&T", row.Make)
	assert.Equal(t, "10-60A", row.Capacity)
	assert.False(t, row.NotFound)
	assert.True(t, row.Resolved())

	h := s.Header()
	assert.Equal(t, "1P", h.Phase)
	assert.Equal(t, "Z1", h.LocationCode)
	assert.Equal(t, "Bench-2", h.TestingBench)
}

func TestOnSerialChanged_MissFlagsNotFound(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	idx := testIndex()
	require.NoError(t, s.OnSerialChanged(0, "AB123", idx))
	require.NoError(t, s.OnSerialChanged(0, "ZZ000", idx))

	row, _ := s.Row(0)
	assert.True(t, row.NotFound)
	assert.Equal(t, "ZZ000", row.Serial)
	assert.Zero(t, row.DeviceID)
	assert.Zero(t, row.AssignmentID)
	assert.Empty(t, row.Make)
	assert.Empty(t, row.Capacity)

	warnings := s.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Row)
}

func TestOnSerialChanged_ClearingReturnsToPristine(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	idx := testIndex()
	require.NoError(t, s.OnSerialChanged(0, "AB123", idx))
	require.NoError(t, s.OnSerialChanged(0, "   ", idx))

	row, _ := s.Row(0)
	assert.Equal(t, int64(0), row.DeviceID)
	assert.Equal(t, int64(0), row.AssignmentID)
	assert.False(t, row.NotFound)
	assert.Empty(t, row.Serial)
	assert.Empty(t, s.Warnings())
}

func TestOnSerialChanged_HeaderAutofillIsMonotonic(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	s.AppendEmpty()
	s.SetHeader(domain.BatchHeader{LocationCode: "TYPED"})
	idx := testIndex()

	require.NoError(t, s.OnSerialChanged(0, "AB123", idx))
	require.NoError(t, s.OnSerialChanged(1, "CD456", idx))

	h := s.Header()
	assert.Equal(t, "TYPED", h.LocationCode, "typed input must never be overwritten")
	assert.Equal(t, "1P", h.Phase, "first resolved assignment fills empty fields")
	assert.Equal(t, "Zone One", h.LocationName)
}

func TestOnSerialChanged_OnlyFirstResolvedAssignmentAutofills(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	s.AppendEmpty()
	idx := testIndex()

	require.NoError(t, s.OnSerialChanged(0, "EF789", idx))
	require.NoError(t, s.OnSerialChanged(1, "CD456", idx))

	h := s.Header()
	assert.Equal(t, "1P", h.Phase)
	assert.Empty(t, h.LocationCode, "later assignments never fill fields the first one left empty")
	assert.Empty(t, h.LocationName)

	s.Reset()
	require.NoError(t, s.OnSerialChanged(0, "CD456", idx))
	assert.Empty(t, s.Header().LocationCode, "reset keeps the header and its autofill state")

	s.Clear()
	require.NoError(t, s.OnSerialChanged(0, "CD456", idx))
	assert.Equal(t, "Z9", s.Header().LocationCode)
	assert.Equal(t, "3P", s.Header().Phase)
}

func TestOnSerialChanged_OutOfRange(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	err := s.OnSerialChanged(3, "AB123", testIndex())
	assert.True(t, errors.Is(err, domain.ErrRowOutOfRange))
}

func TestRemove_KeepsOneRow(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	idx := testIndex()
	require.NoError(t, s.OnSerialChanged(0, "AB123", idx))
	s.AppendEmpty()
	require.NoError(t, s.OnSerialChanged(1, "CD456", idx))

	require.NoError(t, s.Remove(0))
	require.Equal(t, 1, s.Len())
	row, _ := s.Row(0)
	assert.Equal(t, int64(102), row.DeviceID)

	require.NoError(t, s.Remove(0))
	require.Equal(t, 1, s.Len())
	row, _ = s.Row(0)
	assert.False(t, row.HasSerial())
	assert.NotNil(t, row.Single)
}

func TestUpdateRow_RecomputesDerivedFields(t *testing.T) {
	s := newStore(domain.ReportTypeContested)
	edit := domain.RowEdit{
		TestResult: domain.TestResultPass,
		Shunt:      &domain.ChannelInput{ReadingBefore: "100", ReadingAfter: "112", RefStart: "0", RefEnd: "10"},
		Neutral:    &domain.ChannelInput{ReadingBefore: "100", ReadingAfter: "110", RefStart: "0", RefEnd: "10"},
		Source:     domain.ErrorSourceShunt,
		Consumer:   &domain.ConsumerDetails{Name: "R. Sharma"},
		CT:         &domain.CTDetails{Ratio: "100/5"},
	}
	require.NoError(t, s.UpdateRow(0, edit))

	row, _ := s.Row(0)
	require.NotNil(t, row.Dual.CombinedErrorPct)
	assert.Equal(t, 20.0, *row.Dual.CombinedErrorPct)
	assert.Equal(t, "R. Sharma", row.Consumer.Name)
	assert.Nil(t, row.CT, "blocks outside the profile are ignored")
}

func TestUpdateRow_IgnoresClientSuppliedDerivedValues(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	bogus := 0.0
	require.NoError(t, s.UpdateRow(0, domain.RowEdit{
		Single: &domain.ChannelInput{ReadingBefore: "1", ReadingAfter: "2", ErrorPct: &bogus},
	}))
	row, _ := s.Row(0)
	assert.Nil(t, row.Single.ErrorPct)
}

func TestUpdateRow_InferResultOnlyWhenUnset(t *testing.T) {
	p, _ := domain.ProfileFor(domain.ReportTypeStopDefective)
	s := New(p, Options{InferResultFromRemarks: true})

	require.NoError(t, s.UpdateRow(0, domain.RowEdit{Remark: "Display not working"}))
	row, _ := s.Row(0)
	assert.Equal(t, domain.TestResultFail, row.TestResult)

	require.NoError(t, s.UpdateRow(0, domain.RowEdit{Remark: "ok", TestResult: domain.TestResultFail}))
	row, _ = s.Row(0)
	assert.Equal(t, domain.TestResultFail, row.TestResult, "explicit result wins")
}

func TestUpdateRow_NormalizesTestResult(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)

	require.NoError(t, s.UpdateRow(0, domain.RowEdit{TestResult: " pass "}))
	row, _ := s.Row(0)
	assert.Equal(t, domain.TestResultPass, row.TestResult)

	require.NoError(t, s.UpdateRow(0, domain.RowEdit{TestResult: "   "}))
	row, _ = s.Row(0)
	assert.Equal(t, domain.TestResultNone, row.TestResult)
}

func TestUpdateRow_NoInferenceByDefault(t *testing.T) {
	s := newStore(domain.ReportTypeStopDefective)
	require.NoError(t, s.UpdateRow(0, domain.RowEdit{Remark: "ok"}))
	row, _ := s.Row(0)
	assert.Equal(t, domain.TestResultNone, row.TestResult)
}

func TestRows_ReturnsDeepCopy(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	require.NoError(t, s.UpdateRow(0, domain.RowEdit{
		Single: &domain.ChannelInput{ReadingBefore: "100", ReadingAfter: "110", RefStart: "0", RefEnd: "10"},
	}))
	rows := s.Rows()
	*rows[0].Single.ErrorPct = 99
	rows[0].Single.ReadingBefore = "tampered"

	row, _ := s.Row(0)
	assert.Equal(t, 0.0, *row.Single.ErrorPct)
	assert.Equal(t, domain.Reading("100"), row.Single.ReadingBefore)
}

func TestPick_FillsEmptyRowsThenAppends(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	idx := testIndex()
	require.NoError(t, s.OnSerialChanged(0, "AB123", idx))

	added := s.Pick(idx, []int64{11, 12, 13, 99})
	assert.Equal(t, 2, added)
	require.Equal(t, 3, s.Len())

	rows := s.Rows()
	assert.Equal(t, int64(102), rows[1].DeviceID)
	assert.Equal(t, int64(103), rows[2].DeviceID)
}

func TestReresolve_DropsAbandonedAssignments(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	require.NoError(t, s.OnSerialChanged(0, "AB123", testIndex()))

	fresh := assignment.Build([]domain.AssignmentRecord{
		{AssignmentID: 12, DeviceID: 102, SerialNumber: "CD456"},
	})
	s.Reresolve(fresh)

	row, _ := s.Row(0)
	assert.True(t, row.NotFound)
	assert.Zero(t, row.AssignmentID)
}

func TestResetAndClear(t *testing.T) {
	s := newStore(domain.ReportTypeAgainstMeter)
	idx := testIndex()
	require.NoError(t, s.OnSerialChanged(0, "AB123", idx))
	s.AppendEmpty()
	s.AppendEmpty()

	s.Reset()
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "Z1", s.Header().LocationCode)

	s.Clear()
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, domain.BatchHeader{}, s.Header())
}

func TestInferResult(t *testing.T) {
	tests := []struct {
		remark string
		want   domain.TestResult
		ok     bool
	}{
		{"OK", domain.TestResultPass, true},
		{"meter ok, seal intact", domain.TestResultPass, true},
		{"Not OK", domain.TestResultFail, true},
		{"display not working", domain.TestResultFail, true},
		{"Failed at 5A", domain.TestResultFail, true},
		{"broken terminal", domain.TestResultNone, false},
		{"", domain.TestResultNone, false},
	}
	for _, tt := range tests {
		got, ok := InferResult(tt.remark)
		assert.Equal(t, tt.want, got, tt.remark)
		assert.Equal(t, tt.ok, ok, tt.remark)
	}
}
