package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmtl/internal/domain"
)

func sampleRecords() []domain.AssignmentRecord {
	return []domain.AssignmentRecord{
		{AssignmentID: 11, DeviceID: 101, SerialNumber: " ab123 ", Make: "L&T", Capacity: "10-60A", Phase: "1P", LocationCode: "Z1"},
		{AssignmentID: 12, DeviceID: 102, SerialNumber: "CD456", Make: "Secure", Capacity: "5-30A", Phase: "3P", LocationCode: "Z1"},
		{AssignmentID: 13, DeviceID: 103, SerialNumber: "", Make: "Genus"},
	}
}

func TestNormalizeSerial(t *testing.T) {
	assert.Equal(t, "AB123", NormalizeSerial("  ab123\t"))
	assert.Equal(t, "", NormalizeSerial("   "))
}

func TestBuild_LookupIsCaseAndSpaceInsensitive(t *testing.T) {
	idx := Build(sampleRecords())

	e, ok := idx.Lookup("ab123")
	require.True(t, ok)
	assert.Equal(t, int64(101), e.DeviceID)
	assert.Equal(t, int64(11), e.AssignmentID)
	assert.Equal(t, "AB123", e.Serial)

	_, ok = idx.Lookup(" cd456 ")
	assert.True(t, ok)
}

func TestBuild_SkipsEmptySerials(t *testing.T) {
	idx := Build(sampleRecords())
	assert.Equal(t, 2, idx.Len())
	_, ok := idx.Lookup("")
	assert.False(t, ok)
}

func TestBuild_DuplicateSerialLastRecordWins(t *testing.T) {
	records := []domain.AssignmentRecord{
		{AssignmentID: 1, DeviceID: 10, SerialNumber: "X1", Make: "Old"},
		{AssignmentID: 2, DeviceID: 20, SerialNumber: "Y2"},
		{AssignmentID: 3, DeviceID: 30, SerialNumber: "x1", Make: "New"},
	}
	idx := Build(records)

	e, ok := idx.Lookup("X1")
	require.True(t, ok)
	assert.Equal(t, int64(3), e.AssignmentID)
	assert.Equal(t, "New", e.Make)
	assert.Equal(t, 2, idx.Len())

	entries := idx.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "X1", entries[0].Serial)
	assert.Equal(t, int64(3), entries[0].AssignmentID)
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(sampleRecords())
	b := Build(sampleRecords())
	assert.Equal(t, a.Entries(), b.Entries())
	assert.Equal(t, a, b)
}

func TestBuild_EmptyInput(t *testing.T) {
	idx := Build(nil)
	require.NotNil(t, idx)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Entries())
	_, ok := idx.Lookup("anything")
	assert.False(t, ok)
}

func TestIndex_NilIsEmpty(t *testing.T) {
	var idx *Index
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Lookup("AB123")
	assert.False(t, ok)
	_, ok = idx.ByAssignmentID(11)
	assert.False(t, ok)
}

func TestIndex_ByAssignmentID(t *testing.T) {
	idx := Build(sampleRecords())
	e, ok := idx.ByAssignmentID(12)
	require.True(t, ok)
	assert.Equal(t, "CD456", e.Serial)

	_, ok = idx.ByAssignmentID(13)
	assert.False(t, ok, "records without a serial are not indexed")
}
