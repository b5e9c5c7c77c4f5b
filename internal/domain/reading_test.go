package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmtl/internal/domain"
)

func TestReading_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.Reading
	}{
		{"string", `"12.5"`, "12.5"},
		{"integer", `100`, "100"},
		{"decimal", `1010.25`, "1010.25"},
		{"negative", `-3`, "-3"},
		{"null", `null`, ""},
		{"text", `"abc"`, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.Reading("stale")
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestReading_RejectsOtherJSONTypes(t *testing.T) {
	var r domain.Reading
	assert.Error(t, json.Unmarshal([]byte(`true`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"v":1}`), &r))
}

func TestRowEdit_AcceptsNumericReadings(t *testing.T) {
	var edit domain.RowEdit
	body := `{"test_result":"PASS","single":{"reading_before":100,"reading_after":110.5,"ref_start":"0","ref_end":null},
		"ct":{"ratio":"200/5","primary_current":200}}`
	require.NoError(t, json.Unmarshal([]byte(body), &edit))

	require.NotNil(t, edit.Single)
	assert.Equal(t, domain.Reading("100"), edit.Single.ReadingBefore)
	assert.Equal(t, domain.Reading("110.5"), edit.Single.ReadingAfter)
	assert.Equal(t, domain.Reading("0"), edit.Single.RefStart)
	assert.Equal(t, domain.Reading(""), edit.Single.RefEnd)
	assert.Equal(t, domain.Reading("200"), edit.CT.PrimaryCurrent)
}

func TestNormalizeTestResult(t *testing.T) {
	assert.Equal(t, domain.TestResultPass, domain.NormalizeTestResult(" pass "))
	assert.Equal(t, domain.TestResultNone, domain.NormalizeTestResult("   "))
	assert.True(t, domain.TestResultFail.Valid())
	assert.False(t, domain.TestResult("BANANA").Valid())
	assert.False(t, domain.TestResultNone.Valid())
}
