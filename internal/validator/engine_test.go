package validator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmtl/internal/domain"
	"rmtl/internal/validator"
)

func validBatch() *domain.Batch {
	p, _ := domain.ProfileFor(domain.ReportTypeAgainstMeter)
	return &domain.Batch{
		Context: domain.OperatingContext{UserID: 7, LabID: 3, DeviceType: "METER", TestingPurpose: "SMART_AGAINST_METER"},
		Profile: p,
		Header: domain.BatchHeader{
			LocationCode: "Z1",
			TestMethod:   "MANUAL",
			TestStatus:   "COMPLETED",
			BatchDate:    "2026-10-15",
		},
		Rows: []domain.TestRow{
			{Serial: "AB123", DeviceID: 101, AssignmentID: 11, TestResult: domain.TestResultPass},
			{Serial: "CD456", DeviceID: 102, AssignmentID: 12, TestResult: domain.TestResultFail},
			{},
		},
	}
}

func validationErr(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve
}

func TestEngine_ValidBatchPasses(t *testing.T) {
	e := validator.NewDefaultEngine()
	assert.NoError(t, e.Validate(context.Background(), validBatch()))
}

func TestEngine_RuleOrder(t *testing.T) {
	e := validator.NewDefaultEngine()
	assert.Equal(t, []string{
		"context.present",
		"header.complete",
		"rows.present",
		"rows.resolved",
		"rows.unique_devices",
	}, e.Rules())
}

func TestEngine_MissingContext(t *testing.T) {
	e := validator.NewDefaultEngine()
	cases := map[string]func(*domain.OperatingContext){
		"user_id":         func(c *domain.OperatingContext) { c.UserID = 0 },
		"lab_id":          func(c *domain.OperatingContext) { c.LabID = 0 },
		"device_type":     func(c *domain.OperatingContext) { c.DeviceType = " " },
		"testing_purpose": func(c *domain.OperatingContext) { c.TestingPurpose = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			b := validBatch()
			mutate(&b.Context)
			err := e.Validate(context.Background(), b)
			var ce *domain.ContextError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, field, ce.Field)
			assert.Contains(t, err.Error(), "missing context")
		})
	}
}

func TestEngine_ContextCheckedBeforeHeader(t *testing.T) {
	b := validBatch()
	b.Context.LabID = 0
	b.Header.TestMethod = ""
	err := validator.NewDefaultEngine().Validate(context.Background(), b)
	var ce *domain.ContextError
	assert.True(t, errors.As(err, &ce))
}

func TestEngine_MissingHeaderFields(t *testing.T) {
	e := validator.NewDefaultEngine()
	for _, field := range []string{"location_code", "test_method", "test_status", "batch_date"} {
		t.Run(field, func(t *testing.T) {
			b := validBatch()
			switch field {
			case "location_code":
				b.Header.LocationCode = ""
			case "test_method":
				b.Header.TestMethod = ""
			case "test_status":
				b.Header.TestStatus = ""
			case "batch_date":
				b.Header.BatchDate = ""
			}
			ve := validationErr(t, e.Validate(context.Background(), b))
			assert.Equal(t, domain.CodeMissingHeaderField, ve.Code)
			assert.Equal(t, field, ve.Field)
		})
	}
}

func TestEngine_InvalidBatchDate(t *testing.T) {
	b := validBatch()
	b.Header.BatchDate = "15/10/2026"
	ve := validationErr(t, validator.NewDefaultEngine().Validate(context.Background(), b))
	assert.Equal(t, domain.CodeInvalidHeaderField, ve.Code)
}

func TestEngine_HeaderErrorReportedBeforeRowError(t *testing.T) {
	b := validBatch()
	b.Header.TestMethod = ""
	b.Rows[0].NotFound = true
	b.Rows[0].DeviceID = 0
	b.Rows[0].AssignmentID = 0

	ve := validationErr(t, validator.NewDefaultEngine().Validate(context.Background(), b))
	assert.Equal(t, domain.CodeMissingHeaderField, ve.Code)
	assert.Equal(t, "test_method", ve.Field)
}

func TestEngine_NoRows(t *testing.T) {
	b := validBatch()
	b.Rows = []domain.TestRow{{}, {Serial: "  "}}
	ve := validationErr(t, validator.NewDefaultEngine().Validate(context.Background(), b))
	assert.Equal(t, domain.CodeNoRows, ve.Code)
}

func TestEngine_RowChecksReportOneBasedIndex(t *testing.T) {
	e := validator.NewDefaultEngine()

	t.Run("not_found", func(t *testing.T) {
		b := validBatch()
		b.Rows[1] = domain.TestRow{Serial: "ZZ9", NotFound: true, TestResult: domain.TestResultPass}
		ve := validationErr(t, e.Validate(context.Background(), b))
		assert.Equal(t, domain.CodeSerialNotFound, ve.Code)
		assert.Equal(t, 2, ve.Row)
	})

	t.Run("unresolved", func(t *testing.T) {
		b := validBatch()
		b.Rows[1].AssignmentID = 0
		ve := validationErr(t, e.Validate(context.Background(), b))
		assert.Equal(t, domain.CodeRowUnresolved, ve.Code)
		assert.Equal(t, 2, ve.Row)
	})

	t.Run("missing_result", func(t *testing.T) {
		b := validBatch()
		b.Rows[0].TestResult = domain.TestResultNone
		ve := validationErr(t, e.Validate(context.Background(), b))
		assert.Equal(t, domain.CodeMissingTestResult, ve.Code)
		assert.Equal(t, 1, ve.Row)
	})

	t.Run("empty_rows_keep_positions", func(t *testing.T) {
		b := validBatch()
		b.Rows = append([]domain.TestRow{{}}, b.Rows...)
		b.Rows[2].TestResult = domain.TestResultNone
		ve := validationErr(t, e.Validate(context.Background(), b))
		assert.Equal(t, 3, ve.Row)
	})
}

func TestEngine_TestResultMustBeChosenVerdict(t *testing.T) {
	e := validator.NewDefaultEngine()

	b := validBatch()
	b.Rows[1].TestResult = "  "
	ve := validationErr(t, e.Validate(context.Background(), b))
	assert.Equal(t, domain.CodeMissingTestResult, ve.Code)
	assert.Equal(t, 2, ve.Row)

	b = validBatch()
	b.Rows[0].TestResult = "banana"
	ve = validationErr(t, e.Validate(context.Background(), b))
	assert.Equal(t, domain.CodeInvalidTestResult, ve.Code)
	assert.Equal(t, 1, ve.Row)

	b = validBatch()
	b.Rows[0].TestResult = " pass"
	assert.NoError(t, e.Validate(context.Background(), b))
}

func TestEngine_DuplicateDeviceRejected(t *testing.T) {
	b := validBatch()
	b.Rows[1] = domain.TestRow{Serial: "ab123", DeviceID: 101, AssignmentID: 11, TestResult: domain.TestResultPass}

	ve := validationErr(t, validator.NewDefaultEngine().Validate(context.Background(), b))
	assert.Equal(t, domain.CodeDuplicateDevice, ve.Code)
	assert.Equal(t, 2, ve.Row)
	assert.Equal(t, 1, ve.OtherRow)
}

func TestEngine_DuplicateAllowedWhenProfileDoesNotRequireUnique(t *testing.T) {
	b := validBatch()
	b.Profile.UniqueDevices = false
	b.Rows[1] = domain.TestRow{Serial: "AB123", DeviceID: 101, AssignmentID: 11, TestResult: domain.TestResultPass}
	assert.NoError(t, validator.NewDefaultEngine().Validate(context.Background(), b))
}

func TestEngine_NilBatch(t *testing.T) {
	assert.Error(t, validator.NewDefaultEngine().Validate(context.Background(), nil))
}

type stubRule struct {
	key string
	err error
}

func (s stubRule) Validate(context.Context, *domain.Batch) error { return s.err }
func (s stubRule) RuleKey() string                               { return s.key }
func (s stubRule) RuleName() string                              { return s.key }

func TestRegistry_ReplaceKeepsPosition(t *testing.T) {
	r := validator.NewRegistry()
	r.Register(stubRule{key: "a"})
	r.Register(stubRule{key: "b", err: errors.New("b failed")})
	r.Register(stubRule{key: "a", err: errors.New("a failed")})

	require.Len(t, r.All(), 2)
	assert.Equal(t, "a", r.All()[0].RuleKey())
	assert.Nil(t, r.Get("missing"))

	err := validator.NewEngine(r).Validate(context.Background(), validBatch())
	assert.EqualError(t, err, "a failed")
}
