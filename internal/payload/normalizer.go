// Package payload maps a validated batch onto the backend's flat report rows.
package payload

import (
	"fmt"
	"strings"
	"time"

	"rmtl/internal/assignment"
	"rmtl/internal/domain"
	"rmtl/internal/metrology"
)

// testHour is the fixed wall-clock time stamped on every report. Testing
// duration is not tracked, so start and end share the same instant.
const testHour = 10

const wireTimeLayout = "2006-01-02T15:04:05.000Z"

// TestTimestamp converts a batch date into the wire timestamp: the date at
// 10:00 local wall-clock time, offset-corrected so it reads 10:00 in ISO form.
func TestTimestamp(batchDate string) (string, error) {
	d, err := time.Parse(domain.BatchDateLayout, strings.TrimSpace(batchDate))
	if err != nil {
		return "", fmt.Errorf("payload.TestTimestamp %q: %w", batchDate, domain.ErrInvalidBatchDate)
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), testHour, 0, 0, 0, time.UTC)
	return t.Format(wireTimeLayout), nil
}

// Normalize builds one wire row per filled row of a valid batch. Rows without
// a serial are skipped.
func Normalize(batch *domain.Batch) ([]domain.WireReportRow, error) {
	ts, err := TestTimestamp(batch.Header.BatchDate)
	if err != nil {
		return nil, err
	}

	rows, _ := batch.FilledRows()
	out := make([]domain.WireReportRow, 0, len(rows))
	for i := range rows {
		out = append(out, normalizeRow(batch, &rows[i], ts))
	}
	return out, nil
}

func normalizeRow(batch *domain.Batch, row *domain.TestRow, ts string) domain.WireReportRow {
	h := batch.Header
	c := batch.Context
	remark := optString(row.Remark)

	w := domain.WireReportRow{
		AssignmentID:   row.AssignmentID,
		DeviceID:       row.DeviceID,
		SerialNumber:   assignment.NormalizeSerial(row.Serial),
		ReportType:     batch.Profile.Type,
		LabID:          c.LabID,
		CreatedBy:      c.UserID,
		DeviceType:     c.DeviceType,
		TestingPurpose: c.TestingPurpose,
		StartDatetime:  ts,
		EndDatetime:    ts,

		LocationCode:  optString(h.LocationCode),
		LocationName:  optString(h.LocationName),
		Phase:         optString(h.Phase),
		TestingBench:  optString(h.TestingBench),
		TestingUser:   optString(h.TestingUser),
		ApprovingUser: optString(h.ApprovingUser),
		TestMethod:    optString(h.TestMethod),
		TestStatus:    optString(h.TestStatus),

		PhysicalCondition: optString(row.PhysicalCondition),
		SealStatus:        optString(row.SealStatus),
		GlassCover:        optString(row.GlassCover),
		TerminalBlock:     optString(row.TerminalBlock),
		MeterBody:         optString(row.MeterBody),
		IsBurned:          row.IsBurned,

		TestResult:   optString(string(domain.NormalizeTestResult(row.TestResult))),
		Details:      remark,
		FinalRemarks: copyString(remark),
	}

	if s := row.Single; s != nil {
		w.ReadingBeforeTest = metrology.ParseReading(s.ReadingBefore)
		w.ReadingAfterTest = metrology.ParseReading(s.ReadingAfter)
		w.RefStartReading = metrology.ParseReading(s.RefStart)
		w.RefEndReading = metrology.ParseReading(s.RefEnd)
		w.ErrorPercentage = copyFloat(s.ErrorPct)
	}
	if d := row.Dual; d != nil {
		w.ShuntReadingBefore = metrology.ParseReading(d.Shunt.ReadingBefore)
		w.ShuntReadingAfter = metrology.ParseReading(d.Shunt.ReadingAfter)
		w.ShuntRefStart = metrology.ParseReading(d.Shunt.RefStart)
		w.ShuntRefEnd = metrology.ParseReading(d.Shunt.RefEnd)
		w.ShuntErrorPct = copyFloat(d.Shunt.ErrorPct)
		w.NeutralReadingBefore = metrology.ParseReading(d.Neutral.ReadingBefore)
		w.NeutralReadingAfter = metrology.ParseReading(d.Neutral.ReadingAfter)
		w.NeutralRefStart = metrology.ParseReading(d.Neutral.RefStart)
		w.NeutralRefEnd = metrology.ParseReading(d.Neutral.RefEnd)
		w.NeutralErrorPct = copyFloat(d.Neutral.ErrorPct)
		w.ErrorPctImport = copyFloat(d.CombinedErrorPct)
	}
	if n := row.Net; n != nil {
		w.ImportStartReading = metrology.ParseReading(n.Import.ReadingBefore)
		w.ImportFinalReading = metrology.ParseReading(n.Import.ReadingAfter)
		w.ImportRefStart = metrology.ParseReading(n.Import.RefStart)
		w.ImportRefEnd = metrology.ParseReading(n.Import.RefEnd)
		w.ErrorPctImport = copyFloat(n.Import.ErrorPct)
		w.ExportStartReading = metrology.ParseReading(n.Export.ReadingBefore)
		w.ExportFinalReading = metrology.ParseReading(n.Export.ReadingAfter)
		w.ExportRefStart = metrology.ParseReading(n.Export.RefStart)
		w.ExportRefEnd = metrology.ParseReading(n.Export.RefEnd)
		w.ErrorPctExport = copyFloat(n.Export.ErrorPct)
		w.FinalMeterDiff = copyFloat(n.FinalMeterDifference)
	}
	if cd := row.Consumer; cd != nil {
		w.ConsumerName = optString(cd.Name)
		w.ConsumerAccount = optString(cd.AccountNumber)
		w.ConsumerAddress = optString(cd.Address)
		w.Division = optString(cd.Division)
	}
	if ct := row.CT; ct != nil {
		w.CTRatio = optString(ct.Ratio)
		w.CTClass = optString(ct.AccuracyClass)
		w.CTBurden = optString(ct.Burden)
		w.CTPrimaryCurrent = metrology.ParseReading(ct.PrimaryCurrent)
		w.CTSecondaryCurrent = metrology.ParseReading(ct.SecondaryCurrent)
	}
	return w
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
