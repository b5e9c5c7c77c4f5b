// Package metrology derives meter error percentages from paired meter and
// reference readings.
//
// A missing operand always yields a nil result. A nil error percentage means
// "not computable" and must never be read as a passing 0%.
package metrology

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"rmtl/internal/domain"
)

const (
	deltaPlaces   = 4
	percentPlaces = 2
)

var hundred = decimal.NewFromInt(100)

// Channel is one set of before/after readings for a meter and its reference.
type Channel struct {
	MeterBefore *float64
	MeterAfter  *float64
	RefBefore   *float64
	RefAfter    *float64
}

// Result holds the derived values for a channel.
type Result struct {
	MeterDelta *float64
	RefDelta   *float64
	ErrorPct   *float64
}

// ParseReading converts a typed reading to a number. Blank, non-numeric and
// non-finite input yields nil.
func ParseReading(r domain.Reading) *float64 {
	s := strings.TrimSpace(string(r))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ChannelFrom parses the raw input of a channel.
func ChannelFrom(in domain.ChannelInput) Channel {
	return Channel{
		MeterBefore: ParseReading(in.ReadingBefore),
		MeterAfter:  ParseReading(in.ReadingAfter),
		RefBefore:   ParseReading(in.RefStart),
		RefAfter:    ParseReading(in.RefEnd),
	}
}

// Delta returns after-before rounded to 4 decimals, or nil if either is missing.
func Delta(before, after *float64) *float64 {
	if !finite(before) || !finite(after) {
		return nil
	}
	d := decimal.NewFromFloat(*after).Sub(decimal.NewFromFloat(*before)).Round(deltaPlaces)
	return toFloat(d)
}

// Compute derives the meter delta, reference delta and error percentage:
//
//	errorPct = (meterDelta - refDelta) / refDelta * 100
//
// The error percentage is nil when any reading is missing or the reference
// delta is zero.
func Compute(ch Channel) Result {
	res := Result{
		MeterDelta: Delta(ch.MeterBefore, ch.MeterAfter),
		RefDelta:   Delta(ch.RefBefore, ch.RefAfter),
	}
	res.ErrorPct = ErrorPercent(res.MeterDelta, res.RefDelta)
	return res
}

// ErrorPercent computes the error of meterDelta against refDelta, rounded to 2 decimals.
func ErrorPercent(meterDelta, refDelta *float64) *float64 {
	if !finite(meterDelta) || !finite(refDelta) || *refDelta == 0 {
		return nil
	}
	md := decimal.NewFromFloat(*meterDelta)
	rd := decimal.NewFromFloat(*refDelta)
	pct := md.Sub(rd).Div(rd).Mul(hundred).Round(percentPlaces)
	return toFloat(pct)
}

// Combine picks the combined error percentage for a dual-channel row.
// BOTH averages the two channels and needs both of them.
func Combine(source domain.ErrorSource, shunt, neutral *float64) *float64 {
	switch source {
	case domain.ErrorSourceShunt:
		return copyFloat(shunt)
	case domain.ErrorSourceNeutral:
		return copyFloat(neutral)
	case domain.ErrorSourceBoth:
		if !finite(shunt) || !finite(neutral) {
			return nil
		}
		mean := decimal.NewFromFloat(*shunt).Add(decimal.NewFromFloat(*neutral)).Div(decimal.NewFromInt(2))
		return toFloat(mean.Round(percentPlaces))
	default:
		return nil
	}
}

// NetDifference is importDelta - exportDelta, computed from the 4-decimal
// deltas rather than from rounded percentages.
func NetDifference(importDelta, exportDelta *float64) *float64 {
	if !finite(importDelta) || !finite(exportDelta) {
		return nil
	}
	d := decimal.NewFromFloat(*importDelta).Sub(decimal.NewFromFloat(*exportDelta)).Round(deltaPlaces)
	return toFloat(d)
}

// Recompute refreshes every derived field of a row from its raw readings.
func Recompute(row *domain.TestRow) {
	if row.Single != nil {
		row.Single.ErrorPct = Compute(ChannelFrom(row.Single.ChannelInput)).ErrorPct
	}
	if row.Dual != nil {
		shunt := Compute(ChannelFrom(row.Dual.Shunt))
		neutral := Compute(ChannelFrom(row.Dual.Neutral))
		row.Dual.Shunt.ErrorPct = shunt.ErrorPct
		row.Dual.Neutral.ErrorPct = neutral.ErrorPct
		row.Dual.CombinedErrorPct = Combine(row.Dual.CombinedSource, shunt.ErrorPct, neutral.ErrorPct)
	}
	if row.Net != nil {
		imp := Compute(ChannelFrom(row.Net.Import))
		exp := Compute(ChannelFrom(row.Net.Export))
		row.Net.Import.ErrorPct = imp.ErrorPct
		row.Net.Export.ErrorPct = exp.ErrorPct
		row.Net.FinalMeterDifference = NetDifference(imp.MeterDelta, exp.MeterDelta)
	}
}

func finite(f *float64) bool {
	return f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0)
}

func copyFloat(f *float64) *float64 {
	if !finite(f) {
		return nil
	}
	v := *f
	return &v
}

func toFloat(d decimal.Decimal) *float64 {
	v, _ := d.Float64()
	return &v
}
