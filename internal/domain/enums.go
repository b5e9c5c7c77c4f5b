package domain

import "strings"

// ReportType identifies which "add test report" batch screen a workspace serves.
type ReportType string

const (
	ReportTypeContested       ReportType = "CONTESTED"
	ReportTypeCTTesting       ReportType = "CT_TESTING"
	ReportTypeP4ONM           ReportType = "P4_ONM"
	ReportTypeP4VIG           ReportType = "P4_VIG"
	ReportTypeAgainstMeter    ReportType = "SMART_AGAINST_METER"
	ReportTypeSolarNetMeter   ReportType = "SOLAR_NETMETER"
	ReportTypeSolarGeneration ReportType = "SOLAR_GENERATIONMETER"
	ReportTypeStopDefective   ReportType = "STOP_DEFECTIVE"
	ReportTypeSamplePQ        ReportType = "SAMPLE_PQ"
)

// ChannelLayout describes which reading block a report type carries.
type ChannelLayout string

const (
	LayoutNone   ChannelLayout = "none"
	LayoutSingle ChannelLayout = "single"
	LayoutDual   ChannelLayout = "dual"
	LayoutNet    ChannelLayout = "net"
)

// ReportProfile holds the per-report-type shape of a test row.
type ReportProfile struct {
	Type          ReportType    `json:"report_type"`
	Layout        ChannelLayout `json:"layout"`
	Consumer      bool          `json:"consumer"`
	CT            bool          `json:"ct"`
	UniqueDevices bool          `json:"unique_devices"`
}

var profiles = map[ReportType]ReportProfile{
	ReportTypeContested:       {Type: ReportTypeContested, Layout: LayoutDual, Consumer: true, UniqueDevices: true},
	ReportTypeCTTesting:       {Type: ReportTypeCTTesting, Layout: LayoutNone, CT: true, UniqueDevices: true},
	ReportTypeP4ONM:           {Type: ReportTypeP4ONM, Layout: LayoutDual, Consumer: true, UniqueDevices: true},
	ReportTypeP4VIG:           {Type: ReportTypeP4VIG, Layout: LayoutDual, Consumer: true, UniqueDevices: true},
	ReportTypeAgainstMeter:    {Type: ReportTypeAgainstMeter, Layout: LayoutSingle, UniqueDevices: true},
	ReportTypeSolarNetMeter:   {Type: ReportTypeSolarNetMeter, Layout: LayoutNet, UniqueDevices: true},
	ReportTypeSolarGeneration: {Type: ReportTypeSolarGeneration, Layout: LayoutSingle, UniqueDevices: true},
	ReportTypeStopDefective:   {Type: ReportTypeStopDefective, Layout: LayoutSingle, UniqueDevices: true},
	ReportTypeSamplePQ:        {Type: ReportTypeSamplePQ, Layout: LayoutDual, UniqueDevices: true},
}

// ProfileFor returns the profile registered for a report type.
func ProfileFor(rt ReportType) (ReportProfile, bool) {
	p, ok := profiles[rt]
	return p, ok
}

// ReportTypes lists all supported report types.
func ReportTypes() []ReportType {
	return []ReportType{
		ReportTypeContested,
		ReportTypeCTTesting,
		ReportTypeP4ONM,
		ReportTypeP4VIG,
		ReportTypeAgainstMeter,
		ReportTypeSolarNetMeter,
		ReportTypeSolarGeneration,
		ReportTypeStopDefective,
		ReportTypeSamplePQ,
	}
}

// ErrorSource selects which channel feeds the combined error percentage.
type ErrorSource string

const (
	ErrorSourceNone    ErrorSource = ""
	ErrorSourceShunt   ErrorSource = "SHUNT"
	ErrorSourceNeutral ErrorSource = "NEUTRAL"
	ErrorSourceBoth    ErrorSource = "BOTH"
)

// TestResult is the verdict recorded for one device.
type TestResult string

const (
	TestResultNone TestResult = ""
	TestResultPass TestResult = "PASS"
	TestResultFail TestResult = "FAIL"
)

// NormalizeTestResult trims and upper-cases a submitted verdict.
func NormalizeTestResult(r TestResult) TestResult {
	return TestResult(strings.ToUpper(strings.TrimSpace(string(r))))
}

// Valid reports whether r is one of the recordable verdicts.
func (r TestResult) Valid() bool {
	return r == TestResultPass || r == TestResultFail
}

// AssignmentStatus filters the assigned-devices fetch.
const AssignmentStatusAssigned = "ASSIGNED"
