package domain

import "strings"

// AssignmentRecord is one device assigned to the current user/lab for testing.
type AssignmentRecord struct {
	AssignmentID   int64  `json:"assignment_id" db:"assignment_id"`
	DeviceID       int64  `json:"device_id" db:"device_id"`
	SerialNumber   string `json:"serial_number" db:"serial_number"`
	Make           string `json:"make" db:"make"`
	Capacity       string `json:"capacity" db:"capacity"`
	Phase          string `json:"phase" db:"phase"`
	LocationCode   string `json:"location_code" db:"location_code"`
	LocationName   string `json:"location_name" db:"location_name"`
	BenchName      string `json:"bench_name" db:"bench_name"`
	TesterName     string `json:"tester_name" db:"tester_name"`
	ApproverName   string `json:"approver_name" db:"approver_name"`
	DeviceType     string `json:"device_type" db:"device_type"`
	TestingPurpose string `json:"testing_purpose" db:"testing_purpose"`
}

// OperatingContext is supplied by the caller when a workspace is opened.
type OperatingContext struct {
	UserID         int64  `json:"user_id"`
	LabID          int64  `json:"lab_id"`
	DeviceType     string `json:"device_type"`
	TestingPurpose string `json:"testing_purpose"`
}

// BatchDateLayout is the calendar-date format of BatchHeader.BatchDate.
const BatchDateLayout = "2006-01-02"

// BatchHeader holds the fields shared by every row of a batch.
type BatchHeader struct {
	LocationCode  string `json:"location_code"`
	LocationName  string `json:"location_name"`
	Phase         string `json:"phase"`
	TestingBench  string `json:"testing_bench"`
	TestingUser   string `json:"testing_user"`
	ApprovingUser string `json:"approving_user"`
	TestMethod    string `json:"test_method"`
	TestStatus    string `json:"test_status"`
	BatchDate     string `json:"batch_date"`
}

// ChannelInput is one measurement channel as typed by the tester, plus its derived error.
type ChannelInput struct {
	ReadingBefore Reading  `json:"reading_before"`
	ReadingAfter  Reading  `json:"reading_after"`
	RefStart      Reading  `json:"ref_start"`
	RefEnd        Reading  `json:"ref_end"`
	ErrorPct      *float64 `json:"error_percentage"`
}

// SingleReadings is the legacy single-channel reading block.
type SingleReadings struct {
	ChannelInput
}

// DualReadings carries independent shunt and neutral channels.
type DualReadings struct {
	Shunt            ChannelInput `json:"shunt"`
	Neutral          ChannelInput `json:"neutral"`
	CombinedSource   ErrorSource  `json:"combined_source"`
	CombinedErrorPct *float64     `json:"combined_error_percentage"`
}

// NetReadings carries the import and export channels of a net meter.
type NetReadings struct {
	Import               ChannelInput `json:"import"`
	Export               ChannelInput `json:"export"`
	FinalMeterDifference *float64     `json:"final_meter_difference"`
}

// ConsumerDetails identifies the premises a contested or P4 meter came from.
type ConsumerDetails struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	Address       string `json:"address"`
	Division      string `json:"division"`
}

// CTDetails holds current-transformer nameplate and test fields.
type CTDetails struct {
	Ratio            string  `json:"ratio"`
	AccuracyClass    string  `json:"accuracy_class"`
	Burden           string  `json:"burden"`
	PrimaryCurrent   Reading `json:"primary_current"`
	SecondaryCurrent Reading `json:"secondary_current"`
}

// DeviceCondition records the physical inspection of a device.
type DeviceCondition struct {
	PhysicalCondition string `json:"physical_condition"`
	SealStatus        string `json:"seal_status"`
	GlassCover        string `json:"glass_cover"`
	TerminalBlock     string `json:"terminal_block"`
	MeterBody         string `json:"meter_body"`
	IsBurned          bool   `json:"is_burned"`
}

// TestRow is one device under test. Exactly one of Single, Dual and Net is set
// for report types that carry readings; Consumer and CT are set per profile.
type TestRow struct {
	Serial       string `json:"serial"`
	Make         string `json:"make"`
	Capacity     string `json:"capacity"`
	DeviceID     int64  `json:"device_id"`
	AssignmentID int64  `json:"assignment_id"`
	NotFound     bool   `json:"not_found"`

	DeviceCondition

	TestResult TestResult `json:"test_result"`
	Remark     string     `json:"remark"`

	Single   *SingleReadings  `json:"single,omitempty"`
	Dual     *DualReadings    `json:"dual,omitempty"`
	Net      *NetReadings     `json:"net,omitempty"`
	Consumer *ConsumerDetails `json:"consumer,omitempty"`
	CT       *CTDetails       `json:"ct,omitempty"`
}

// NewRow returns an empty row shaped for the given profile.
func NewRow(p ReportProfile) TestRow {
	var r TestRow
	switch p.Layout {
	case LayoutSingle:
		r.Single = &SingleReadings{}
	case LayoutDual:
		r.Dual = &DualReadings{}
	case LayoutNet:
		r.Net = &NetReadings{}
	}
	if p.Consumer {
		r.Consumer = &ConsumerDetails{}
	}
	if p.CT {
		r.CT = &CTDetails{}
	}
	return r
}

// Resolved reports whether the row is bound to an assignment.
func (r *TestRow) Resolved() bool {
	return r.DeviceID > 0 && r.AssignmentID > 0
}

// HasSerial reports whether the tester typed anything into the serial field.
func (r *TestRow) HasSerial() bool {
	return strings.TrimSpace(r.Serial) != ""
}

// Clone returns a deep copy of the row.
func (r TestRow) Clone() TestRow {
	out := r
	if r.Single != nil {
		s := *r.Single
		s.ErrorPct = cloneFloat(r.Single.ErrorPct)
		out.Single = &s
	}
	if r.Dual != nil {
		d := *r.Dual
		d.Shunt.ErrorPct = cloneFloat(r.Dual.Shunt.ErrorPct)
		d.Neutral.ErrorPct = cloneFloat(r.Dual.Neutral.ErrorPct)
		d.CombinedErrorPct = cloneFloat(r.Dual.CombinedErrorPct)
		out.Dual = &d
	}
	if r.Net != nil {
		n := *r.Net
		n.Import.ErrorPct = cloneFloat(r.Net.Import.ErrorPct)
		n.Export.ErrorPct = cloneFloat(r.Net.Export.ErrorPct)
		n.FinalMeterDifference = cloneFloat(r.Net.FinalMeterDifference)
		out.Net = &n
	}
	if r.Consumer != nil {
		c := *r.Consumer
		out.Consumer = &c
	}
	if r.CT != nil {
		c := *r.CT
		out.CT = &c
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// RowEdit carries the tester-editable fields of a row. Identity fields are
// only changed through serial entry, and derived fields are always recomputed.
type RowEdit struct {
	DeviceCondition
	TestResult TestResult       `json:"test_result"`
	Remark     string           `json:"remark"`
	Single     *ChannelInput    `json:"single,omitempty"`
	Shunt      *ChannelInput    `json:"shunt,omitempty"`
	Neutral    *ChannelInput    `json:"neutral,omitempty"`
	Source     ErrorSource      `json:"combined_source"`
	Import     *ChannelInput    `json:"import,omitempty"`
	Export     *ChannelInput    `json:"export,omitempty"`
	Consumer   *ConsumerDetails `json:"consumer,omitempty"`
	CT         *CTDetails       `json:"ct,omitempty"`
}

// EnumSet holds the selectable vocabularies served by the backend.
type EnumSet struct {
	TestMethods        []string `json:"test_methods"`
	TestStatuses       []string `json:"test_statuses"`
	TestResults        []string `json:"test_results"`
	PhysicalConditions []string `json:"physical_conditions"`
	SealStatuses       []string `json:"seal_statuses"`
	Makes              []string `json:"makes"`
	Capacities         []string `json:"capacities"`
}

// Batch is everything the validator and normalizer need for one submission.
type Batch struct {
	Context OperatingContext `json:"context"`
	Profile ReportProfile    `json:"profile"`
	Header  BatchHeader      `json:"header"`
	Rows    []TestRow        `json:"rows"`
}

// FilledRows returns the rows with a non-empty serial, keeping their 1-based
// position in the full row list.
func (b *Batch) FilledRows() (rows []TestRow, positions []int) {
	for i := range b.Rows {
		if b.Rows[i].HasSerial() {
			rows = append(rows, b.Rows[i])
			positions = append(positions, i+1)
		}
	}
	return rows, positions
}
