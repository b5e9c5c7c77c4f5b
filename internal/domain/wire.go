package domain

// WireReportRow is the backend's flat test-report row. Optional fields are
// pointers without omitempty: the backend requires every key to be present.
type WireReportRow struct {
	AssignmentID   int64      `json:"assignment_id" db:"assignment_id"`
	DeviceID       int64      `json:"device_id" db:"device_id"`
	SerialNumber   string     `json:"serial_number" db:"serial_number"`
	ReportType     ReportType `json:"report_type" db:"report_type"`
	LabID          int64      `json:"lab_id" db:"lab_id"`
	CreatedBy      int64      `json:"created_by" db:"created_by"`
	DeviceType     string     `json:"device_type" db:"device_type"`
	TestingPurpose string     `json:"testing_purpose" db:"testing_purpose"`
	StartDatetime  string     `json:"start_datetime" db:"start_datetime"`
	EndDatetime    string     `json:"end_datetime" db:"end_datetime"`

	LocationCode  *string `json:"location_code" db:"location_code"`
	LocationName  *string `json:"location_name" db:"location_name"`
	Phase         *string `json:"phase" db:"phase"`
	TestingBench  *string `json:"testing_bench" db:"testing_bench"`
	TestingUser   *string `json:"testing_user" db:"testing_user"`
	ApprovingUser *string `json:"approving_user" db:"approving_user"`
	TestMethod    *string `json:"test_method" db:"test_method"`
	TestStatus    *string `json:"test_status" db:"test_status"`

	PhysicalCondition *string `json:"physical_condition_of_device" db:"physical_condition_of_device"`
	SealStatus        *string `json:"seal_status" db:"seal_status"`
	GlassCover        *string `json:"meter_glass_cover" db:"meter_glass_cover"`
	TerminalBlock     *string `json:"terminal_block" db:"terminal_block"`
	MeterBody         *string `json:"meter_body" db:"meter_body"`
	IsBurned          bool    `json:"is_burned" db:"is_burned"`

	ReadingBeforeTest *float64 `json:"reading_before_test" db:"reading_before_test"`
	ReadingAfterTest  *float64 `json:"reading_after_test" db:"reading_after_test"`
	RefStartReading   *float64 `json:"ref_start_reading" db:"ref_start_reading"`
	RefEndReading     *float64 `json:"ref_end_reading" db:"ref_end_reading"`
	ErrorPercentage   *float64 `json:"error_percentage" db:"error_percentage"`

	ShuntReadingBefore   *float64 `json:"shunt_reading_before_test" db:"shunt_reading_before_test"`
	ShuntReadingAfter    *float64 `json:"shunt_reading_after_test" db:"shunt_reading_after_test"`
	ShuntRefStart        *float64 `json:"shunt_ref_start_reading" db:"shunt_ref_start_reading"`
	ShuntRefEnd          *float64 `json:"shunt_ref_end_reading" db:"shunt_ref_end_reading"`
	ShuntErrorPct        *float64 `json:"shunt_error_percentage" db:"shunt_error_percentage"`
	NeutralReadingBefore *float64 `json:"neutral_reading_before_test" db:"neutral_reading_before_test"`
	NeutralReadingAfter  *float64 `json:"neutral_reading_after_test" db:"neutral_reading_after_test"`
	NeutralRefStart      *float64 `json:"neutral_ref_start_reading" db:"neutral_ref_start_reading"`
	NeutralRefEnd        *float64 `json:"neutral_ref_end_reading" db:"neutral_ref_end_reading"`
	NeutralErrorPct      *float64 `json:"neutral_error_percentage" db:"neutral_error_percentage"`
	ErrorPctImport       *float64 `json:"error_percentage_import" db:"error_percentage_import"`

	ImportStartReading *float64 `json:"start_reading_import" db:"start_reading_import"`
	ImportFinalReading *float64 `json:"final_reading_import" db:"final_reading_import"`
	ImportRefStart     *float64 `json:"import_ref_start_reading" db:"import_ref_start_reading"`
	ImportRefEnd       *float64 `json:"import_ref_end_reading" db:"import_ref_end_reading"`
	ExportStartReading *float64 `json:"start_reading_export" db:"start_reading_export"`
	ExportFinalReading *float64 `json:"final_reading_export" db:"final_reading_export"`
	ExportRefStart     *float64 `json:"export_ref_start_reading" db:"export_ref_start_reading"`
	ExportRefEnd       *float64 `json:"export_ref_end_reading" db:"export_ref_end_reading"`
	ErrorPctExport     *float64 `json:"error_percentage_export" db:"error_percentage_export"`
	FinalMeterDiff     *float64 `json:"final_meter_difference" db:"final_meter_difference"`

	ConsumerName    *string `json:"consumer_name" db:"consumer_name"`
	ConsumerAccount *string `json:"consumer_account_no" db:"consumer_account_no"`
	ConsumerAddress *string `json:"consumer_address" db:"consumer_address"`
	Division        *string `json:"division" db:"division"`

	CTRatio            *string  `json:"ct_ratio" db:"ct_ratio"`
	CTClass            *string  `json:"ct_class" db:"ct_class"`
	CTBurden           *string  `json:"ct_burden" db:"ct_burden"`
	CTPrimaryCurrent   *float64 `json:"ct_primary_current" db:"ct_primary_current"`
	CTSecondaryCurrent *float64 `json:"ct_secondary_current" db:"ct_secondary_current"`

	TestResult   *string `json:"test_result" db:"test_result"`
	Details      *string `json:"details" db:"details"`
	FinalRemarks *string `json:"final_remarks" db:"final_remarks"`
}
