package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reading is a meter or reference reading exactly as the tester entered it.
// It decodes from a JSON string, number or null so text inputs and numeric
// inputs bind alike. Interpreting the value is left to metrology.ParseReading.
type Reading string

// UnmarshalJSON accepts "12.5", 12.5 and null.
func (r *Reading) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Reading(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("reading must be a number, string or null: %w", err)
	}
	*r = Reading(n.String())
	return nil
}
