package domain

import "time"

// LastMonthlyUpdateKey is the system state key recording when the monthly
// rollover last ran. Its value uses MarkerDateLayout.
const LastMonthlyUpdateKey = "last_monthly_update"

// MarkerDateLayout is the storage format for date-valued system state.
const MarkerDateLayout = "2006-01-02"

// SystemState is a key/value pair persisted alongside the ledger, used for
// process markers such as the monthly update date.
type SystemState struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarkerTime parses a date-valued state entry. The zero time and an error
// are returned when the value is not a date.
func (s SystemState) MarkerTime() (time.Time, error) {
	return time.Parse(MarkerDateLayout, s.Value)
}
