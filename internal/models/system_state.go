package models

import "time"

// SystemState mirrors the system_state key/value table.
type SystemState struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
