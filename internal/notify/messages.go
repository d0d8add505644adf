package notify

import (
	"encoding/json"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
)

// MonthlyUpdateMessage is the wire form of a completed rollover run.
// Consumers that need per-envelope detail fetch it from the API; the message
// carries the counts and the human-readable summary.
type MonthlyUpdateMessage struct {
	UpdateDate              string    `json:"updateDate"`
	TotalEnvelopesProcessed int       `json:"totalEnvelopesProcessed"`
	RolloverCount           int       `json:"rolloverCount"`
	ResetCount              int       `json:"resetCount"`
	Summary                 string    `json:"summary"`
	Timestamp               time.Time `json:"timestamp"`
}

// NewMonthlyUpdateMessage builds the wire message for a run result.
func NewMonthlyUpdateMessage(result *domain.MonthlyUpdateResult, summary string) *MonthlyUpdateMessage {
	return &MonthlyUpdateMessage{
		UpdateDate:              result.UpdateDate.Format(domain.MarkerDateLayout),
		TotalEnvelopesProcessed: result.TotalEnvelopesProcessed,
		RolloverCount:           result.RolloverCount,
		ResetCount:              result.ResetCount,
		Summary:                 summary,
		Timestamp:               time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MonthlyUpdateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthlyUpdateMessageFromJSON creates a message from JSON bytes
func MonthlyUpdateMessageFromJSON(data []byte) (*MonthlyUpdateMessage, error) {
	var msg MonthlyUpdateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
