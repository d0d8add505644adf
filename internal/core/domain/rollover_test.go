package domain_test

import (
	"testing"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestNextMonthlyBalance(t *testing.T) {
	tests := []struct {
		name     string
		envelope domain.Envelope
		want     decimal.Decimal
	}{
		{
			name: "rollover adds allocation to remaining balance",
			envelope: domain.Envelope{
				Rollover:   true,
				Balance:    decimal.NewFromInt(50),
				Allocation: decimal.NewFromInt(100),
			},
			want: decimal.NewFromInt(150),
		},
		{
			name: "non-rollover resets to allocation",
			envelope: domain.Envelope{
				Rollover:   false,
				Balance:    decimal.NewFromInt(75),
				Allocation: decimal.NewFromInt(200),
			},
			want: decimal.NewFromInt(200),
		},
		{
			name: "rollover carries a deficit forward",
			envelope: domain.Envelope{
				Rollover:   true,
				Balance:    decimal.NewFromInt(-25),
				Allocation: decimal.NewFromInt(100),
			},
			want: decimal.NewFromInt(75),
		},
		{
			name: "non-rollover discards a deficit",
			envelope: domain.Envelope{
				Rollover:   false,
				Balance:    decimal.NewFromInt(-25),
				Allocation: decimal.NewFromInt(100),
			},
			want: decimal.NewFromInt(100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NextMonthlyBalance(tt.envelope)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestMonthlyUpdateEligible(t *testing.T) {
	now := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		marker *time.Time
		want   bool
	}{
		{
			name:   "no marker means first ever run",
			marker: nil,
			want:   true,
		},
		{
			name:   "marker from a previous month",
			marker: timePtr(time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)),
			want:   true,
		},
		{
			name:   "marker from the same month",
			marker: timePtr(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)),
			want:   false,
		},
		{
			name:   "same month in a different year",
			marker: timePtr(time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.MonthlyUpdateEligible(tt.marker, now))
		})
	}
}

func TestEnvelopeAccessibleBy(t *testing.T) {
	owner := "alice"
	shared := domain.Envelope{IsIndividual: false}
	individual := domain.Envelope{IsIndividual: true, UserID: &owner}

	assert.True(t, shared.AccessibleBy("bob"))
	assert.True(t, individual.AccessibleBy("alice"))
	assert.False(t, individual.AccessibleBy("bob"))
}
