package rentals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(v float64) *float64 { return &v }

func TestCostWholeDays(t *testing.T) {
	// 2 days at ฿300/day
	got := Cost(at("2025-01-01T10:00:00Z"), at("2025-01-03T10:00:00Z"), 300, ptr(50))
	assert.Equal(t, 600.0, got)
}

func TestCostHoursOnly(t *testing.T) {
	// 5 hours at ฿50/hour
	got := Cost(at("2025-01-01T10:00:00Z"), at("2025-01-01T15:00:00Z"), 300, ptr(50))
	assert.Equal(t, 250.0, got)
}

func TestCostDaysPlusHours(t *testing.T) {
	// 1 day 5 hours: ฿300 + 5*฿50
	got := Cost(at("2025-01-01T10:00:00Z"), at("2025-01-02T15:00:00Z"), 300, ptr(50))
	assert.Equal(t, 550.0, got)
}

func TestCostNoHourlyRateRoundsUp(t *testing.T) {
	// 1 day 5 hours with no hourly rate bills 2 full days
	got := Cost(at("2025-01-01T10:00:00Z"), at("2025-01-02T15:00:00Z"), 300, nil)
	assert.Equal(t, 600.0, got)
}

func TestCostPartialHourRoundsUp(t *testing.T) {
	// 90 minutes bills 2 hours
	got := Cost(at("2025-01-01T10:00:00Z"), at("2025-01-01T11:30:00Z"), 300, ptr(50))
	assert.Equal(t, 100.0, got)
}

func TestCostEmptyPeriod(t *testing.T) {
	ts := at("2025-01-01T10:00:00Z")
	assert.Equal(t, 0.0, Cost(ts, ts, 300, ptr(50)))
}
