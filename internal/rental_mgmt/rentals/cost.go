package rentals

import (
	"math"
	"time"
)

// Cost computes the rental charge for a period. Whole days are billed at the
// daily rate; a leftover fraction of a day is billed hourly when the product
// carries an hourly rate, otherwise it rounds up to a full day.
func Cost(start, end time.Time, dailyRate float64, hourlyRate *float64) float64 {
	hours := int(math.Ceil(end.Sub(start).Hours()))
	if hours <= 0 {
		return 0
	}

	if hourlyRate == nil || *hourlyRate <= 0 {
		days := (hours + 23) / 24
		return round2(float64(days) * dailyRate)
	}

	days := hours / 24
	rem := hours % 24
	return round2(float64(days)*dailyRate + float64(rem)**hourlyRate)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
