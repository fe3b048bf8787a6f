// Package stats derives dashboard counters from a client's registrations and
// scan events. Everything here is pure: callers inject "now" so results are
// deterministic under test.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/scanlead/backend/internal/models"
)

// Summary holds registration counters for one client.
type Summary struct {
	Today     int `json:"today"`
	Yesterday int `json:"yesterday"`
	Week      int `json:"week"`
	Total     int `json:"total"`
}

// Compute buckets registrations against now. Today and Yesterday compare
// local calendar days; Week is a rolling window of now minus seven days,
// inclusive, not a calendar-week boundary. An empty or nil input yields all
// zeros.
func Compute(regs []models.Registration, now time.Time) Summary {
	var s Summary
	today := dayKey(now)
	yesterday := dayKey(now.AddDate(0, 0, -1))
	weekStart := now.Add(-7 * 24 * time.Hour)

	for _, r := range regs {
		s.Total++
		switch dayKey(r.CreatedAt) {
		case today:
			s.Today++
		case yesterday:
			s.Yesterday++
		}
		if !r.CreatedAt.Before(weekStart) {
			s.Week++
		}
	}
	return s
}

// ConversionRate returns 100 * converted / total scans as a string with one
// decimal place, rounded half away from zero. Zero scans yields "0.0" rather
// than a division error.
func ConversionRate(scans []models.Scan) string {
	if len(scans) == 0 {
		return "0.0"
	}
	converted := 0
	for _, sc := range scans {
		if sc.Converted {
			converted++
		}
	}
	rate := 100 * float64(converted) / float64(len(scans))
	return fmt.Sprintf("%.1f", math.Round(rate*10)/10)
}

func dayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
