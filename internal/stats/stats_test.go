package stats

import (
	"testing"
	"time"

	"github.com/scanlead/backend/internal/models"
)

func regAt(t time.Time) models.Registration {
	return models.Registration{Name: "x", Email: "x@example.com", CreatedAt: t}
}

func TestComputeEmpty(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	for _, regs := range [][]models.Registration{nil, {}} {
		s := Compute(regs, now)
		if s.Today != 0 || s.Yesterday != 0 || s.Week != 0 || s.Total != 0 {
			t.Errorf("Compute(%v) = %+v, want all zeros", regs, s)
		}
	}
}

func TestComputeBuckets(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	regs := []models.Registration{
		regAt(now.Add(-1 * time.Hour)),           // today
		regAt(now.Add(-2 * time.Hour)),           // today
		regAt(now.AddDate(0, 0, -1)),             // yesterday, inside week
		regAt(now.Add(-6 * 24 * time.Hour)),      // inside week
		regAt(now.Add(-7 * 24 * time.Hour)),      // exactly a week old, inclusive
		regAt(now.Add(-8 * 24 * time.Hour)),      // outside week
		regAt(now.AddDate(0, -1, 0)),             // old
	}

	s := Compute(regs, now)
	if s.Total != len(regs) {
		t.Errorf("Total = %d, want %d", s.Total, len(regs))
	}
	if s.Today != 2 {
		t.Errorf("Today = %d, want 2", s.Today)
	}
	if s.Yesterday != 1 {
		t.Errorf("Yesterday = %d, want 1", s.Yesterday)
	}
	if s.Week != 5 {
		t.Errorf("Week = %d, want 5", s.Week)
	}
}

func TestComputeInvariants(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 30, 0, 0, time.Local)
	var regs []models.Registration
	for i := 0; i < 40; i++ {
		regs = append(regs, regAt(now.Add(-time.Duration(i*7)*time.Hour)))
	}
	s := Compute(regs, now)
	if s.Total != len(regs) {
		t.Fatalf("Total = %d, want %d", s.Total, len(regs))
	}
	if s.Today > s.Total || s.Yesterday > s.Total || s.Week > s.Total {
		t.Errorf("bucket exceeds total: %+v", s)
	}
	if s.Today > s.Week {
		t.Errorf("Today (%d) > Week (%d)", s.Today, s.Week)
	}
}

func TestConversionRate(t *testing.T) {
	conv := func(vals ...bool) []models.Scan {
		out := make([]models.Scan, len(vals))
		for i, v := range vals {
			out[i] = models.Scan{Converted: v}
		}
		return out
	}

	cases := []struct {
		name  string
		scans []models.Scan
		want  string
	}{
		{"empty", nil, "0.0"},
		{"none converted", conv(false, false), "0.0"},
		{"all converted", conv(true, true, true), "100.0"},
		{"three of four", conv(true, false, true, true), "75.0"},
		{"one of three rounds", conv(true, false, false), "33.3"},
		{"two of three rounds up", conv(true, true, false), "66.7"},
	}
	for _, tc := range cases {
		if got := ConversionRate(tc.scans); got != tc.want {
			t.Errorf("%s: ConversionRate = %q, want %q", tc.name, got, tc.want)
		}
	}
}
