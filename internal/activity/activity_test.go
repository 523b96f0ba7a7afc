package activity

import (
	"math"
	"testing"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

const epsilon = 1e-9

func TestGlobalFactor_Sunday(t *testing.T) {
	// Flat baseline regardless of hour.
	for _, hour := range []int{0, 9, 13, 18} {
		if got := GlobalFactor(hour, 0, time.Sunday); got != 0.1 {
			t.Errorf("GlobalFactor(%d, 0, Sunday) = %v, want 0.1", hour, got)
		}
	}
}

func TestGlobalFactor_Weekday(t *testing.T) {
	tests := []struct {
		name   string
		hour   int
		minute int
		want   float64
	}{
		{"overnight", 3, 0, 0.1},
		{"early morning start", 6, 0, 0.1},
		{"early morning midpoint", 7, 0, 0.2},
		{"arrival start", 8, 0, 0.3},
		{"arrival midpoint", 8, 30, 0.65},
		{"morning peak", 10, 0, 1.0},
		{"lunch", 13, 0, 0.95},
		{"afternoon start", 14, 0, 0.9},
		{"afternoon end", 17, 59, 0.9 - 0.1*(17.0+59.0/60.0-14)/4},
		{"late stay", 18, 30, 0.25},
		{"closing", 19, 30, 0.15},
		{"night", 21, 0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GlobalFactor(tt.hour, tt.minute, time.Tuesday)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("GlobalFactor(%d, %d) = %v, want %v", tt.hour, tt.minute, got, tt.want)
			}
		})
	}
}

func TestGlobalFactor_Continuity(t *testing.T) {
	// The arrival ramp must reach the morning plateau without a jump.
	end := GlobalFactor(8, 59, time.Monday)
	plateau := GlobalFactor(9, 0, time.Monday)
	if plateau-end > 0.02 {
		t.Errorf("discontinuity at 9:00: %v -> %v", end, plateau)
	}
}

func TestZoneFactor_Social(t *testing.T) {
	tests := []struct {
		name   string
		hour   int
		minute int
		want   float64
	}{
		{"dead early", 6, 0, 0.1},
		{"low morning", 9, 0, 0.4},
		{"lunch peak", 13, 0, 3.0}, // 0.5 + 2.5*exp(0)
		{"evening", 19, 0, 0.05},
		{"mid afternoon", 16, 0, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ZoneFactor(zone.CategorySocial, tt.hour, tt.minute)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("ZoneFactor(social, %d, %d) = %v, want %v", tt.hour, tt.minute, got, tt.want)
			}
		})
	}
}

func TestZoneFactor_SocialSpikeShape(t *testing.T) {
	// The spike must peak at 13:00 and fall off on both sides.
	peak := ZoneFactor(zone.CategorySocial, 13, 0)
	before := ZoneFactor(zone.CategorySocial, 12, 0)
	after := ZoneFactor(zone.CategorySocial, 14, 0)

	if peak <= before || peak <= after {
		t.Errorf("spike not centred at 13:00: before=%v peak=%v after=%v", before, peak, after)
	}
	if math.Abs(before-after) > epsilon {
		t.Errorf("spike not symmetric: before=%v after=%v", before, after)
	}
}

func TestZoneFactor_Study(t *testing.T) {
	tests := []struct {
		hour int
		want float64
	}{
		{10, 0.8},
		{12, 0.6},
		{13, 0.2},
		{15, 1.3},
		{18, 0.5},
		{22, 0.2},
	}

	for _, tt := range tests {
		if got := ZoneFactor(zone.CategoryStudy, tt.hour, 0); got != tt.want {
			t.Errorf("ZoneFactor(study, %d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestZoneFactor_Academic(t *testing.T) {
	tests := []struct {
		hour int
		want float64
	}{
		{10, 1.2},
		{12, 0.5},
		{15, 1.0},
		{18, 0.1},
		{5, 0.1},
	}

	for _, tt := range tests {
		if got := ZoneFactor(zone.CategoryAcademic, tt.hour, 0); got != tt.want {
			t.Errorf("ZoneFactor(academic, %d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestZoneFactor_UnknownCategory(t *testing.T) {
	if got := ZoneFactor(zone.Category("gym"), 12, 0); got != 1.0 {
		t.Errorf("unknown category = %v, want neutral 1.0", got)
	}
}
