package surge

import (
	"math"
	"testing"
)

func TestDetect_TooFewSamples(t *testing.T) {
	surged, growth := Detect([]int{10, 12, 11, 13})
	if surged || growth != 0 {
		t.Errorf("Detect(4 samples) = (%v, %v), want (false, 0)", surged, growth)
	}
}

func TestDetect_StableHistory(t *testing.T) {
	history := []int{50, 51, 49, 50, 52, 50, 51, 50, 49, 51}
	surged, growth := Detect(history)
	if surged {
		t.Errorf("stable history flagged as surge (growth %v)", growth)
	}
	if math.Abs(growth) > 0.05 {
		t.Errorf("growth = %v, want near zero", growth)
	}
}

func TestDetect_SustainedGrowth(t *testing.T) {
	// Older window mean 20, recent window mean 40: growth 1.0.
	history := []int{20, 20, 20, 20, 20, 40, 40, 40, 40, 40}
	surged, growth := Detect(history)
	if !surged {
		t.Error("100% growth not flagged as surge")
	}
	if math.Abs(growth-1.0) > 1e-9 {
		t.Errorf("growth = %v, want 1.0", growth)
	}
}

func TestDetect_GrowthBelowThreshold(t *testing.T) {
	// 20% growth between windows stays below the 30% threshold.
	history := []int{100, 100, 100, 100, 100, 120, 120, 120, 120, 120}
	surged, growth := Detect(history)
	if surged {
		t.Errorf("20%% growth flagged as surge (growth %v)", growth)
	}
	if math.Abs(growth-0.2) > 1e-9 {
		t.Errorf("growth = %v, want 0.2", growth)
	}
}

func TestDetect_ZScoreOutlier(t *testing.T) {
	// Flat history with a single large spike at the end. Window means
	// barely move, but the final sample is a clear statistical outlier.
	history := []int{50, 50, 50, 50, 50, 50, 50, 50, 50, 200}
	surged, _ := Detect(history)
	if !surged {
		t.Error("z-score outlier not flagged as surge")
	}
}

func TestDetect_ShortHistoryComparesAgainstHead(t *testing.T) {
	// With 5-9 samples the older window is the first five samples.
	history := []int{10, 10, 10, 10, 10, 30, 30}
	_, growth := Detect(history)
	// Recent window: {10, 10, 10, 30, 30} mean 18; older {10,...} mean 10.
	want := 0.8
	if math.Abs(growth-want) > 1e-9 {
		t.Errorf("growth = %v, want %v", growth, want)
	}
}

func TestDetect_ZeroBaseline(t *testing.T) {
	// Division guard: an empty older window mean uses max(mean, 1).
	history := []int{0, 0, 0, 0, 0, 10, 10, 10, 10, 10}
	surged, growth := Detect(history)
	if !surged {
		t.Error("growth from zero baseline not flagged")
	}
	if growth != 10.0 {
		t.Errorf("growth = %v, want 10.0", growth)
	}
}
