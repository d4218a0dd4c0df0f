package app

import "testing"

func TestPowerHistogramDefaults(t *testing.T) {
	h := NewPowerHistogram()

	// Below the minimum sample count the defaults apply.
	bounds := h.GetPercentileBounds()
	if bounds.Min != defaultMinPower || bounds.Max != defaultMaxPower {
		t.Errorf("bounds = %+v, want defaults", bounds)
	}
}

func TestPowerHistogramPercentiles(t *testing.T) {
	h := NewPowerHistogram()

	// 100 values spread uniformly over [-80, -40)
	for i := 0; i < 100; i++ {
		level := -80.0 + 0.4*float64(i)
		h.Update(&level)
	}

	bounds := h.GetPercentileBounds()
	if bounds.Min >= bounds.Max {
		t.Fatalf("bounds.Min = %g >= bounds.Max = %g", bounds.Min, bounds.Max)
	}
	if bounds.Max-bounds.Min < 30 {
		t.Errorf("bounds span = %g, want at least the 30dB minimum", bounds.Max-bounds.Min)
	}
	if bounds.Mean > -40 || bounds.Mean < -80 {
		t.Errorf("bounds.Mean = %g, want within the data range", bounds.Mean)
	}
}

func TestSmoothBounds(t *testing.T) {
	s := NewSmoothBounds(0.5)

	if got := s.Update(nil); got != defaultPowerBounds() {
		t.Errorf("Update(nil) = %+v, want defaults", got)
	}

	for i := 0; i < 200; i++ {
		level := -70.0 + 0.2*float64(i%100)
		s.Update(&level)
	}

	smoothed := s.Current()
	if smoothed == defaultPowerBounds() {
		t.Error("Current() still at defaults after updates")
	}
	if smoothed.Min >= smoothed.Max {
		t.Errorf("Min = %g >= Max = %g", smoothed.Min, smoothed.Max)
	}

	s.Clear()
	if s.Current() != defaultPowerBounds() {
		t.Error("Current() != defaults after Clear()")
	}
}
