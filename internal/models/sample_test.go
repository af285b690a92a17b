package models

import "testing"

func TestTemperatureSample_Classification(t *testing.T) {
	tests := []struct {
		name        string
		value       int
		wantNormal  bool
		wantAnomaly bool
	}{
		{"normal lower bound", 92, true, false},
		{"normal upper bound", 98, true, false},
		{"just past normal", 99, false, false},
		{"below normal", 91, false, false},
		{"anomaly lower bound", 130, false, true},
		{"anomaly upper bound", 139, false, true},
		{"just past anomaly", 140, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := TemperatureSample{Value: tt.value}
			if got := s.IsNormal(); got != tt.wantNormal {
				t.Errorf("IsNormal(%d) = %v, want %v", tt.value, got, tt.wantNormal)
			}
			if got := s.IsAnomaly(); got != tt.wantAnomaly {
				t.Errorf("IsAnomaly(%d) = %v, want %v", tt.value, got, tt.wantAnomaly)
			}
		})
	}
}

func TestCountAnomalies(t *testing.T) {
	samples := []TemperatureSample{
		{Index: 0, Value: 95},
		{Index: 1, Value: 131},
		{Index: 2, Value: 97},
		{Index: 3, Value: 139},
	}
	if got := CountAnomalies(samples); got != 2 {
		t.Errorf("CountAnomalies() = %d, want 2", got)
	}
	if got := CountAnomalies(nil); got != 0 {
		t.Errorf("CountAnomalies(nil) = %d, want 0", got)
	}
}

func TestPulsePlan_Duration(t *testing.T) {
	p := PulsePlan{Value: 5, Bits: "101", DelayPerPulse: 30}
	if got := p.Duration(); got != 90 {
		t.Errorf("Duration() = %d, want 90", got)
	}
}
