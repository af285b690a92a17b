// Package models defines the values passed between the sequence generator,
// the pulse encoder and the renderers.
package models

import "github.com/nvandessel/serialtemp/internal/constants"

// TemperatureSample is one generated temperature reading.
type TemperatureSample struct {
	// Index is the position of the sample in its sequence, starting at 0.
	Index int `json:"index" yaml:"index"`

	// Value is the temperature reading.
	Value int `json:"value" yaml:"value"`
}

// IsAnomaly reports whether the reading falls in the anomaly range.
func (s TemperatureSample) IsAnomaly() bool {
	return s.Value >= constants.AnomalyMin && s.Value < constants.AnomalyMax
}

// IsNormal reports whether the reading falls in the normal range.
func (s TemperatureSample) IsNormal() bool {
	return s.Value >= constants.NormalMin && s.Value < constants.NormalMax
}

// CountAnomalies returns how many samples are anomalies.
func CountAnomalies(samples []TemperatureSample) int {
	n := 0
	for _, s := range samples {
		if s.IsAnomaly() {
			n++
		}
	}
	return n
}
