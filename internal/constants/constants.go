// Package constants provides named constants used throughout serialtemp.
// This centralizes the sampling and timing numbers so they are not
// scattered as literals across the generator and encoder.
package constants

// Temperature ranges. Each range is inclusive-exclusive.
const (
	// NormalMin is the lowest normal temperature reading.
	NormalMin = 92

	// NormalMax is one past the highest normal temperature reading.
	NormalMax = 99

	// AnomalyMin is the lowest anomalous temperature reading.
	AnomalyMin = 130

	// AnomalyMax is one past the highest anomalous temperature reading.
	AnomalyMax = 140
)

// Anomaly injection constants
const (
	// DefaultWarmupSamples is the last sample index that can never carry an
	// anomaly. Anomalies are only considered for indices strictly greater.
	DefaultWarmupSamples = 20

	// DefaultAnomalyThreshold is compared against a uniform draw in [0,1);
	// draws above it inject an anomaly (a 25% chance per eligible sample).
	DefaultAnomalyThreshold = 0.75
)

// Serial pulse timing, in testbench time units.
const (
	// DefaultDelayPerPulse is the time slot reserved for one bit.
	DefaultDelayPerPulse = 30

	// DefaultDelayDataSet is the part of a slot spent signalling data-valid.
	DefaultDelayDataSet = 10
)

// Driver defaults
const (
	// DefaultSampleCount is the number of samples generated when no count is given.
	DefaultSampleCount = 10

	// SendCallName is the testbench task invoked once per sample.
	SendCallName = "SendSerialTemperature"
)

// MCP tool limits
const (
	// MaxToolSampleCount is the largest count one serialtemp_generate call
	// may request. Runs are built in memory.
	MaxToolSampleCount = 10000

	// SampleBudgetRate is how many generated samples per second the MCP
	// server replenishes across all generate calls.
	SampleBudgetRate = 2000

	// SampleBudgetBurst is the sample budget available to an idle server.
	// It covers two maximal runs back to back.
	SampleBudgetBurst = 2 * MaxToolSampleCount
)
