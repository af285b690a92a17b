// Package render drives a generation run and turns its records into the
// text artifact a testbench consumes.
package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvandessel/serialtemp/internal/logging"
	"github.com/nvandessel/serialtemp/internal/models"
	"github.com/nvandessel/serialtemp/internal/pulse"
	"github.com/nvandessel/serialtemp/internal/sequence"
)

// Record pairs a sample with the plan used to transmit it.
type Record struct {
	Sample models.TemperatureSample `json:"sample"`
	Plan   models.PulsePlan         `json:"plan"`
}

// Run is the result of one driver invocation.
type Run struct {
	ID        string   `json:"run_id"`
	Count     int      `json:"count"`
	Anomalies int      `json:"anomalies"`
	Records   []Record `json:"records"`
}

// Driver composes the sequence generator and the pulse encoder.
type Driver struct {
	Generator *sequence.Generator
	Encoder   *pulse.Encoder
	Logger    *slog.Logger
	Decisions *logging.DecisionLogger
}

// NewDriver returns a driver with the given generator settings and timing.
// Invalid settings are reported rather than producing a partial driver.
func NewDriver(cfg sequence.Config, timing pulse.Timing, opts ...sequence.Option) (*Driver, error) {
	g, err := sequence.NewGenerator(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("building generator: %w", err)
	}
	e, err := pulse.NewEncoder(timing)
	if err != nil {
		return nil, fmt.Errorf("building encoder: %w", err)
	}
	return &Driver{Generator: g, Encoder: e}, nil
}

// Run generates count samples and encodes each one, in generation order.
// The first failure aborts the run.
func (d *Driver) Run(runID string, count int, rng sequence.Source) (*Run, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	samples, err := d.Generator.Generate(count, rng)
	if err != nil {
		return nil, fmt.Errorf("generating samples: %w", err)
	}

	run := &Run{
		ID:      runID,
		Count:   count,
		Records: make([]Record, 0, len(samples)),
	}
	for _, s := range samples {
		plan, err := d.Encoder.Encode(s.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding sample %d: %w", s.Index, err)
		}
		logger.Log(context.Background(), logging.LevelTrace, "sample encoded",
			"index", s.Index, "value", s.Value, "bits", plan.Bits, "anomaly", s.IsAnomaly())
		run.Records = append(run.Records, Record{Sample: s, Plan: plan})
	}
	run.Anomalies = models.CountAnomalies(samples)

	logger.Debug("run complete", "count", run.Count, "anomalies", run.Anomalies)
	d.Decisions.Log(map[string]any{
		"event":     "run_complete",
		"run_id":    runID,
		"count":     run.Count,
		"anomalies": run.Anomalies,
	})
	return run, nil
}
