// Package sequence generates simulated temperature readings with occasional
// out-of-range anomalies.
package sequence

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/nvandessel/serialtemp/internal/constants"
	"github.com/nvandessel/serialtemp/internal/logging"
	"github.com/nvandessel/serialtemp/internal/models"
)

// Source supplies the random draws the generator consumes.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a uniform integer in [0,n).
	IntN(n int) int
	// Float64 returns a uniform float in [0,1).
	Float64() float64
}

// NewSource returns a deterministic PCG-backed source for seed.
// A zero seed draws one from the clock.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Config controls anomaly injection.
type Config struct {
	// WarmupSamples is the last index that never carries an anomaly.
	WarmupSamples int

	// AnomalyThreshold is compared to a uniform draw; draws above it inject
	// an anomaly.
	AnomalyThreshold float64
}

// DefaultConfig returns the standard warm-up and anomaly rate.
func DefaultConfig() Config {
	return Config{
		WarmupSamples:    constants.DefaultWarmupSamples,
		AnomalyThreshold: constants.DefaultAnomalyThreshold,
	}
}

// Validate checks that the config describes a usable generator.
func (c Config) Validate() error {
	if c.WarmupSamples < 0 {
		return fmt.Errorf("%w: warmup_samples must be non-negative, got %d", models.ErrConfiguration, c.WarmupSamples)
	}
	if c.AnomalyThreshold < 0 || c.AnomalyThreshold > 1 {
		return fmt.Errorf("%w: anomaly_threshold must be between 0 and 1, got %f", models.ErrConfiguration, c.AnomalyThreshold)
	}
	return nil
}

// Generator produces temperature sequences. It holds no per-run state and
// may be reused; the Source passed to Generate must not be shared between
// concurrent calls.
type Generator struct {
	cfg       Config
	decisions *logging.DecisionLogger
	runID     string
}

// Option configures a Generator.
type Option func(*Generator)

// WithDecisionLogger records every anomaly injection to dl, tagged with runID.
func WithDecisionLogger(dl *logging.DecisionLogger, runID string) Option {
	return func(g *Generator) {
		g.decisions = dl
		g.runID = runID
	}
}

// NewGenerator creates a generator after validating cfg.
func NewGenerator(cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate produces count samples using the default config.
func Generate(count int, rng Source) ([]models.TemperatureSample, error) {
	g := &Generator{cfg: DefaultConfig()}
	return g.Generate(count, rng)
}

// Generate produces count samples in index order. Every sample is drawn
// from the normal range; past the warm-up window each one independently
// has a chance of being replaced by an anomaly.
func (g *Generator) Generate(count int, rng Source) ([]models.TemperatureSample, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: count must be non-negative, got %d", models.ErrInvalidArgument, count)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: no randomness source", models.ErrPrecondition)
	}

	samples := make([]models.TemperatureSample, 0, count)
	for i := 0; i < count; i++ {
		value := constants.NormalMin + rng.IntN(constants.NormalMax-constants.NormalMin)
		if i > g.cfg.WarmupSamples && rng.Float64() > g.cfg.AnomalyThreshold {
			value = constants.AnomalyMin + rng.IntN(constants.AnomalyMax-constants.AnomalyMin)
			g.decisions.Log(map[string]any{
				"event":  "anomaly_injected",
				"run_id": g.runID,
				"index":  i,
				"value":  value,
			})
		}
		samples = append(samples, models.TemperatureSample{Index: i, Value: value})
	}
	return samples, nil
}
