// Package pulse converts integers into bit-serial transmission plans.
package pulse

import (
	"fmt"
	"strconv"

	"github.com/nvandessel/serialtemp/internal/constants"
	"github.com/nvandessel/serialtemp/internal/models"
)

// Timing holds the per-bit slot durations.
type Timing struct {
	DelayPerPulse int `json:"delay_per_pulse" yaml:"delay_per_pulse"`
	DelayDataSet  int `json:"delay_data_set" yaml:"delay_data_set"`
}

// DefaultTiming returns a 30 unit slot with 10 units of data-valid.
func DefaultTiming() Timing {
	return Timing{
		DelayPerPulse: constants.DefaultDelayPerPulse,
		DelayDataSet:  constants.DefaultDelayDataSet,
	}
}

// DelayAfterDataSet is the idle remainder of each slot.
func (t Timing) DelayAfterDataSet() int {
	return t.DelayPerPulse - t.DelayDataSet
}

// Validate checks that every slot has a non-negative idle period.
func (t Timing) Validate() error {
	if t.DelayPerPulse <= 0 {
		return fmt.Errorf("%w: delay_per_pulse must be positive, got %d", models.ErrConfiguration, t.DelayPerPulse)
	}
	if t.DelayDataSet < 0 {
		return fmt.Errorf("%w: delay_data_set must be non-negative, got %d", models.ErrConfiguration, t.DelayDataSet)
	}
	if t.DelayAfterDataSet() < 0 {
		return fmt.Errorf("%w: delay_data_set (%d) exceeds delay_per_pulse (%d)",
			models.ErrConfiguration, t.DelayDataSet, t.DelayPerPulse)
	}
	return nil
}

// Encoder builds pulse plans with a fixed timing.
type Encoder struct {
	timing Timing
}

// NewEncoder returns an encoder for t, or an error if t is invalid.
func NewEncoder(t Timing) (*Encoder, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{timing: t}, nil
}

// Timing returns the encoder's slot durations.
func (e *Encoder) Timing() Timing {
	return e.timing
}

// Encode builds a plan for value using DefaultTiming.
func Encode(value int) (models.PulsePlan, error) {
	e := Encoder{timing: DefaultTiming()}
	return e.Encode(value)
}

// Encode returns the MSB-first binary digits of value with the encoder's
// timing attached. Negative values are rejected.
func (e *Encoder) Encode(value int) (models.PulsePlan, error) {
	if value < 0 {
		return models.PulsePlan{}, fmt.Errorf("%w: value must be non-negative, got %d", models.ErrInvalidArgument, value)
	}
	return models.PulsePlan{
		Value:             value,
		Bits:              strconv.FormatInt(int64(value), 2),
		DelayPerPulse:     e.timing.DelayPerPulse,
		DelayDataSet:      e.timing.DelayDataSet,
		DelayAfterDataSet: e.timing.DelayAfterDataSet(),
	}, nil
}

// Decode parses an MSB-first bit string back into its integer value.
func Decode(bits string) (int, error) {
	if bits == "" {
		return 0, fmt.Errorf("%w: empty bit string", models.ErrInvalidArgument)
	}
	for i := 0; i < len(bits); i++ {
		if bits[i] != '0' && bits[i] != '1' {
			return 0, fmt.Errorf("%w: %q is not a binary digit at position %d", models.ErrInvalidArgument, bits[i], i)
		}
	}
	v, err := strconv.ParseInt(bits, 2, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}
	return int(v), nil
}

// Slots lays the plan's bits out on the serial timeline, one slot per bit.
func Slots(plan models.PulsePlan) []models.PulseSlot {
	slots := make([]models.PulseSlot, len(plan.Bits))
	for i := 0; i < len(plan.Bits); i++ {
		slots[i] = models.PulseSlot{
			Bit:          plan.Bits[i] - '0',
			Start:        i * plan.DelayPerPulse,
			DataSet:      plan.DelayDataSet,
			AfterDataSet: plan.DelayAfterDataSet,
		}
	}
	return slots
}
