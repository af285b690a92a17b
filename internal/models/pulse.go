package models

// PulsePlan describes how one integer is sent bit by bit over a serial line.
type PulsePlan struct {
	// Value is the encoded integer.
	Value int `json:"value"`

	// Bits is the base-2 form of Value, most significant bit first, with no
	// leading zeros ("0" for zero).
	Bits string `json:"bits"`

	// DelayPerPulse is the time slot reserved for one bit.
	DelayPerPulse int `json:"delay_per_pulse"`

	// DelayDataSet is the part of a slot spent signalling data-valid.
	DelayDataSet int `json:"delay_data_set"`

	// DelayAfterDataSet is the idle remainder of a slot.
	// Always DelayPerPulse - DelayDataSet.
	DelayAfterDataSet int `json:"delay_after_data_set"`
}

// Duration returns the total time needed to send every bit.
func (p PulsePlan) Duration() int {
	return len(p.Bits) * p.DelayPerPulse
}

// PulseSlot places one bit of a PulsePlan on the serial timeline.
type PulseSlot struct {
	Bit          byte `json:"bit"`
	Start        int  `json:"start"`
	DataSet      int  `json:"data_set"`
	AfterDataSet int  `json:"after_data_set"`
}
