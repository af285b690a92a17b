package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nvandessel/serialtemp/internal/constants"
	"github.com/nvandessel/serialtemp/internal/models"
	"github.com/nvandessel/serialtemp/internal/pulse"
)

// Format specifies the output format for a run.
type Format string

const (
	// FormatCalls emits one task call per sample.
	FormatCalls Format = "calls"

	// FormatVerilog emits the task calls annotated with each pulse plan.
	FormatVerilog Format = "verilog"

	// FormatJSON emits the whole run as a JSON document.
	FormatJSON Format = "json"
)

// Valid returns true if the format is a recognized value.
func (f Format) Valid() bool {
	switch f {
	case FormatCalls, FormatVerilog, FormatJSON:
		return true
	}
	return false
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// ParseFormat maps a name to a Format. Empty selects FormatCalls.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatCalls, nil
	}
	f := Format(strings.ToLower(s))
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown format %q (valid: calls, verilog, json)", models.ErrInvalidArgument, s)
	}
	return f, nil
}

// Call returns the testbench statement for one sample.
func Call(s models.TemperatureSample) string {
	return fmt.Sprintf("%s(%d);", constants.SendCallName, s.Value)
}

// Write renders run to w in the given format.
func Write(w io.Writer, run *Run, format Format) error {
	switch format {
	case FormatCalls:
		_, err := io.WriteString(w, RenderCalls(run))
		return err
	case FormatVerilog:
		_, err := io.WriteString(w, RenderVerilog(run))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	default:
		return fmt.Errorf("%w: unknown format %q", models.ErrInvalidArgument, format)
	}
}

// RenderCalls produces one call per line, earliest sample first.
func RenderCalls(run *Run) string {
	var b strings.Builder
	for _, r := range run.Records {
		b.WriteString(Call(r.Sample))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderVerilog produces the call list under a header naming the run. Each
// call carries its pulse plan as a trailing comment, followed by one comment
// line per bit giving the data-valid and idle windows of its slot.
func RenderVerilog(run *Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// run %s: %d samples, %d anomalies\n", run.ID, run.Count, run.Anomalies)
	for _, r := range run.Records {
		b.WriteString(Call(r.Sample))
		fmt.Fprintf(&b, " // bits=%s slot=%d data_set=%d after_data_set=%d total=%d",
			r.Plan.Bits, r.Plan.DelayPerPulse, r.Plan.DelayDataSet, r.Plan.DelayAfterDataSet, r.Plan.Duration())
		if r.Sample.IsAnomaly() {
			b.WriteString(" anomaly")
		}
		b.WriteByte('\n')
		for _, slot := range pulse.Slots(r.Plan) {
			valid := slot.Start + slot.DataSet
			fmt.Fprintf(&b, "//   bit=%d data_set=%d..%d after_data_set=%d..%d\n",
				slot.Bit, slot.Start, valid, valid, valid+slot.AfterDataSet)
		}
	}
	return b.String()
}
