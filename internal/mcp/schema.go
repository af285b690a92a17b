package mcp

import "github.com/nvandessel/serialtemp/internal/models"

// GenerateInput defines the input for the serialtemp_generate tool.
type GenerateInput struct {
	Count  *int   `json:"count,omitempty" jsonschema:"Number of samples to generate, at most 10000 (default from configuration, normally 10)"`
	Seed   uint64 `json:"seed,omitempty" jsonschema:"Seed for a reproducible run; 0 seeds from the clock"`
	Format string `json:"format,omitempty" jsonschema:"Artifact format: calls, verilog or json"`
	Output string `json:"output,omitempty" jsonschema:"Optional file to write the artifact to, relative to the project root"`
}

// GenerateOutput defines the output for the serialtemp_generate tool.
type GenerateOutput struct {
	RunID      string `json:"run_id" jsonschema:"Identifier of this generation run"`
	Count      int    `json:"count" jsonschema:"Number of samples generated"`
	Anomalies  int    `json:"anomalies" jsonschema:"Number of anomalous samples"`
	Temps      []int  `json:"temperatures" jsonschema:"Sample values in generation order"`
	Artifact   string `json:"artifact,omitempty" jsonschema:"Rendered artifact, omitted when written to a file"`
	OutputPath string `json:"output_path,omitempty" jsonschema:"Absolute path of the written artifact"`
}

// EncodeInput defines the input for the serialtemp_encode tool.
type EncodeInput struct {
	Value *int `json:"value" jsonschema:"Non-negative integer to encode"`
}

// EncodeOutput defines the output for the serialtemp_encode tool.
type EncodeOutput struct {
	Plan     models.PulsePlan   `json:"plan" jsonschema:"Bits and slot timing for the value"`
	Slots    []models.PulseSlot `json:"slots" jsonschema:"Per-bit timeline"`
	Duration int                `json:"duration" jsonschema:"Total transmission time"`
}
