package mcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/serialtemp/internal/constants"
	"github.com/nvandessel/serialtemp/internal/logging"
	"github.com/nvandessel/serialtemp/internal/models"
	"github.com/nvandessel/serialtemp/internal/pathutil"
	"github.com/nvandessel/serialtemp/internal/pulse"
	"github.com/nvandessel/serialtemp/internal/ratelimit"
	"github.com/nvandessel/serialtemp/internal/render"
	"github.com/nvandessel/serialtemp/internal/sequence"
)

// registerTools registers all serialtemp MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "serialtemp_generate",
		Description: "Generate a simulated temperature sequence and render SendSerialTemperature calls for a testbench",
	}, s.handleGenerate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "serialtemp_encode",
		Description: "Encode one non-negative integer as MSB-first bits with serial pulse timing",
	}, s.handleEncode)
}

// auditTool records a tool call to the operational log and decision trace.
func (s *Server) auditTool(tool string, start time.Time, err error, params map[string]any) {
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start)
	s.logger.Debug("tool call", "tool", tool, "status", status, "duration", duration)

	entry := map[string]any{
		"event":       "tool_call",
		"tool":        tool,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	for k, v := range params {
		entry[k] = v
	}
	s.decisions.Log(entry)
}

func (s *Server) handleGenerate(ctx context.Context, req *sdk.CallToolRequest, args GenerateInput) (_ *sdk.CallToolResult, _ GenerateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("serialtemp_generate", start, retErr, map[string]any{
			"count": args.Count, "seed": args.Seed, "format": args.Format,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "serialtemp_generate"); err != nil {
		return nil, GenerateOutput{}, err
	}

	count := s.settings.Generation.Count
	if args.Count != nil {
		count = *args.Count
	}
	if count > constants.MaxToolSampleCount {
		return nil, GenerateOutput{}, fmt.Errorf("%w: count %d exceeds the per-call limit of %d",
			models.ErrInvalidArgument, count, constants.MaxToolSampleCount)
	}
	if err := ratelimit.CheckSamples(s.toolLimiters, count); err != nil {
		return nil, GenerateOutput{}, err
	}

	formatName := args.Format
	if formatName == "" {
		formatName = s.settings.Output.Format
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	seed := args.Seed
	if seed == 0 {
		seed = s.settings.Generation.Seed
	}

	runID := logging.NewRunID()
	driver := &render.Driver{
		Generator: s.generator,
		Encoder:   s.encoder,
		Logger:    logging.ForRun(s.logger, runID),
		Decisions: s.decisions,
	}
	run, err := driver.Run(runID, count, sequence.NewSource(seed))
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, run, format); err != nil {
		return nil, GenerateOutput{}, fmt.Errorf("rendering run: %w", err)
	}

	out := GenerateOutput{
		RunID:     run.ID,
		Count:     run.Count,
		Anomalies: run.Anomalies,
		Temps:     make([]int, len(run.Records)),
	}
	for i, r := range run.Records {
		out.Temps[i] = r.Sample.Value
	}

	if args.Output == "" {
		out.Artifact = buf.String()
		return nil, out, nil
	}

	path, err := pathutil.ResolveOutput(args.Output, s.root)
	if err != nil {
		return nil, GenerateOutput{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, GenerateOutput{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, GenerateOutput{}, fmt.Errorf("failed to write %s: %w", pathutil.RedactPath(path), err)
	}
	out.OutputPath = path
	return nil, out, nil
}

func (s *Server) handleEncode(ctx context.Context, req *sdk.CallToolRequest, args EncodeInput) (_ *sdk.CallToolResult, _ EncodeOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := map[string]any{}
		if args.Value != nil {
			params["value"] = *args.Value
		}
		s.auditTool("serialtemp_encode", start, retErr, params)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "serialtemp_encode"); err != nil {
		return nil, EncodeOutput{}, err
	}

	if args.Value == nil {
		return nil, EncodeOutput{}, fmt.Errorf("%w: value is required", models.ErrInvalidArgument)
	}

	plan, err := s.encoder.Encode(*args.Value)
	if err != nil {
		return nil, EncodeOutput{}, err
	}

	return nil, EncodeOutput{
		Plan:     plan,
		Slots:    pulse.Slots(plan),
		Duration: plan.Duration(),
	}, nil
}
