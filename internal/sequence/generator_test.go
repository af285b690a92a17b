package sequence

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/serialtemp/internal/logging"
	"github.com/nvandessel/serialtemp/internal/models"
)

// scriptedSource replays fixed draws and counts how many were taken.
type scriptedSource struct {
	ints    []int
	floats  []float64
	intN    []int
	nInts   int
	nFloats int
}

func (s *scriptedSource) IntN(n int) int {
	s.intN = append(s.intN, n)
	v := 0
	if len(s.ints) > 0 {
		v = s.ints[s.nInts%len(s.ints)]
	}
	s.nInts++
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	v := 0.0
	if len(s.floats) > 0 {
		v = s.floats[s.nFloats%len(s.floats)]
	}
	s.nFloats++
	return v
}

func TestGenerate_Length(t *testing.T) {
	for _, count := range []int{0, 1, 10, 21, 22, 100} {
		samples, err := Generate(count, NewSource(42))
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", count, err)
		}
		if len(samples) != count {
			t.Errorf("Generate(%d) returned %d samples", count, len(samples))
		}
		for i, s := range samples {
			if s.Index != i {
				t.Errorf("samples[%d].Index = %d", i, s.Index)
			}
		}
	}
}

func TestGenerate_Ranges(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		samples, err := Generate(200, NewSource(seed))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, s := range samples {
			if s.Index <= 20 && !s.IsNormal() {
				t.Errorf("seed %d: warm-up sample %d = %d, want [92,99)", seed, s.Index, s.Value)
			}
			if s.Index > 20 && !s.IsNormal() && !s.IsAnomaly() {
				t.Errorf("seed %d: sample %d = %d outside both ranges", seed, s.Index, s.Value)
			}
		}
	}
}

func TestGenerate_AnomaliesAppearAfterWarmup(t *testing.T) {
	samples, err := Generate(500, NewSource(7))
	if err != nil {
		t.Fatal(err)
	}
	if models.CountAnomalies(samples) == 0 {
		t.Error("expected at least one anomaly in 500 samples")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := Generate(25, NewSource(1234))
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate(25, NewSource(1234))
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, first[i], second[i])
		}
	}
	for _, s := range first[:21] {
		if s.IsAnomaly() {
			t.Errorf("sample %d is an anomaly inside warm-up window", s.Index)
		}
	}
}

func TestGenerate_NegativeCount(t *testing.T) {
	_, err := Generate(-1, NewSource(1))
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Generate(-1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestGenerate_NilSource(t *testing.T) {
	_, err := Generate(3, nil)
	if !errors.Is(err, models.ErrPrecondition) {
		t.Errorf("Generate(nil source) error = %v, want ErrPrecondition", err)
	}
}

func TestGenerate_DrawAccounting(t *testing.T) {
	// Floats never exceed the threshold, so no anomalies are injected.
	src := &scriptedSource{ints: []int{3}, floats: []float64{0.5}}
	samples, err := Generate(25, src)
	if err != nil {
		t.Fatal(err)
	}
	if src.nInts != 25 {
		t.Errorf("IntN draws = %d, want 25", src.nInts)
	}
	// Indices 21..24 are eligible.
	if src.nFloats != 4 {
		t.Errorf("Float64 draws = %d, want 4", src.nFloats)
	}
	for _, s := range samples {
		if s.Value != 95 {
			t.Errorf("sample %d = %d, want 95", s.Index, s.Value)
		}
	}
	for _, n := range src.intN {
		if n != 7 {
			t.Errorf("IntN called with %d, want 7", n)
		}
	}
}

func TestGenerate_InjectsAnomalyAboveThreshold(t *testing.T) {
	src := &scriptedSource{ints: []int{4}, floats: []float64{0.9}}
	samples, err := Generate(23, src)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range samples[:21] {
		if s.Value != 96 {
			t.Errorf("sample %d = %d, want 96", s.Index, s.Value)
		}
	}
	for _, s := range samples[21:] {
		if s.Value != 134 {
			t.Errorf("sample %d = %d, want 134", s.Index, s.Value)
		}
	}
	// 21 warm-up draws, then two normal + two anomaly draws.
	if src.nInts != 25 {
		t.Errorf("IntN draws = %d, want 25", src.nInts)
	}
}

func TestGenerate_ThresholdIsStrict(t *testing.T) {
	src := &scriptedSource{floats: []float64{0.75}}
	samples, err := Generate(30, src)
	if err != nil {
		t.Fatal(err)
	}
	if n := models.CountAnomalies(samples); n != 0 {
		t.Errorf("draw equal to threshold injected %d anomalies, want 0", n)
	}
}

func TestNewGenerator_ValidatesConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"no warmup", Config{WarmupSamples: 0, AnomalyThreshold: 0.5}, false},
		{"negative warmup", Config{WarmupSamples: -1, AnomalyThreshold: 0.5}, true},
		{"threshold above one", Config{WarmupSamples: 20, AnomalyThreshold: 1.5}, true},
		{"negative threshold", Config{WarmupSamples: 20, AnomalyThreshold: -0.1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGenerator() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrConfiguration) {
				t.Errorf("error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestGenerator_CustomWarmup(t *testing.T) {
	g, err := NewGenerator(Config{WarmupSamples: 2, AnomalyThreshold: 0.75})
	if err != nil {
		t.Fatal(err)
	}
	src := &scriptedSource{floats: []float64{0.99}}
	samples, err := g.Generate(5, src)
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{false, false, false, true, true}
	for i, s := range samples {
		if s.IsAnomaly() != want[i] {
			t.Errorf("sample %d anomaly = %v, want %v", i, s.IsAnomaly(), want[i])
		}
	}
}

func TestGenerator_LogsAnomalies(t *testing.T) {
	dir := t.TempDir()
	dl := logging.NewDecisionLogger(dir, "debug")
	defer dl.Close()

	g, err := NewGenerator(DefaultConfig(), WithDecisionLogger(dl, "run-1"))
	if err != nil {
		t.Fatal(err)
	}
	src := &scriptedSource{floats: []float64{0.9}}
	if _, err := g.Generate(23, src); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "decisions.jsonl"))
	if err != nil {
		t.Fatalf("failed to read decisions.jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 anomaly entries, got %d: %q", len(lines), string(data))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["event"] != "anomaly_injected" || entry["run_id"] != "run-1" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["index"] != float64(21) {
		t.Errorf("index = %v, want 21", entry["index"])
	}
}
