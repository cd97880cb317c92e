package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"standardtransform/pkg/config"
	"standardtransform/pkg/datasets"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := New(strings.NewReader(stdin), &out, &errOut).RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

const splitCSV = "pt_position_x,pt_position_y,pt_position_z\n59769,60738,9145\n180000,90000,20000\n"

func TestParseVec(t *testing.T) {
	tests := []struct {
		in      string
		want    r3.Vec
		wantErr bool
	}{
		{"1,2,3", r3.Vec{X: 1, Y: 2, Z: 3}, false},
		{" 4, 5.5, -6 ", r3.Vec{X: 4, Y: 5.5, Z: -6}, false},
		{"[7, 8, 9]", r3.Vec{X: 7, Y: 8, Z: 9}, false},
		{"1 2 3", r3.Vec{X: 1, Y: 2, Z: 3}, false},
		{"1,2", r3.Vec{}, true},
		{"", r3.Vec{}, true},
		{"a,b,c", r3.Vec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseVec(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseResolution(t *testing.T) {
	d := datasets.Minnie65()
	tests := []struct {
		in   string
		want r3.Vec
	}{
		{"vx", d.VoxelResolution},
		{"", d.VoxelResolution},
		{"NM", datasets.Nanometers},
		{"8,8,40", r3.Vec{X: 8, Y: 8, Z: 40}},
	}
	for _, tt := range tests {
		got, err := parseResolution(tt.in, d)
		if err != nil {
			t.Fatalf("parseResolution(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseResolution(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := parseResolution("fast", d); err == nil {
		t.Error("parseResolution should reject unknown names")
	}
}

func TestFormatFloat(t *testing.T) {
	if got := formatFloat(0.1, -1); got != "0.1" {
		t.Errorf("formatFloat(0.1, -1) = %q, want %q", got, "0.1")
	}
	if got := formatFloat(2.0/3, 3); got != "0.667" {
		t.Errorf("formatFloat(2/3, 3) = %q, want %q", got, "0.667")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug message should be filtered at info level")
	}
	logger.Info("shown")
	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}

	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Error("loggerFromContext should return the attached logger")
	}
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to the default logger")
	}
}

func TestStageDone(t *testing.T) {
	var buf bytes.Buffer
	startStage(newLogger(&buf, log.InfoLevel), "depth").done(3)
	if buf.Len() != 0 {
		t.Errorf("stage timings should be hidden without --verbose, got %q", buf.String())
	}

	startStage(newLogger(&buf, log.DebugLevel), "depth").done(3)
	out := buf.String()
	if !strings.Contains(out, "depth") || !strings.Contains(out, "points=3") || !strings.Contains(out, "elapsed=") {
		t.Errorf("Expected stage name, point count and elapsed time, got %q", out)
	}
}

func TestApplyCommand(t *testing.T) {
	out, err := run(t, splitCSV, "apply", "--format", "json")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var rows [][]float64
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}

	vx, err := datasets.Minnie65().TransformVx()
	if err != nil {
		t.Fatal(err)
	}
	want := vx.ApplyVec(r3.Vec{X: 59769, Y: 60738, Z: 9145})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if got := (r3.Vec{X: rows[0][0], Y: rows[0][1], Z: rows[0][2]}); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestApplyCommandCSV(t *testing.T) {
	out, err := run(t, splitCSV, "apply", "--project", "y", "--as-int")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || lines[0] != "y" {
		t.Fatalf("Expected a y column with 2 rows, got %q", out)
	}
	if strings.Contains(lines[1], ".") {
		t.Errorf("Expected integer output, got %q", lines[1])
	}

	out, err = run(t, splitCSV, "apply")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !strings.HasPrefix(out, "x,y,z\n") {
		t.Errorf("Expected x,y,z header, got %q", out)
	}
}

func TestApplyInvertRoundTrip(t *testing.T) {
	forward, err := run(t, splitCSV, "apply", "--resolution", "nm")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Rename columns so the forward output resolves as a split point column
	renamed := strings.Replace(forward, "x,y,z", "p_x,p_y,p_z", 1)
	back, err := run(t, renamed, "apply", "--resolution", "nm", "--invert", "--column", "p", "--format", "json")
	if err != nil {
		t.Fatalf("invert: %v", err)
	}
	var rows [][]float64
	if err := json.Unmarshal([]byte(back), &rows); err != nil {
		t.Fatalf("decode output %q: %v", back, err)
	}
	want := []float64{59769, 60738, 9145}
	for i, w := range want {
		if d := rows[0][i] - w; d > 1e-6 || d < -1e-6 {
			t.Errorf("Component %d: expected %v, got %v", i, w, rows[0][i])
		}
	}
}

func TestRadialCommand(t *testing.T) {
	in := "pt_position\n\"[3, 10, 4]\"\n\"[0, 5, 0]\"\n"
	out, err := run(t, in, "radial", "--raw", "--anchor", "0,0,0")
	if err != nil {
		t.Fatalf("radial: %v", err)
	}
	if want := "radial_distance\n5\n0\n"; out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}

	if _, err := run(t, in, "radial", "--raw"); err == nil {
		t.Error("radial without --anchor should fail")
	}
}

func TestDepthCommand(t *testing.T) {
	in := "pt_position\n\"[0, 10, 0]\"\n\"[0, 25, 0]\"\n"
	out, err := run(t, in, "depth", "--raw", "--from", "10", "--delta", "1")
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if want := "depth\n0\n15\n"; out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestStreamlineCommand(t *testing.T) {
	out, err := run(t, "", "streamline", "--anchor", "183013,83535,21480", "--dataset", "minnie65")
	if err != nil {
		t.Fatalf("streamline: %v", err)
	}
	var rows [][]float64
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected one point per streamline sample, got %d", len(rows))
	}
}

func TestDatasetsCommand(t *testing.T) {
	out, err := run(t, "", "datasets")
	if err != nil {
		t.Fatalf("datasets: %v", err)
	}
	if out != "minnie65\nv1dd\n" {
		t.Errorf("Expected minnie65 and v1dd, got %q", out)
	}

	_, err = run(t, splitCSV, "apply", "--dataset", "h01")
	if !errors.Is(err, datasets.ErrUnknownDataset) {
		t.Errorf("Expected ErrUnknownDataset, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standardtransform.toml")
	if _, err := run(t, "", "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	cfg.DefaultDataset = "v1dd"
	if err := config.SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "--config", path, "streamline", "--anchor", "101249,32249,9145")
	if err != nil {
		t.Fatalf("streamline with config: %v", err)
	}
	if !strings.HasPrefix(out, "[[") {
		t.Errorf("Expected a JSON array, got %q", out)
	}
}
