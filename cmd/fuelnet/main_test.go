package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matijazezelj/fuelnet/pkg/models"
)

const testNetworkYAML = `
stations:
  - {key: a, name: Alpha, price: 4, area: North}
  - {key: b, name: Bravo, price: 6, area: North}
  - {key: c, name: Charlie, price: 2, area: South}
  - {key: d, name: Delta, price: 7}
  - {key: e, name: Echo, price: 1}
  - {key: f, name: Foxtrot, price: 0.5}
connections:
  - {from: a, to: b, distance: 1}
  - {from: a, to: c, distance: 2}
  - {from: b, to: d, distance: 4}
  - {from: c, to: d, distance: 1}
  - {from: d, to: e, distance: 2}
`

func writeNetwork(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.yaml")
	if err := os.WriteFile(path, []byte(testNetworkYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command against the test network and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--network", writeNetwork(t), "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"DEBUG", slog.LevelDebug, false},
		{"Error", slog.LevelError, false},
		{"invalid", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseLogLevel(%q) expected error", tt.input)
			}
		} else {
			if err != nil {
				t.Errorf("parseLogLevel(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "fuelnet") {
		t.Errorf("version output = %q, want to contain 'fuelnet'", out)
	}
}

func TestInvalidLogFormat(t *testing.T) {
	if _, err := run(t, "--log-format", "xml", "stations"); err == nil {
		t.Error("expected error for invalid log format")
	}
}

func TestShowCmd(t *testing.T) {
	out, err := run(t, "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Stations:    6", "Connections: 5", "North", "unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestStationsCmd(t *testing.T) {
	out, err := run(t, "stations", "--area", "north")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Alpha") || !strings.Contains(out, "Bravo") {
		t.Errorf("missing North stations:\n%s", out)
	}
	if strings.Contains(out, "Charlie") {
		t.Errorf("area filter not applied:\n%s", out)
	}
}

func TestNeighborsCmd(t *testing.T) {
	out, err := run(t, "neighbors", "d")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Bravo", "Charlie", "Echo"} {
		if !strings.Contains(out, want) {
			t.Errorf("neighbors output missing %s:\n%s", want, out)
		}
	}
}

func TestTraverseCmds(t *testing.T) {
	out, err := run(t, "bfs", "d")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(out, "Delta") > strings.Index(out, "Alpha") {
		t.Errorf("bfs should list the start first and Alpha last:\n%s", out)
	}

	if _, err := run(t, "dfs", "nowhere"); err == nil {
		t.Error("expected error for unknown station")
	}
}

func TestPathCmds(t *testing.T) {
	out, err := run(t, "path", "a", "e")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Alpha (a) -> Charlie (c) -> Delta (d) -> Echo (e)") || !strings.Contains(out, "Distance: 5") {
		t.Errorf("path output:\n%s", out)
	}

	out, err = run(t, "hops", "a", "e")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Bravo (b)") || !strings.Contains(out, "Distance: 7") {
		t.Errorf("hops output:\n%s", out)
	}

	if _, err := run(t, "path", "a", "f"); err == nil {
		t.Error("expected unreachable error")
	}
}

func TestCheapestCmd(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"cheapest", "a"}, "Charlie (c): 2.00"},
		{[]string{"cheapest", "a", "--max-hops", "0"}, "Alpha (a): 4.00"},
		{[]string{"cheapest", "a", "--max-hops", "3"}, "Echo (e): 1.00"},
		{[]string{"cheapest"}, "Foxtrot (f): 0.50"},
	}
	for _, tt := range tests {
		out, err := run(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%v = %q, want %q", tt.args, out, tt.want)
		}
	}

	if _, err := run(t, "cheapest", "a", "--max-hops", "-1"); err == nil {
		t.Error("expected error for negative hop budget")
	}
}

func TestNearestCmd(t *testing.T) {
	out, err := run(t, "nearest", "d")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Charlie (c) at 1") {
		t.Errorf("nearest output:\n%s", out)
	}
	if _, err := run(t, "nearest", "f"); err == nil {
		t.Error("expected error for isolated station")
	}
}

func TestDistancesCmd(t *testing.T) {
	out, err := run(t, "distances", "a")
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"a": "0", "b": "1", "c": "2", "d": "3", "e": "5", "f": "not reachable",
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header and 6 rows, got:\n%s", out)
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		key := fields[1]
		got := strings.Join(fields[3:], " ")
		if got != want[key] {
			t.Errorf("distance to %s = %q, want %q", key, got, want[key])
		}
	}

	if _, err := run(t, "distances", "zz"); err == nil {
		t.Error("expected error for unknown station")
	}
}

func TestExportCmd(t *testing.T) {
	out, err := run(t, "export", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var data models.NetworkData
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(data.Stations) != 6 || len(data.Connections) != 5 {
		t.Errorf("exported %d stations, %d connections", len(data.Stations), len(data.Connections))
	}

	if _, err := run(t, "export", "--format", "png"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCompletionCmd(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "fuelnet") {
		t.Error("bash completion should mention the binary name")
	}
}

func TestMissingNetworkFile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--network", filepath.Join(t.TempDir(), "absent.yaml"), "stations"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for missing network file")
	}
}
