package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYAMLSource_Load(t *testing.T) {
	path := writeFile(t, "network.yaml", `
stations:
  - key: bole
    name: Bole Total
    price: 71.5
    area: Bole
  - {key: piassa, name: Piassa Shell, price: 69.9, location: Churchill Ave}
connections:
  - {from: bole, to: piassa, distance: 7.25}
`)

	data, err := NewYAMLSource(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Stations) != 2 {
		t.Fatalf("stations = %d, want 2", len(data.Stations))
	}
	if data.Stations[0].Area != "Bole" || data.Stations[1].Location != "Churchill Ave" {
		t.Errorf("optional fields not parsed: %+v", data.Stations)
	}
	if len(data.Connections) != 1 || data.Connections[0].Distance != 7.25 {
		t.Errorf("connections = %+v", data.Connections)
	}
}

func TestYAMLSource_UnknownField(t *testing.T) {
	path := writeFile(t, "network.yaml", "stations:\n  - {key: a, name: A, prize: 3}\n")
	if _, err := NewYAMLSource(path).Load(context.Background()); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestYAMLSource_Empty(t *testing.T) {
	path := writeFile(t, "network.yaml", "")
	data, err := NewYAMLSource(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Stations) != 0 {
		t.Errorf("stations = %d, want 0", len(data.Stations))
	}
}

func TestYAMLSource_MissingFile(t *testing.T) {
	if _, err := NewYAMLSource("/nonexistent/network.yaml").Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
