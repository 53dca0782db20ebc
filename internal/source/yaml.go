package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/matijazezelj/fuelnet/pkg/models"
)

// YAMLSource reads a network definition file:
//
//	stations:
//	  - {key: bole, name: Bole Total, price: 71.5, area: Bole}
//	connections:
//	  - {from: bole, to: megenagna, distance: 4.2}
type YAMLSource struct {
	path string
}

// NewYAMLSource creates a source for the file at path.
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

// Name returns "yaml".
func (s *YAMLSource) Name() string { return "yaml" }

// Load parses the file. Unknown fields are rejected so typos surface.
func (s *YAMLSource) Load(_ context.Context) (*models.NetworkData, error) {
	path, err := SafeResolvePath(s.path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) // #nosec G304 -- path resolved by SafeResolvePath
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var data models.NetworkData
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return &data, nil
}
