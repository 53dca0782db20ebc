package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/matijazezelj/fuelnet/internal/config"
	"github.com/matijazezelj/fuelnet/internal/graph"
	"github.com/matijazezelj/fuelnet/pkg/models"
)

// ErrInvalidDefinition indicates a network definition that cannot be built,
// such as duplicate keys or connections to unknown stations.
var ErrInvalidDefinition = errors.New("source: invalid network definition")

// Source loads a network definition from somewhere outside the process.
// Sources are read-only: nothing is ever written back.
type Source interface {
	// Name returns the source identifier (e.g., "yaml", "sqlite").
	Name() string

	// Load reads the full network definition.
	Load(ctx context.Context) (*models.NetworkData, error)
}

// SafeResolvePath resolves a user-provided path to an absolute path with
// symlinks and ".." components evaluated against the real filesystem.
func SafeResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("evaluating symlinks: %w", err)
	}
	return resolved, nil
}

// Open returns the Source selected by cfg. path, when non-empty, overrides
// cfg.Path.
func Open(cfg config.NetworkConfig, path string, logger *slog.Logger) (Source, error) {
	if path == "" {
		path = cfg.Path
	}

	switch cfg.Source {
	case config.SourceYAML, "":
		return NewYAMLSource(path), nil
	case config.SourceSQLite:
		return NewSQLiteSource(path), nil
	case config.SourceNeo4j:
		src, err := NewNeo4jSource(cfg.Neo4j, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown network source %q", cfg.Source)
	}
}

// Network is a built graph together with the source keys of its stations.
type Network struct {
	Graph  *graph.Graph
	Source string

	ids  map[string]int
	keys map[int]string
}

// Build validates a definition and constructs its graph. Stations get ids
// in definition order. capacity limits the graph when positive.
func Build(data *models.NetworkData, capacity int) (*Network, error) {
	n := &Network{
		Graph: graph.New(graph.WithCapacity(capacity)),
		ids:   make(map[string]int, len(data.Stations)),
		keys:  make(map[int]string, len(data.Stations)),
	}

	for i, def := range data.Stations {
		if def.Key == "" {
			return nil, fmt.Errorf("%w: station %d has no key", ErrInvalidDefinition, i)
		}
		if _, err := n.AddStation(def.Key, models.Station{
			Name:     def.Name,
			Price:    def.Price,
			Area:     def.Area,
			Location: def.Location,
		}); err != nil {
			return nil, fmt.Errorf("station %q: %w", def.Key, err)
		}
	}

	for _, c := range data.Connections {
		from, ok := n.ids[c.From]
		if !ok {
			return nil, fmt.Errorf("%w: connection %s-%s: unknown station %q", ErrInvalidDefinition, c.From, c.To, c.From)
		}
		to, ok := n.ids[c.To]
		if !ok {
			return nil, fmt.Errorf("%w: connection %s-%s: unknown station %q", ErrInvalidDefinition, c.From, c.To, c.To)
		}
		if err := n.Graph.AddConnection(from, to, c.Distance); err != nil {
			return nil, fmt.Errorf("connection %s-%s: %w", c.From, c.To, err)
		}
	}

	return n, nil
}

// Load reads a definition from src and builds it.
func Load(ctx context.Context, src Source, capacity int) (*Network, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s network: %w", src.Name(), err)
	}
	n, err := Build(data, capacity)
	if err != nil {
		return nil, err
	}
	n.Source = src.Name()
	return n, nil
}

// AddStation inserts a station under key. An empty key falls back to the
// assigned id in decimal, or the first free "station-<id>" variant.
func (n *Network) AddStation(key string, s models.Station) (int, error) {
	if key != "" {
		if _, dup := n.ids[key]; dup {
			return 0, fmt.Errorf("%w: duplicate station key %q", ErrInvalidDefinition, key)
		}
	}
	id, err := n.Graph.AddStationWith(s)
	if err != nil {
		return 0, err
	}
	if key == "" {
		key = n.freeKey(id)
	}
	n.ids[key] = id
	n.keys[id] = key
	return id, nil
}

func (n *Network) freeKey(id int) string {
	key := strconv.Itoa(id)
	for i := 1; ; i++ {
		if _, taken := n.ids[key]; !taken {
			return key
		}
		if i == 1 {
			key = fmt.Sprintf("station-%d", id)
		} else {
			key = fmt.Sprintf("station-%d-%d", id, i)
		}
	}
}

// RemoveStation removes a station and forgets its key.
func (n *Network) RemoveStation(id int) error {
	if err := n.Graph.RemoveStation(id); err != nil {
		return err
	}
	delete(n.ids, n.keys[id])
	delete(n.keys, id)
	return nil
}

// Resolve maps a station reference to an id. A reference is a source key,
// or a decimal id when no key matches.
func (n *Network) Resolve(ref string) (int, error) {
	if id, ok := n.ids[ref]; ok {
		return id, nil
	}
	id, err := strconv.Atoi(ref)
	if err != nil || !n.Graph.Has(id) {
		return 0, fmt.Errorf("%w: %q", graph.ErrNotFound, ref)
	}
	return id, nil
}

// Key returns the source key of a station.
func (n *Network) Key(id int) string {
	if k, ok := n.keys[id]; ok {
		return k
	}
	return strconv.Itoa(id)
}

// Data converts the current graph back into a definition, keyed by source
// keys. Building the result reproduces the same stations and connections.
func (n *Network) Data() *models.NetworkData {
	data := &models.NetworkData{
		Stations:    []models.StationDef{},
		Connections: []models.ConnectionDef{},
	}
	for _, s := range n.Graph.Stations() {
		data.Stations = append(data.Stations, models.StationDef{
			Key:      n.Key(s.ID),
			Name:     s.Name,
			Price:    s.Price,
			Area:     s.Area,
			Location: s.Location,
		})
	}
	for _, c := range n.Graph.Connections() {
		data.Connections = append(data.Connections, models.ConnectionDef{
			From:     n.Key(c.From),
			To:       n.Key(c.To),
			Distance: c.Weight,
		})
	}
	return data
}
