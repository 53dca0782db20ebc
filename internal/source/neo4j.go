package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matijazezelj/fuelnet/internal/config"
	"github.com/matijazezelj/fuelnet/pkg/models"
)

const neo4jStationsQuery = `
	MATCH (s:Station)
	RETURN s.key AS key, s.name AS name, s.price AS price,
	       s.area AS area, s.location AS location
	ORDER BY key
`

// Each undirected road is returned once, from the smaller key.
const neo4jRoadsQuery = `
	MATCH (a:Station)-[r:ROAD]-(b:Station)
	WHERE a.key < b.key
	RETURN a.key AS from_key, b.key AS to_key, r.distance AS distance
	ORDER BY from_key, to_key
`

// Neo4jSource reads (:Station)-[:ROAD]-(:Station) from Neo4j or Memgraph
// over Bolt.
type Neo4jSource struct {
	driver     neo4j.DriverWithContext
	newSession sessionFactory
	logger     *slog.Logger
}

// NewNeo4jSource connects to the configured server and verifies it is
// reachable.
func NewNeo4jSource(cfg config.Neo4jConfig, logger *slog.Logger) (*Neo4jSource, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("neo4j connectivity check failed: %w", err)
	}

	logger.Info("neo4j source connected", "uri", cfg.URI)
	return &Neo4jSource{
		driver:     driver,
		newSession: newNeo4jSessionFactory(driver, cfg.Database),
		logger:     logger,
	}, nil
}

// Name returns "neo4j".
func (s *Neo4jSource) Name() string { return "neo4j" }

// Close closes the driver.
func (s *Neo4jSource) Close() error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(context.Background())
}

// Load reads every station and road.
func (s *Neo4jSource) Load(ctx context.Context) (*models.NetworkData, error) {
	session := s.newSession(ctx)
	defer session.Close(ctx) //nolint:errcheck // best-effort cleanup

	result, err := session.Run(ctx, neo4jStationsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	data := &models.NetworkData{}
	for result.Next(ctx) {
		rec := result.Record()
		key := getRecordString(rec, "key")
		price, err := getRecordFloat(rec, "price")
		if err != nil {
			return nil, fmt.Errorf("%w: station %q: %v", ErrInvalidDefinition, key, err)
		}
		data.Stations = append(data.Stations, models.StationDef{
			Key:      key,
			Name:     getRecordString(rec, "name"),
			Price:    price,
			Area:     getRecordString(rec, "area"),
			Location: getRecordString(rec, "location"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("reading stations: %w", err)
	}

	result, err = session.Run(ctx, neo4jRoadsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("querying roads: %w", err)
	}
	for result.Next(ctx) {
		rec := result.Record()
		from, to := getRecordString(rec, "from_key"), getRecordString(rec, "to_key")
		distance, err := getRecordFloat(rec, "distance")
		if err != nil {
			return nil, fmt.Errorf("%w: road %s-%s: %v", ErrInvalidDefinition, from, to, err)
		}
		data.Connections = append(data.Connections, models.ConnectionDef{
			From:     from,
			To:       to,
			Distance: distance,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("reading roads: %w", err)
	}

	s.logger.Debug("neo4j network loaded", "stations", len(data.Stations), "roads", len(data.Connections))
	return data, nil
}

func getRecordString(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// getRecordFloat accepts integer properties too; Cypher literals like
// {price: 70} come back as int64. A missing or non-numeric property is an
// error.
func getRecordFloat(record *neo4j.Record, key string) (float64, error) {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return 0, fmt.Errorf("%s is missing", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%s has non-numeric value %v (%T)", key, v, v)
	}
}
