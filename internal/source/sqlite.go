package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/matijazezelj/fuelnet/pkg/models"
	_ "modernc.org/sqlite"
)

// SQLiteSchema is the catalog layout SQLiteSource reads. Stations are
// numbered in rowid order.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS stations (
    key      TEXT PRIMARY KEY,
    name     TEXT NOT NULL,
    price    REAL NOT NULL,
    area     TEXT,
    location TEXT
);

CREATE TABLE IF NOT EXISTS connections (
    from_key TEXT NOT NULL REFERENCES stations(key) ON DELETE CASCADE,
    to_key   TEXT NOT NULL REFERENCES stations(key) ON DELETE CASCADE,
    distance REAL NOT NULL,
    UNIQUE(from_key, to_key)
);
`

// SQLiteSource reads a station catalog from a SQLite database opened
// read-only.
type SQLiteSource struct {
	path string
	db   *sql.DB
}

// NewSQLiteSource creates a source for the database file at path.
func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{path: path}
}

// Name returns "sqlite".
func (s *SQLiteSource) Name() string { return "sqlite" }

// Load reads all stations and connections.
func (s *SQLiteSource) Load(ctx context.Context) (*models.NetworkData, error) {
	db := s.db
	if db == nil {
		path, err := SafeResolvePath(s.path)
		if err != nil {
			return nil, err
		}
		db, err = sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=query_only(1)")
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		defer db.Close() //nolint:errcheck // best-effort cleanup
	}

	stations, err := queryStations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reading stations: %w", err)
	}
	conns, err := queryConnections(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reading connections: %w", err)
	}
	return &models.NetworkData{Stations: stations, Connections: conns}, nil
}

func queryStations(ctx context.Context, db *sql.DB) ([]models.StationDef, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, name, price, area, location FROM stations ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	var stations []models.StationDef
	for rows.Next() {
		var st models.StationDef
		var area, location sql.NullString
		if err := rows.Scan(&st.Key, &st.Name, &st.Price, &area, &location); err != nil {
			return nil, err
		}
		st.Area = area.String
		st.Location = location.String
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

func queryConnections(ctx context.Context, db *sql.DB) ([]models.ConnectionDef, error) {
	rows, err := db.QueryContext(ctx, `SELECT from_key, to_key, distance FROM connections ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	var conns []models.ConnectionDef
	for rows.Next() {
		var c models.ConnectionDef
		if err := rows.Scan(&c.From, &c.To, &c.Distance); err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}
