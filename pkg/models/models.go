package models

// Station is a gas station in the network.
type Station struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Area     string  `json:"area,omitempty"`
	Location string  `json:"location,omitempty"`
}

// Neighbor is a single adjacency entry: the station on the other end of a
// connection and the connection's weight.
type Neighbor struct {
	ID     int     `json:"id"`
	Weight float64 `json:"weight"`
}

// Connection is an undirected road between two stations. From is always the
// smaller id when produced by the graph store.
type Connection struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

// Path is an ordered walk of station ids with its total weight.
type Path struct {
	Stations []int   `json:"stations"`
	Weight   float64 `json:"weight"`
}

// Hops returns the number of connections traversed by the path.
func (p Path) Hops() int {
	if len(p.Stations) == 0 {
		return 0
	}
	return len(p.Stations) - 1
}

// Reach is a station found by a distance query together with the path to it.
type Reach struct {
	Station  Station `json:"station"`
	Distance float64 `json:"distance"`
	Path     Path    `json:"path"`
}

// StationDef describes a station in a network definition. Key is the
// source-level identifier used by connections; it is not the graph id.
type StationDef struct {
	Key      string  `json:"key" yaml:"key"`
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	Area     string  `json:"area,omitempty" yaml:"area,omitempty"`
	Location string  `json:"location,omitempty" yaml:"location,omitempty"`
}

// ConnectionDef describes a road between two station keys.
type ConnectionDef struct {
	From     string  `json:"from" yaml:"from"`
	To       string  `json:"to" yaml:"to"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// NetworkData is a complete network definition as produced by a source.
type NetworkData struct {
	Stations    []StationDef    `json:"stations" yaml:"stations"`
	Connections []ConnectionDef `json:"connections" yaml:"connections"`
}
