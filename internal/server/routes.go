package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matijazezelj/fuelnet/internal/route"
)

// RegisterRoutes registers all API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/stations", s.handleStations)
	mux.HandleFunc("GET /api/v1/stations/{id}", s.handleStation)
	mux.HandleFunc("GET /api/v1/stations/{id}/neighbors", s.handleNeighbors)
	mux.HandleFunc("GET /api/v1/traverse/bfs/{id}", s.handleTraverse(route.BFSOrder))
	mux.HandleFunc("GET /api/v1/traverse/dfs/{id}", s.handleTraverse(route.DFSOrder))
	mux.HandleFunc("GET /api/v1/path", s.handlePath(route.ShortestPath))
	mux.HandleFunc("GET /api/v1/hop-path", s.handlePath(route.HopPath))
	mux.HandleFunc("GET /api/v1/cheapest", s.handleCheapest)
	mux.HandleFunc("GET /api/v1/nearest/{id}", s.handleNearest)
	mux.HandleFunc("GET /api/v1/distances/{id}", s.handleDistances)
	mux.HandleFunc("GET /api/v1/export/{format}", s.handleExport)

	if !s.readOnly {
		mux.HandleFunc("POST /api/v1/stations", s.handleAddStation)
		mux.HandleFunc("DELETE /api/v1/stations/{id}", s.handleRemoveStation)
		mux.HandleFunc("POST /api/v1/connections", s.handleAddConnection)
		mux.HandleFunc("DELETE /api/v1/connections", s.handleRemoveConnection)
	}
}
