package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matijazezelj/fuelnet/internal/export"
	"github.com/matijazezelj/fuelnet/internal/graph"
	"github.com/matijazezelj/fuelnet/internal/route"
	"github.com/matijazezelj/fuelnet/internal/source"
	"github.com/matijazezelj/fuelnet/pkg/models"
)

type stationView struct {
	models.Station
	Key string `json:"key"`
}

type neighborView struct {
	ID     int     `json:"id"`
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type pathView struct {
	Stations []int    `json:"stations"`
	Keys     []string `json:"keys"`
	Weight   float64  `json:"weight"`
	Hops     int      `json:"hops"`
}

type reachView struct {
	Station  stationView `json:"station"`
	Distance float64     `json:"distance"`
	Path     pathView    `json:"path"`
}

// distanceView is one row of a distance table. Distance is null for
// stations that cannot be reached.
type distanceView struct {
	ID        int      `json:"id"`
	Key       string   `json:"key"`
	Name      string   `json:"name"`
	Distance  *float64 `json:"distance"`
	Reachable bool     `json:"reachable"`
}

type stationRequest struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	Area     string   `json:"area"`
	Location string   `json:"location"`
}

type connectionRequest struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Distance *float64 `json:"distance"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeGraphError maps graph, route and source errors to HTTP statuses.
func (s *Server) writeGraphError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, graph.ErrNotFound),
		errors.Is(err, route.ErrUnreachable),
		errors.Is(err, route.ErrNoneReachable),
		errors.Is(err, route.ErrEmptyNetwork):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, graph.ErrInvalidWeight),
		errors.Is(err, graph.ErrSelfLoop),
		errors.Is(err, graph.ErrInvalidPrice),
		errors.Is(err, route.ErrInvalidHops):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, graph.ErrCapacityExceeded),
		errors.Is(err, source.ErrInvalidDefinition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// The view helpers expect s.mu to be held.

func (s *Server) stationView(st models.Station) stationView {
	return stationView{Station: st, Key: s.network.Key(st.ID)}
}

func (s *Server) pathView(p models.Path) pathView {
	keys := make([]string, len(p.Stations))
	for i, id := range p.Stations {
		keys[i] = s.network.Key(id)
	}
	return pathView{Stations: p.Stations, Keys: keys, Weight: p.Weight, Hops: p.Hops()}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.network.Summarize())
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stations := s.network.Graph.Stations()
	out := make([]stationView, 0, len(stations))
	for _, st := range stations {
		out = append(out, s.stationView(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, err := s.network.Resolve(r.PathValue("id"))
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	st, err := s.network.Graph.Station(id)
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stationView(st))
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, err := s.network.Resolve(r.PathValue("id"))
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	ns, err := s.network.Graph.Neighbors(id)
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}

	out := make([]neighborView, 0, len(ns))
	for _, n := range ns {
		st, _ := s.network.Graph.Station(n.ID)
		out = append(out, neighborView{ID: n.ID, Key: s.network.Key(n.ID), Name: st.Name, Weight: n.Weight})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTraverse(order func(route.Graph, int) ([]int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		id, err := s.network.Resolve(r.PathValue("id"))
		if err != nil {
			s.writeGraphError(w, r, err)
			return
		}
		ids, err := order(s.network.Graph, id)
		if err != nil {
			s.writeGraphError(w, r, err)
			return
		}

		keys := make([]string, len(ids))
		for i, v := range ids {
			keys[i] = s.network.Key(v)
		}
		writeJSON(w, http.StatusOK, map[string]any{"start": id, "order": ids, "keys": keys})
	}
}

func (s *Server) handlePath(find func(route.Graph, int, int) (models.Path, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") == "" || q.Get("to") == "" {
			writeError(w, http.StatusBadRequest, "from and to are required")
			return
		}

		s.mu.RLock()
		defer s.mu.RUnlock()

		from, err := s.network.Resolve(q.Get("from"))
		if err != nil {
			s.writeGraphError(w, r, err)
			return
		}
		to, err := s.network.Resolve(q.Get("to"))
		if err != nil {
			s.writeGraphError(w, r, err)
			return
		}
		p, err := find(s.network.Graph, from, to)
		if err != nil {
			s.writeGraphError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.pathView(p))
	}
}

// handleCheapest answers the hop-bounded search when from is given and the
// network-wide minimum otherwise.
func (s *Server) handleCheapest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := q.Get("from")

	maxHops := 0
	if from != "" {
		raw := q.Get("max_hops")
		if raw == "" {
			writeError(w, http.StatusBadRequest, "max_hops is required with from")
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_hops must be an integer")
			return
		}
		maxHops = n
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		st  models.Station
		err error
	)
	if from == "" {
		st, err = route.CheapestOverall(s.network.Graph)
	} else {
		var start int
		start, err = s.network.Resolve(from)
		if err == nil {
			st, err = route.CheapestWithinHops(s.network.Graph, start, maxHops)
		}
	}
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stationView(st))
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, err := s.network.Resolve(r.PathValue("id"))
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	reach, err := route.Nearest(s.network.Graph, id)
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reachView{
		Station:  s.stationView(reach.Station),
		Distance: reach.Distance,
		Path:     s.pathView(reach.Path),
	})
}

func (s *Server) handleDistances(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, err := s.network.Resolve(r.PathValue("id"))
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	dist, err := route.Distances(s.network.Graph, id)
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}

	stations := s.network.Graph.Stations()
	out := make([]distanceView, 0, len(stations))
	for _, st := range stations {
		v := distanceView{ID: st.ID, Key: s.network.Key(st.ID), Name: st.Name}
		if d, ok := dist[st.ID]; ok {
			v.Distance = &d
			v.Reachable = true
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

var exportExt = map[string]string{
	export.FormatJSON:    "json",
	export.FormatYAML:    "yaml",
	export.FormatDOT:     "dot",
	export.FormatMermaid: "mmd",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	ext, ok := exportExt[format]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	s.mu.RLock()
	data := s.network.Data()
	s.mu.RUnlock()

	out, err := export.Render(format, data)
	if err != nil {
		s.logger.Error("export", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fuelnet-network.%s"`, ext))
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleAddStation(w http.ResponseWriter, r *http.Request) {
	var req stationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Price == nil {
		writeError(w, http.StatusBadRequest, "name and price are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.network.AddStation(req.Key, models.Station{
		Name:     req.Name,
		Price:    *req.Price,
		Area:     req.Area,
		Location: req.Location,
	})
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	observeNetwork(s.network)
	s.logger.Info("station added", "id", id, "key", s.network.Key(id), "request_id", requestIDFrom(r.Context()))

	st, _ := s.network.Graph.Station(id)
	writeJSON(w, http.StatusCreated, s.stationView(st))
}

func (s *Server) handleRemoveStation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.network.Resolve(r.PathValue("id"))
	if err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	if err := s.network.RemoveStation(id); err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	observeNetwork(s.network)
	s.logger.Info("station removed", "id", id, "request_id", requestIDFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.From == "" || req.To == "" || req.Distance == nil {
		writeError(w, http.StatusBadRequest, "from, to and distance are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, to, ok := s.resolvePair(w, r, req.From, req.To)
	if !ok {
		return
	}
	if err := s.network.Graph.AddConnection(from, to, *req.Distance); err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	observeNetwork(s.network)
	writeJSON(w, http.StatusCreated, models.Connection{From: from, To: to, Weight: *req.Distance})
}

func (s *Server) handleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" || q.Get("to") == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, to, ok := s.resolvePair(w, r, q.Get("from"), q.Get("to"))
	if !ok {
		return
	}
	if err := s.network.Graph.RemoveConnection(from, to); err != nil {
		s.writeGraphError(w, r, err)
		return
	}
	observeNetwork(s.network)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resolvePair(w http.ResponseWriter, r *http.Request, a, b string) (int, int, bool) {
	from, err := s.network.Resolve(a)
	if err != nil {
		s.writeGraphError(w, r, err)
		return 0, 0, false
	}
	to, err := s.network.Resolve(b)
	if err != nil {
		s.writeGraphError(w, r, err)
		return 0, 0, false
	}
	return from, to, true
}
