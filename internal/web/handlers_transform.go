package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/ChartDash/internal/core"
	"github.com/JonMunkholm/ChartDash/internal/metrics"
)

// transformRequest is the wire form of core.TransformOptions. Directions and
// methods arrive as text and are parsed so unknown values are rejected.
type transformRequest struct {
	Sort      string `json:"sort"`
	Normalize bool   `json:"normalize"`
	Aggregate string `json:"aggregate"`
}

// handleDerived returns the sort and normalize applied sequence.
func (s *Server) handleDerived(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Derived())
}

// handleGetTransform returns the current transform options.
func (s *Server) handleGetTransform(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Options())
}

// handleSetTransform replaces the transform options and returns the new
// derived sequence.
func (s *Server) handleSetTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sort, err := core.ParseSortDirection(req.Sort)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	method, err := core.ParseAggregateMethod(req.Aggregate)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	opts := core.TransformOptions{Sort: sort, Normalize: req.Normalize, Aggregate: method}
	s.store.SetOptions(r.Context(), opts)

	writeJSON(w, map[string]any{
		"options": opts,
		"derived": s.store.Derived(),
	})
}

// handleAggregate groups the working sequence by category. The method comes
// from ?method= or, when absent, the stored aggregate option. With
// ?apply=true the result replaces the working sequence.
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	method := s.store.Options().Aggregate
	if raw := r.URL.Query().Get("method"); raw != "" {
		parsed, err := core.ParseAggregateMethod(raw)
		if err != nil {
			s.respondError(w, r, err, http.StatusUnprocessableEntity)
			return
		}
		method = parsed
	}
	apply, _ := strconv.ParseBool(r.URL.Query().Get("apply"))

	records := s.store.Aggregate(r.Context(), method, apply)
	writeJSON(w, map[string]any{
		"method":  method,
		"applied": apply,
		"records": records,
	})
}

// remapRequest carries arbitrary objects and the fields to read from them.
type remapRequest struct {
	core.Mapping
	Items []map[string]any `json:"items"`
}

// handleRemap builds records from arbitrary objects. With ?apply=true the
// result replaces the working sequence.
func (s *Server) handleRemap(w http.ResponseWriter, r *http.Request) {
	var req remapRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.CategoryField == "" || req.ValueField == "" {
		s.respondError(w, r, core.ValidationErrors{
			{Field: "categoryField", Message: "categoryField and valueField are required"},
		}, http.StatusUnprocessableEntity)
		return
	}

	timer := metrics.TransformTimer("remap")
	records := core.Remap(req.Items, req.Mapping)
	timer.ObserveDuration()

	apply, _ := strconv.ParseBool(r.URL.Query().Get("apply"))
	if apply {
		s.store.Replace(r.Context(), records)
	}

	writeJSON(w, map[string]any{
		"applied": apply,
		"records": records,
	})
}
