package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ChartDash/internal/core"
	"github.com/JonMunkholm/ChartDash/internal/web/templates"
)

// exportFilename is the download name of the exported dataset.
const exportFilename = "chart_data.csv"

// handleDashboard renders the dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := templates.DashboardData{
		Records: s.store.Records(),
		Derived: s.store.Derived(),
		Options: s.store.Options(),
		Chart:   s.store.ChartConfig(),
		Samples: core.Samples(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

// handleHealth reports liveness and import capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"records": s.store.Len(),
		"imports": s.imports.Status(),
	})
}

// handleExport downloads the working sequence as CSV. An empty dataset
// answers 404 with a warning instead of an empty file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	csvText := s.store.ExportCSV()
	if csvText == "" {
		if isHTMX(r) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			templates.WarningAlert(core.MapError(core.ErrEmptyDataset).Message).Render(r.Context(), w)
			return
		}
		s.respondError(w, r, core.ErrEmptyDataset, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.Write([]byte(csvText))
}

// sampleSummary lists a sample without its records.
type sampleSummary struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Size  int    `json:"size"`
}

// handleListSamples returns the registered sample datasets.
func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	samples := core.Samples()
	out := make([]sampleSummary, len(samples))
	for i, sample := range samples {
		out[i] = sampleSummary{Key: sample.Key, Label: sample.Label, Size: len(sample.Records)}
	}
	writeJSON(w, out)
}

// handleLoadSample replaces the working sequence with sample {key}.
func (s *Server) handleLoadSample(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sample, ok := core.Sample(key)
	if !ok {
		s.respondError(w, r, errSampleMiss, http.StatusNotFound)
		return
	}

	s.store.Replace(core.ContextWithSource(r.Context(), core.SourceSample), sample.Records)
	s.respondRecords(w, r, s.store.Records())
}

// handleGetChartConfig returns the chart configuration.
func (s *Server) handleGetChartConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.ChartConfig())
}

// handleSetChartConfig replaces the chart configuration. Fields missing from
// the body keep their current values.
func (s *Server) handleSetChartConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.ChartConfig()
	if err := decodeJSON(r, &cfg); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.XAxis = strings.TrimSpace(cfg.XAxis)
	cfg.YAxis = strings.TrimSpace(cfg.YAxis)

	if err := s.store.SetChartConfig(r.Context(), cfg); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, s.store.ChartConfig())
}

// handleChart returns the chart-ready payload of the derived sequence.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.store.Chart()
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, chart)
}
