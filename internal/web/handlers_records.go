package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ChartDash/internal/core"
	"github.com/JonMunkholm/ChartDash/internal/web/templates"
)

// handleListRecords returns the working sequence.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	s.respondRecords(w, r, s.store.Records())
}

// handleReplaceRecords swaps the working sequence for the JSON array in the
// body. The array must form a valid sequence; the store is unchanged otherwise.
func (s *Server) handleReplaceRecords(w http.ResponseWriter, r *http.Request) {
	var rows []core.Row
	if err := decodeJSON(r, &rows); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	records, err := core.Records(rows)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	s.store.Replace(r.Context(), records)
	s.respondRecords(w, r, s.store.Records())
}

// handleAppendRecords adds data points. Form posts add a single validated
// point; JSON bodies may carry one object or an array. An array is appended
// only if every element has a non-blank category and a finite value.
func (s *Server) handleAppendRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		rec, errs := core.ValidateDataPoint(r.FormValue("category"), r.FormValue("value"))
		if len(errs) > 0 {
			s.respondError(w, r, errs, http.StatusUnprocessableEntity)
			return
		}
		if err := s.store.Append(core.ContextWithSource(ctx, core.SourceForm), rec); err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		s.respondRecords(w, r, s.store.Records())
		return
	}

	var body json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	var records []core.DataRecord
	if trimmed := strings.TrimSpace(string(body)); strings.HasPrefix(trimmed, "[") {
		var rows []core.Row
		if err := json.Unmarshal(body, &rows); err != nil {
			s.respondError(w, r, errInvalidBody, http.StatusBadRequest)
			return
		}
		recs, err := core.Records(rows)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		records = recs
	} else {
		var point struct {
			Category any `json:"category"`
			Value    any `json:"value"`
		}
		if err := json.Unmarshal(body, &point); err != nil {
			s.respondError(w, r, errInvalidBody, http.StatusBadRequest)
			return
		}
		rec, errs := core.ValidateDataPoint(jsonText(point.Category), jsonText(point.Value))
		if len(errs) > 0 {
			s.respondError(w, r, errs, http.StatusUnprocessableEntity)
			return
		}
		records = []core.DataRecord{rec}
	}

	if err := s.store.Append(ctx, records...); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.respondRecords(w, r, s.store.Records())
}

// handleUpdateRecord applies a partial edit to the record at {index}.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	var patch core.RecordPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if patch.Category != nil {
		trimmed := strings.TrimSpace(*patch.Category)
		if trimmed == "" {
			s.respondError(w, r, core.ValidationErrors{{Field: core.FieldCategory, Message: "category is required"}}, http.StatusUnprocessableEntity)
			return
		}
		patch.Category = &trimmed
	}

	if err := s.store.Update(r.Context(), index, patch); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.respondRecords(w, r, s.store.Records())
}

// handleRemoveRecord deletes the record at {index}.
func (s *Server) handleRemoveRecord(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.store.Remove(r.Context(), index); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.respondRecords(w, r, s.store.Records())
}

// handleClearRecords empties the working sequence.
func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	s.store.Clear(r.Context())
	s.respondRecords(w, r, s.store.Records())
}

// respondRecords writes records as a JSON array, or as the record table
// fragment for HTMX requests.
func (s *Server) respondRecords(w http.ResponseWriter, r *http.Request, records []core.DataRecord) {
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("HX-Trigger", "records-changed")
		templates.RecordTable(records).Render(r.Context(), w)
		return
	}
	writeJSON(w, records)
}

func indexParam(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, errInvalidIndex
	}
	return index, nil
}

// jsonText renders a decoded JSON scalar the way a form field would carry it.
func jsonText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return core.FormatNumber(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
