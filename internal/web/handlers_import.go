package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ChartDash/internal/core"
	"github.com/JonMunkholm/ChartDash/internal/importer"
	"github.com/JonMunkholm/ChartDash/internal/logging"
	"github.com/JonMunkholm/ChartDash/internal/metrics"
)

// multipartMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const multipartMemory = 1 << 20

// importResponse is returned by a successful import.
type importResponse struct {
	ImportID string          `json:"import_id"`
	Format   importer.Format `json:"format"`
	Imported int             `json:"imported"`
	Bytes    int64           `json:"bytes"`
}

// handleImport replaces the working sequence with an uploaded CSV or XLSX
// file. It accepts a multipart "file" field or a raw text/csv body. A format
// error answers 400 and a sequence that fails validation answers 422; the
// prior data is kept in both cases.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	importID := uuid.New().String()
	ctx := core.ContextWithImportID(r.Context(), importID)
	ctx = core.ContextWithSource(ctx, core.SourceImport)
	r = r.WithContext(ctx)
	logger := logging.FromContext(ctx)

	if err := s.imports.Acquire(ctx); err != nil {
		metrics.ObserveImport("", metrics.OutcomeBusy, 0, time.Since(start))
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer s.imports.Release()
	metrics.ImportStarted()
	defer metrics.ImportFinished()

	maxSize := s.cfg.Import.MaxFileSize
	if maxSize > 0 {
		// Multipart framing needs some headroom over the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartMemory)
	}

	body, filename, contentType, err := importSource(r)
	if err != nil {
		metrics.ObserveImport("", metrics.OutcomeError, 0, time.Since(start))
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer body.Close()

	format, err := importer.DetectFormat(filename, contentType)
	if err != nil {
		metrics.ObserveImport("", metrics.OutcomeError, 0, time.Since(start))
		s.respondError(w, r, err, statusFor(err))
		return
	}

	strict := s.cfg.Import.Strict
	if raw := r.FormValue("strict"); raw != "" {
		strict, _ = strconv.ParseBool(raw)
	}

	logger.Info("import started", "format", format, "filename", filename, "strict", strict)

	res, err := importer.Decode(body, format, importer.Options{
		ParseOptions: core.ParseOptions{Strict: strict},
		MaxBytes:     maxSize,
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if core.IsFormatError(err) {
			outcome = metrics.OutcomeFormatError
		}
		metrics.ObserveImport(string(format), outcome, res.Bytes, time.Since(start))
		s.respondError(w, r, err, statusFor(err))
		return
	}

	records, err := importer.Records(res)
	if err != nil {
		metrics.ObserveImport(string(format), metrics.OutcomeInvalid, res.Bytes, time.Since(start))
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	s.store.Replace(ctx, records)
	metrics.ObserveImport(string(format), metrics.OutcomeOK, res.Bytes, time.Since(start))

	logger.Info("import completed",
		"format", format,
		"records", len(records),
		"bytes", res.Bytes,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if isHTMX(r) {
		s.respondRecords(w, r, s.store.Records())
		return
	}
	writeJSON(w, importResponse{
		ImportID: importID,
		Format:   format,
		Imported: len(records),
		Bytes:    res.Bytes,
	})
}

// importSource returns the uploaded file, its name and content type. A
// multipart request must carry a "file" field; any other request body is the
// file itself.
func importSource(r *http.Request) (io.ReadCloser, string, string, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, "", "", importer.ErrFileTooLarge
			}
			return nil, "", "", importer.ErrNoFile
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", "", importer.ErrNoFile
		}
		return file, header.Filename, header.Header.Get("Content-Type"), nil
	}

	if r.Body == nil || r.ContentLength == 0 {
		return nil, "", "", importer.ErrNoFile
	}
	return r.Body, r.URL.Query().Get("filename"), contentType, nil
}
