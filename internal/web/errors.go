package web

// errors.go provides unified error responses for the web layer.
//
// Every handler error goes through respondError, which:
//  1. Maps the error to a user message with core.MapError
//  2. Logs the technical error with the request id for correlation
//  3. Renders the user message as an HTMX fragment, JSON or plain text
//
// Validation failures also carry the per-field errors when there are any.

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/ChartDash/internal/core"
	"github.com/JonMunkholm/ChartDash/internal/importer"
	"github.com/JonMunkholm/ChartDash/internal/logging"
	"github.com/JonMunkholm/ChartDash/internal/web/templates"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errInvalidIndex = errors.New("invalid data point index")
	errInvalidBody  = errors.New("invalid data point: request body is not valid JSON")
	errSampleMiss   = errors.New("sample not found")
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error     string                `json:"error"`
	Message   string                `json:"message"`
	Action    string                `json:"action,omitempty"`
	Code      string                `json:"code"`
	Fields    core.ValidationErrors `json:"fields,omitempty"`
	RequestID string                `json:"request_id,omitempty"`
}

// respondError logs err and writes the mapped user message with statusCode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(r.Context(), w, userMsg, statusCode)
	case wantsJSON(r):
		resp := errorResponse(userMsg)
		resp.RequestID = middleware.GetReqID(r.Context())
		var fields core.ValidationErrors
		if errors.As(err, &fields) {
			resp.Fields = fields
		}
		writeJSONStatus(w, statusCode, resp)
	default:
		respondErrorHTML(w, userMsg, statusCode)
	}
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var fields core.ValidationErrors
	switch {
	case errors.Is(err, importer.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, importer.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case core.IsFormatError(err),
		errors.Is(err, importer.ErrNoFile),
		errors.Is(err, importer.ErrEmptyFile),
		errors.Is(err, errInvalidIndex),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrIndexOutOfRange),
		errors.Is(err, errSampleMiss),
		errors.Is(err, core.ErrEmptyDataset):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidSequence),
		errors.Is(err, core.ErrInvalidRecord),
		errors.Is(err, core.ErrInvalidChartConfig),
		errors.As(err, &fields),
		strings.Contains(err.Error(), "invalid sort direction"),
		strings.Contains(err.Error(), "invalid aggregate method"):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// respondErrorJSON writes msg as a JSON error without logging.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSONStatus(w, statusCode, errorResponse(msg))
}

// respondErrorHTML writes a plain text error response.
func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX error fragment.
func renderErrorPartial(ctx context.Context, w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.Header().Set("HX-Retarget", "#alerts")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(ctx, w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// decodeJSON decodes the request body into v, rejecting trailing data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	if dec.More() {
		return errInvalidBody
	}
	return nil
}

// clientIP strips the port from a RemoteAddr.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
