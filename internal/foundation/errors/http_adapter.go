package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter writes classified errors as JSON responses for the
// preview server.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// HTTPErrorResponse is the JSON error payload.
type HTTPErrorResponse struct {
	Error    string         `json:"error"`
	Code     string         `json:"code,omitempty"`
	Severity string         `json:"severity,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// StatusCodeFor maps an error to an HTTP status. Unknown errors map to 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch GetCategory(err) {
	case CategoryValidation, CategoryConfig:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryNotify, CategoryNetwork:
		return http.StatusBadGateway
	case CategoryContent, CategoryArchive, CategoryTemplate, CategoryOutput:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	if err == nil {
		return HTTPErrorResponse{}
	}
	c, ok := AsClassified(err)
	if !ok {
		return HTTPErrorResponse{Error: err.Error()}
	}
	resp := HTTPErrorResponse{Error: c.Message(), Code: string(c.Category()), Severity: string(c.Severity())}
	if len(c.Context()) > 0 {
		resp.Details = make(map[string]any, len(c.Context()))
		for k, v := range c.Context() {
			resp.Details[k] = v
		}
	}
	if cause := c.Cause(); cause != nil {
		if resp.Details == nil {
			resp.Details = map[string]any{}
		}
		resp.Details["cause"] = cause.Error()
	}
	return resp
}

// WriteErrorResponse writes err as JSON with the mapped status code.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	status := a.StatusCodeFor(err)
	body, jerr := json.Marshal(a.FormatErrorResponse(err))
	if jerr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	level := slog.LevelError
	if HasSeverity(err, SeverityWarning) {
		level = slog.LevelWarn
	}
	a.logger.Log(r.Context(), level, "request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
}
