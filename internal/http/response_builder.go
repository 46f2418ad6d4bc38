// Package http provides the JSON API server and its handlers.
//
// This file builds JSON responses and maps domain errors to status codes
// in one place.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"donatrack/internal/core"
	"donatrack/internal/form"
)

// errBadRequest marks malformed requests: unreadable bodies, bad JSON.
var errBadRequest = errors.New("bad request")

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(payload any) *JSONResponseBuilder {
	b.payload = payload
	return b
}

// Bytes encodes the payload the way Write would send it.
func (b *JSONResponseBuilder) Bytes() ([]byte, error) {
	if b.payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(b.payload)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	body, err := b.Bytes()
	if err != nil {
		slog.Error("Failed to encode response", "error", err, "status", b.statusCode)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}

	if body != nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(b.statusCode)
	if body != nil {
		_, _ = w.Write(body)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	NewJSONResponse().Status(status).Body(payload).Write(w)
}

// ErrorResponse maps err to a status code and an ErrorBody. Server errors
// never leak their message.
func ErrorResponse(err error) *JSONResponseBuilder {
	status := statusFor(err)
	body := ErrorBody{Error: err.Error()}

	var verr core.ValidationError
	if errors.As(err, &verr) {
		body.Error = core.ErrValidation.Error()
		body.Fields = verr.Fields()
	}
	if status >= http.StatusInternalServerError {
		body.Error = http.StatusText(status)
	}
	return NewJSONResponse().Status(status).Body(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, form.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, form.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, form.ErrUnknownField),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// requestError is ErrorResponse that also logs server-side failures.
func requestError(r *http.Request, err error) *JSONResponseBuilder {
	resp := ErrorResponse(err)
	if resp.statusCode >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	return resp
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestError(r, err).Write(w)
}
