// Package http provides the JSON API server and its handlers.
//
// This file holds the helpers that read path parameters, query filters and
// JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"donatrack/internal/core"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// kindParam parses the {kind} path parameter.
func kindParam(r *http.Request) (core.Kind, error) {
	return core.ParseKind(chi.URLParam(r, "kind"))
}

// ParseFilter reads the q and status query parameters.
func ParseFilter(r *http.Request) core.Filter {
	q := r.URL.Query()
	return core.Filter{
		Query:  sanitizeInput(q.Get("q")),
		Status: strings.ToLower(strings.TrimSpace(q.Get("status"))),
	}
}

// DecodeJSON reads a single JSON value from the body into dst. Unknown
// fields are rejected. An empty body is allowed when optional is set.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return nil
		}
		var verr core.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: body must contain a single JSON value", errBadRequest)
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// sanitizeValues applies sanitizeInput to every form value.
func sanitizeValues(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = sanitizeInput(v)
	}
	return out
}

func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
