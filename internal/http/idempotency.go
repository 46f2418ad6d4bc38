package http

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"

	"donatrack/internal/core"
)

const (
	// IdempotencyKeyHeader names the header that makes a create replayable.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader is set on responses served from a stored result.
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeys   = 4096
	maxIdempotencyKeyLen = 255
)

// idempotentEntry holds the outcome of the first request with a key.
// done is closed once status and body are set.
type idempotentEntry struct {
	fingerprint [sha256.Size]byte
	done        chan struct{}
	status      int
	body        []byte
}

// withIdempotency runs exec once per (kind, key). Concurrent and later
// requests with the same key and body get the stored response; a different
// body under a used key is rejected. Failed attempts are forgotten so the
// client can retry with the same key.
func (s *Server) withIdempotency(w http.ResponseWriter, r *http.Request, kind core.Kind, exec func() *JSONResponseBuilder) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" {
		exec().Write(w)
		return
	}
	if len(key) > maxIdempotencyKeyLen {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "idempotency key too long"})
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	fingerprint := sha256.Sum256(raw)

	cacheKey := kind.String() + ":" + key
	entry, fresh := s.idempotency.SetIfAbsent(cacheKey, &idempotentEntry{
		fingerprint: fingerprint,
		done:        make(chan struct{}),
	})
	if !fresh {
		if entry.fingerprint != fingerprint {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorBody{Error: "idempotency key reused with a different request body"})
			return
		}
		select {
		case <-entry.done:
		case <-r.Context().Done():
			writeError(w, r, r.Context().Err())
			return
		}
		w.Header().Set(IdempotentReplayHeader, "true")
		writeRaw(w, entry.status, entry.body)
		return
	}

	resp := exec()
	body, err := resp.Bytes()
	if err != nil {
		resp = ErrorResponse(err)
		body, _ = resp.Bytes()
	}
	entry.status, entry.body = resp.statusCode, body
	close(entry.done)

	if resp.statusCode >= http.StatusBadRequest {
		s.idempotency.Delete(cacheKey)
	}
	writeRaw(w, entry.status, entry.body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	if body != nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
