package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/satelink/econledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	idempotencySettleTimeout = 2 * time.Second
)

// storedResponse is what gets persisted for a completed request.
type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware replays responses of POST requests that carry an
// Idempotency-Key.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A zero ttl
// falls back to usecase.IdempotencyKeyTTL.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		reserved, stored, err := m.store.Reserve(r.Context(), key, m.ttl)
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Str("key", key).Msg("idempotency reserve failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if !reserved {
			if stored == nil {
				writeJSONError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			}
			replay(w, stored)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}

		settled := false
		defer func() {
			// The handler panicked. Recovery answers for it, and the key must
			// stay retryable.
			if !settled {
				m.release(r, key)
			}
		}()

		next.ServeHTTP(recorder, r)
		settled = true

		// Only successes are kept so a failed request can be retried.
		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			m.release(r, key)
			return
		}

		m.complete(r, key, recorder)
	})
}

// settleContext outlives the request so a client that hung up does not
// leave its key pending until the ttl expires.
func settleContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), idempotencySettleTimeout)
}

func (m *IdempotencyMiddleware) release(r *http.Request, key string) {
	ctx, cancel := settleContext(r)
	defer cancel()

	if err := m.store.Release(ctx, key); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("idempotency release failed")
	}
}

func (m *IdempotencyMiddleware) complete(r *http.Request, key string, recorder *responseRecorder) {
	ctx, cancel := settleContext(r)
	defer cancel()

	payload, err := json.Marshal(storedResponse{Status: recorder.statusCode, Body: recorder.body.Bytes()})
	if err == nil {
		err = m.store.Complete(ctx, key, payload, m.ttl)
	}
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("idempotency complete failed")
	}
}

func replay(w http.ResponseWriter, stored []byte) {
	var resp storedResponse
	if err := json.Unmarshal(stored, &resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "corrupt idempotency record")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
