package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"kart-checkout/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader is the optional client-supplied request key.
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyStore persists replayable responses.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	IdempotencyKey(scope, id string) string
}

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
	InProgress  bool              `json:"in_progress,omitempty"`
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key. Requests without the header pass through, as do all
// requests when store is nil.
//
// The key is claimed with an in-progress record before the handler runs, so a
// concurrent duplicate gets 409 instead of running the handler twice. Server
// errors release the claim so the client can retry them.
func Idempotency(store IdempotencyStore, ttl time.Duration, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if store == nil || idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "failed to read request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			stored, err := lookupRecord(r.Context(), store, key)
			if err != nil {
				logger.Error().Err(err).Str("key", key).Msg("failed to check idempotency record")
				writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeInternalError, "idempotency store unavailable")
				return
			}
			if stored != "" {
				respondStored(w, r, stored, requestHash, key, logger)
				return
			}

			placeholder, err := json.Marshal(idempotencyRecord{RequestHash: requestHash, InProgress: true})
			if err != nil {
				logger.Error().Err(err).Msg("failed to marshal idempotency record")
				writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
				return
			}
			claimed, err := store.SetNX(r.Context(), key, string(placeholder), ttl)
			if err != nil {
				logger.Error().Err(err).Str("key", key).Msg("failed to claim idempotency key")
				writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeInternalError, "idempotency store unavailable")
				return
			}
			if !claimed {
				// Another request got there between our Get and SetNX.
				stored, err = lookupRecord(r.Context(), store, key)
				if err != nil || stored == "" {
					writeInProgress(w, r)
					return
				}
				respondStored(w, r, stored, requestHash, key, logger)
				return
			}

			// Writes after the handler must survive a disconnected client.
			storeCtx := context.WithoutCancel(r.Context())
			finalized := false
			defer func() {
				if finalized {
					return
				}
				if err := store.Del(storeCtx, key); err != nil {
					logger.Error().Err(err).Str("key", key).Msg("failed to release idempotency key")
				}
			}()

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError {
				return
			}

			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}

			payload, err := json.Marshal(record)
			if err != nil {
				logger.Error().Err(err).Msg("failed to marshal idempotency record")
				return
			}

			if err := store.Set(storeCtx, key, string(payload), ttl); err != nil {
				logger.Error().Err(err).Str("key", key).Msg("failed to persist idempotency record")
				return
			}
			finalized = true
		})
	}
}

// lookupRecord returns the stored payload, or "" when the key is absent.
func lookupRecord(ctx context.Context, store IdempotencyStore, key string) (string, error) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return stored, err
}

func respondStored(w http.ResponseWriter, r *http.Request, stored, requestHash, key string, logger zerolog.Logger) {
	record, err := decodeRecord(stored)
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("failed to decode idempotency record")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
		return
	}
	if record.RequestHash != requestHash {
		writeError(w, r, http.StatusConflict, model.ErrCodeIdempotencyReused, "idempotency key reused with different request body")
		return
	}
	if record.InProgress {
		writeInProgress(w, r)
		return
	}
	logger.Debug().Str("key", key).Int("status", record.Status).Msg("replaying stored response")
	writeStoredResponse(w, record)
}

func writeInProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	writeError(w, r, http.StatusConflict, model.ErrCodeRequestInProgress, "a request with this idempotency key is still in progress")
}

func buildScope(r *http.Request) string {
	shopper := ""
	if id, ok := ShopperIDFromContext(r.Context()); ok {
		shopper = id.String()
	}
	return strings.Join([]string{shopper, r.Method, routePattern(r)}, "|")
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
