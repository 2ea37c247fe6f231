package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/infrastructure/logger"
	"github.com/ventdepot/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotency-Replayed"
	maxIdempotencyKeyLength   = 255
)

// storedResponse is what the store keeps for a completed key
type storedResponse struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body so it can be stored after the handler ran
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first response of a request carrying an Idempotency-Key header.
// Keys are scoped to the authenticated actor and route, so it must run after the JWT middleware.
// A request whose key is still in flight gets 409, and reusing a completed key with a different
// body gets 422. Responses with status >= 500 and handler panics are not stored and the key is
// released, so the client may retry.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge, "Request body could not be read", GetRequestID(c)))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(payload))
		fingerprint := fingerprintOf(payload)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		scoped := GetJWTUserID(c) + ":" + c.FullPath() + ":" + key

		if replay(c, store, scoped, fingerprint, log) {
			return
		}

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Error("Idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnavailable, "Idempotency store unavailable", GetRequestID(c)))
			return
		}
		if !reserved {
			// The first request may have completed between Lookup and Reserve
			if replay(c, store, scoped, fingerprint, log) {
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyInProgress, "A request with this Idempotency-Key is already in progress",
				GetRequestID(c)))
			return
		}

		defer func() {
			if r := recover(); r != nil {
				if err := store.Release(context.WithoutCancel(ctx), scoped); err != nil {
					log.Warn("Failed to release idempotency key", zap.Error(err))
				}
				panic(r)
			}
		}()

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
			return
		}

		stored, err := json.Marshal(storedResponse{
			Fingerprint: fingerprint,
			Status:      status,
			Body:        recorder.body.Bytes(),
		})
		if err == nil {
			err = store.Complete(ctx, scoped, stored, ttl)
		}
		if err != nil {
			log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

// replay answers from the stored response for key and reports whether the request was handled
func replay(c *gin.Context, store shared.IdempotencyStore, key, fingerprint string, log *zap.Logger) bool {
	raw, found, err := store.Lookup(c.Request.Context(), key)
	if err != nil {
		log.Warn("Idempotency lookup failed", zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	var stored storedResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.Warn("Discarding unreadable idempotent response", zap.Error(err))
		return false
	}

	if stored.Fingerprint != fingerprint {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeIdempotencyMismatch, "Idempotency-Key was already used with a different request body",
			GetRequestID(c)))
		return true
	}

	c.Header(IdempotencyReplayedHeader, "true")
	c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
	c.Abort()
	return true
}

// fingerprintOf hashes the request body a key was first used with
func fingerprintOf(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
