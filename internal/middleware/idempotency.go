package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	idempotentReplayHeader = "Idempotent-Replayed"

	idempotencyTTL = 24 * time.Hour
	// inFlightTTL bounds how long a crashed request can hold its key.
	inFlightTTL = 30 * time.Second

	inFlightMarker = "in-flight"
)

// storedResponse is the replayable part of a completed request.
type storedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body so it can be stored.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// idempotencyStore keeps one record per key: an in-flight marker while the
// first request runs, then the stored response.
type idempotencyStore struct {
	client redis.Cmdable
}

var errInFlight = errors.New("request with this idempotency key is in progress")

// claim returns the stored response for key, errInFlight while another
// request holds it, or (nil, nil) when the caller now owns the key.
func (s idempotencyStore) claim(ctx context.Context, key string) (*storedResponse, error) {
	ok, err := s.client.SetNX(ctx, key, inFlightMarker, inFlightTTL).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; treat as still contended.
		return nil, errInFlight
	}
	if err != nil {
		return nil, err
	}
	if string(data) == inFlightMarker {
		return nil, errInFlight
	}

	var resp storedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s idempotencyStore) complete(ctx context.Context, key string, resp storedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, idempotencyTTL).Err()
}

func (s idempotencyStore) release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// IdempotencyMiddleware makes POST, PUT and PATCH requests carrying an
// Idempotency-Key safe to retry: the first response is stored and replayed,
// and a retry that races the first request gets 409 instead of running twice.
// Keys are scoped to method and path. Redis errors fall through to normal
// processing.
func IdempotencyMiddleware(client redis.Cmdable, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if client == nil || key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		store := idempotencyStore{client: client}
		recordKey := "idempotency:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		stored, err := store.claim(ctx, recordKey)
		switch {
		case errors.Is(err, errInFlight):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			logger.Warn("idempotency store unavailable", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Next()
			return
		case stored != nil:
			c.Header(idempotentReplayHeader, "true")
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// Conflicts, rate limits and server errors are retryable, so the key
		// is released instead of pinning the failure.
		status := w.Status()
		if status < 200 || status >= 500 || status == http.StatusConflict || status == http.StatusTooManyRequests {
			if err := store.release(context.WithoutCancel(ctx), recordKey); err != nil {
				logger.Warn("failed to release idempotency key", zap.Error(err))
			}
			return
		}

		resp := storedResponse{
			StatusCode:  status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}
		storeCtx := context.WithoutCancel(ctx)
		if err := store.complete(storeCtx, recordKey, resp); err != nil {
			logger.Warn("failed to store idempotent response", zap.Error(err))
			// Leaving the in-flight marker would turn every retry into a 409.
			if err := store.release(storeCtx, recordKey); err != nil {
				logger.Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}
