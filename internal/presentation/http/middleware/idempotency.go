package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyPendingTTL bounds a reservation left behind by a crashed request
	IdempotencyPendingTTL = 5 * time.Minute
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (cfg IdempotencyConfig) logger() *zap.Logger {
	if cfg.Logger == nil {
		return zap.NewNop()
	}
	return cfg.Logger
}

// replay writes a stored response and reports whether it did.
func replay(c *gin.Context, existing *entity.IdempotencyKey) bool {
	if existing == nil || existing.IsExpired() || existing.IsPending() {
		return false
	}
	c.Header("X-Idempotency-Replayed", "true")
	c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
	c.Abort()
	return true
}

// guard claims key before the handler runs so concurrent retries cannot both
// execute it, then stores the handler's response on the claim. With
// onlySuccess set a non-2xx response releases the claim instead.
func guard(c *gin.Context, cfg IdempotencyConfig, key, userID string, onlySuccess bool) {
	ctx := c.Request.Context()
	log := cfg.logger().With(zap.String("user_id", userID), zap.String("endpoint", c.Request.Method+" "+c.FullPath()))

	ikey := &entity.IdempotencyKey{
		Key:       key,
		UserID:    userID,
		Endpoint:  c.Request.Method + " " + c.FullPath(),
		ExpiresAt: time.Now().Add(IdempotencyPendingTTL),
	}
	reserved, err := cfg.Repo.Reserve(ctx, ikey)
	if err != nil {
		response.ErrorWithCode(c, http.StatusInternalServerError, "Failed to check idempotency key")
		c.Abort()
		return
	}
	if !reserved {
		existing, err := cfg.Repo.GetByKey(ctx, key, userID)
		if err != nil {
			response.ErrorWithCode(c, http.StatusInternalServerError, "Failed to check idempotency key")
			c.Abort()
			return
		}
		if replay(c, existing) {
			return
		}
		response.ErrorWithCode(c, http.StatusConflict, "Request with this Idempotency-Key is already in progress")
		c.Abort()
		return
	}

	// The claim must be settled even when the client has gone away.
	settle := context.WithoutCancel(ctx)
	release := func() {
		if err := cfg.Repo.Release(settle, key, userID); err != nil {
			log.Warn("failed to release idempotency key", zap.Error(err))
		}
	}
	defer func() {
		if p := recover(); p != nil {
			release()
			panic(p)
		}
	}()

	blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
	c.Writer = blw

	c.Next()

	status := c.Writer.Status()
	if onlySuccess && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
		release()
		return
	}

	ikey.ResponseCode = status
	ikey.ResponseBody = blw.body.String()
	ikey.ExpiresAt = time.Now().Add(IdempotencyKeyTTL)
	if err := cfg.Repo.Complete(settle, ikey); err != nil {
		log.Warn("failed to store idempotency key", zap.Error(err))
	}
}

// Idempotency middleware replays the stored response when a request repeats
// an idempotency key. Requests without a key proceed normally. A repeat that
// arrives while the first request is still running gets 409.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		userID := c.GetString("user_id")
		if key == "" || userID == "" {
			c.Next()
			return
		}

		guard(c, cfg, key, userID, false)
	}
}

// IdempotencyRequired is a stricter version that requires an idempotency key.
// Only successful responses are stored, so a failed attempt may be retried
// with the same key.
func IdempotencyRequired(cfg IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		guard(c, cfg, key, userID, true)
	}
}
