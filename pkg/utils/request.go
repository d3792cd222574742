package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// GenerateRequestID returns a random hex id used to correlate log lines of
// one request.
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

type requestIDKey struct{}

// WithRequestID stores the request id in the context so handlers and
// services can tag their log lines with it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id set by the middleware, or ""
// when the request never passed through it.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextLogger returns a log entry carrying the request id when the context
// has one. Per-request logging goes through this so every line of one
// request shares the same request_id field.
func ContextLogger(ctx context.Context, base *logrus.Logger) *logrus.Entry {
	if id := RequestIDFromContext(ctx); id != "" {
		return base.WithField("request_id", id)
	}
	return logrus.NewEntry(base)
}
