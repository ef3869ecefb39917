package correlation

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/constants"
)

type ctxKey struct{}

// NewID generates a fresh correlation id
func NewID() string {
	return uuid.NewString()
}

// WithID returns a copy of ctx carrying the correlation id
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the correlation id carried by ctx, or the placeholder when
// there is none
func ID(ctx context.Context) string {
	if ctx != nil {
		if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
			return id
		}
	}
	return constants.RequestIDPlaceholder
}

// Entry returns a log entry tagged with the correlation id from ctx
func Entry(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	return logger.WithField("request_id", ID(ctx))
}
