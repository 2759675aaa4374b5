package log

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type correlationIDType int

const (
	requestIDKey correlationIDType = iota
	requestFieldsKey
)

// WithRequestID returns a context which knows its request ID.
// A request ID tracks the lifecycle of a single request across all execution contexts,
// the canonical example is an incoming message received over the network.
func WithRequestID(ctx context.Context, requestID string, fields ...zap.Field) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	if len(fields) > 0 {
		ctx = context.WithValue(ctx, requestFieldsKey, fields)
	}
	return ctx
}

// WithNewRequestID does the same thing as WithRequestID but generates a new, random requestID.
func WithNewRequestID(ctx context.Context, fields ...zap.Field) context.Context {
	return WithRequestID(ctx, uuid.New().String(), fields...)
}

// ExtractRequestID extracts the request id from a context object.
func ExtractRequestID(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id, true
	}
	return "", false
}

// ExtractRequestFields extracts the fields attached to the request.
func ExtractRequestFields(ctx context.Context) []zap.Field {
	if fields, ok := ctx.Value(requestFieldsKey).([]zap.Field); ok {
		return fields
	}
	return nil
}
