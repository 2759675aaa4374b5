// Package log provides zap helpers shared by all modules of the node.
package log

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// ConsoleEncoder writes human readable log lines.
	ConsoleEncoder = "console"
	// JSONEncoder writes one json object per log line.
	JSONEncoder = "json"
)

// Level is an alias to zapcore.Level so that configuration can use it directly.
type Level = zapcore.Level

// where logs go by default.
var logWriter io.Writer = os.Stdout

// New creates a root logger with the provided level and encoder name.
func New(name string, level zap.AtomicLevel, encoder string) *zap.Logger {
	var enc zapcore.Encoder
	switch encoder {
	case JSONEncoder:
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(logWriter), level)
	return zap.New(core).Named(name)
}

// ZContext adds the request id and request fields from the context to the log line.
func ZContext(ctx context.Context) zap.Field {
	return zap.Inline(&contextMarshaller{ctx: ctx})
}

type contextMarshaller struct {
	ctx context.Context
}

func (c *contextMarshaller) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	if id, ok := ExtractRequestID(c.ctx); ok {
		encoder.AddString("requestId", id)
	}
	for _, field := range ExtractRequestFields(c.ctx) {
		field.AddTo(encoder)
	}
	return nil
}

// ShortString is implemented by types that have a compact representation for logs.
type ShortString interface {
	ShortString() string
}

// ZShortStringer logs the short form of the value.
func ZShortStringer(name string, val ShortString) zap.Field {
	return zap.String(name, val.ShortString())
}
