// Package logging builds the process logger and logs lifecycle events.
package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
	reqid "github.com/hanpama/bookgraph/internal/reqid"
)

// New returns a zap logger at level ("debug", "info", "warn" or "error").
// Development loggers write human-readable console output; production
// loggers write JSON.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Subscribe logs request, operation and store write events from bus.
func Subscribe(bus *eventbus.Bus, log *zap.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.On(bus, func(ctx context.Context, e events.HTTPFinish) {
			log.Info("http request",
				requestID(ctx),
				zap.String("method", e.Request.Method),
				zap.String("path", e.Request.URL.Path),
				zap.Int("status", e.Status),
				zap.Duration("duration", e.Duration),
			)
		}),
		eventbus.On(bus, func(ctx context.Context, e events.GraphQLFinish) {
			fields := []zap.Field{
				requestID(ctx),
				zap.String("operation", e.OperationName),
				zap.String("type", e.OperationType),
				zap.Int("errors", len(e.Errors)),
				zap.Duration("duration", e.Duration),
			}
			if len(e.Errors) > 0 {
				log.Warn("graphql operation", append(fields, zap.Strings("messages", e.Errors), zap.Strings("codes", e.Codes))...)
				return
			}
			log.Info("graphql operation", fields...)
		}),
		eventbus.On(bus, func(ctx context.Context, e events.StoreWrite) {
			log.Debug("store write",
				requestID(ctx),
				zap.String("entity", e.Entity),
				zap.Int("id", e.ID),
				zap.Duration("duration", e.Duration),
			)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func requestID(ctx context.Context) zap.Field {
	if rid, ok := reqid.FromContext(ctx); ok {
		return zap.String("request_id", rid)
	}
	return zap.Skip()
}
