// Package middleware provides interceptors and HTTP middleware for pdef
// servers.
package middleware

import (
	"log/slog"
	"time"

	"github.com/pdef/pdef-go"
)

// LoggingInterceptor creates an interceptor that logs invocation chains
// using slog. It logs the start and end of each call with its duration.
// Declared exceptions are logged at info level; other errors at error level.
func LoggingInterceptor(logger *slog.Logger) pdef.UnaryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *pdef.Context, inv *pdef.Invocation, handler pdef.HandlerFunc) (any, error) {
		start := time.Now()
		endpoint := ctx.EndpointID()

		logger.DebugContext(ctx, "call started",
			slog.String("endpoint", endpoint),
			slog.String("invocation", inv.String()),
		)

		res, err := handler(ctx, inv)
		duration := time.Since(start)

		switch {
		case err == nil:
			logger.InfoContext(ctx, "call completed",
				slog.String("endpoint", endpoint),
				slog.Duration("duration", duration),
			)
		case isDeclared(inv, err):
			logger.InfoContext(ctx, "call raised exception",
				slog.String("endpoint", endpoint),
				slog.Duration("duration", duration),
				slog.String("exception", inv.Exc().Name()),
			)
		default:
			logger.ErrorContext(ctx, "call failed",
				slog.String("endpoint", endpoint),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		}

		return res, err
	}
}

func isDeclared(inv *pdef.Invocation, err error) bool {
	exc := inv.Exc()
	return exc != nil && exc.Matches(err)
}
