package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/buriane/taghiane/internal/obs"
)

// rpcLevel picks the log level for an RPC outcome. Client-caused failures
// are warnings; server faults are errors.
func rpcLevel(err error) slog.Level {
	switch connect.CodeOf(err) {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return slog.LevelError
	}
	return slog.LevelWarn
}

// LoggingInterceptor logs every RPC and records it in metrics. It reads the
// caller from the context, so it must run after the auth interceptor.
func LoggingInterceptor(logger *slog.Logger, metrics *obs.DomainMetrics) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			procedure := req.Spec().Procedure
			attrs := []slog.Attr{
				slog.String("procedure", procedure),
				slog.String("protocol", req.Peer().Protocol),
				slog.String("user_id", GetUserID(ctx)),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
			}

			code := "ok"
			if err == nil {
				logger.LogAttrs(ctx, slog.LevelInfo, "RPC ok", attrs...)
			} else {
				code = connect.CodeOf(err).String()
				level := rpcLevel(err)
				detail := err.Error()
				var ce *connect.Error
				if level == slog.LevelWarn && errors.As(err, &ce) {
					detail = ce.Message()
				}
				attrs = append(attrs, slog.String("code", code), slog.String("error", detail))
				logger.LogAttrs(ctx, level, "RPC error", attrs...)
			}
			metrics.ObserveRPC(procedure, code, elapsed)

			return resp, err
		}
	}
}

