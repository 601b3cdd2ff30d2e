package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	maxInboundID = 128
)

type requestInfo struct {
	requestID string
	traceID   string
}

type requestInfoKey struct{}

// inboundID keeps a caller-supplied id unless it is empty or oversized.
func inboundID(r *http.Request, header string) string {
	if v := r.Header.Get(header); v != "" && len(v) <= maxInboundID {
		return v
	}
	return uuid.NewString()
}

// WithRequestAndTrace tags every request with a request id and a trace id, honouring
// ids supplied by the caller, and echoes both in the response headers.
func WithRequestAndTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := requestInfo{
			requestID: inboundID(r, HeaderRequestID),
			traceID:   inboundID(r, HeaderTraceID),
		}
		w.Header().Set(HeaderRequestID, info.requestID)
		w.Header().Set(HeaderTraceID, info.traceID)

		ctx := context.WithValue(r.Context(), requestInfoKey{}, info)
		log := Logger(ctx)
		began := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(began).Milliseconds(),
		)
	})
}

func infoFrom(ctx context.Context) requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(requestInfo)
	return info
}

func RequestIDFromContext(ctx context.Context) string { return infoFrom(ctx).requestID }

func TraceIDFromContext(ctx context.Context) string { return infoFrom(ctx).traceID }

// Logger returns the default logger bound to the ids carried by ctx.
func Logger(ctx context.Context) *slog.Logger {
	info := infoFrom(ctx)
	if info.requestID == "" {
		return slog.Default()
	}
	return slog.Default().With("request_id", info.requestID, "trace_id", info.traceID)
}
