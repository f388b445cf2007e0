package client

import (
	"log/slog"
	"net/http"
	"time"
)

// maxDetailLen is the maximum length for logged or reported response bodies before truncation.
const maxDetailLen = 200

// loggingTransport logs every request with timing.
// Slow requests are logged at WARN level, transport failures at ERROR.
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
	slow   time.Duration
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"duration_ms", duration.Milliseconds(),
	}
	if id := req.Header.Get(RequestIDHeader); id != "" {
		attrs = append(attrs, "request_id", id)
	}

	switch {
	case err != nil:
		attrs = append(attrs, "error", err.Error())
		t.logger.Error("request failed", attrs...)
	case resp.StatusCode >= http.StatusInternalServerError:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Warn("server error", attrs...)
	case duration > t.slow:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Warn("slow request", attrs...)
	default:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Debug("request completed", attrs...)
	}

	return resp, err
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
