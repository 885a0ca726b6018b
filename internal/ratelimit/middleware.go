package ratelimit

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taskhive/taskhive/internal/shared"
)

// ClientKey derives the client identity used for throttling. Forwarding
// headers win over the connection source so limits follow the original
// client when the server sits behind a proxy. There is no proxy allowlist;
// see the deployment notes before trusting these headers.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware enforces the limiter ahead of the wrapped handler. Admitted
// requests carry the usual X-RateLimit-* headers; rejected requests get a
// 429 with a retry hint and never reach the handler.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := l.Admit(ClientKey(r))
		if err != nil {
			var limited *RateLimitedError
			if errors.As(err, &limited) {
				if l.cfg.OnReject != nil {
					l.cfg.OnReject()
				}
				w.Header().Set("Retry-After", strconv.Itoa(limited.RetryAfter))
				shared.JSON(w, http.StatusTooManyRequests, map[string]any{
					"error":      "Rate limit exceeded",
					"message":    limited.Message,
					"retryAfter": limited.RetryAfter,
				})
				return
			}
			shared.JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", info.ResetAt.UTC().Format(time.RFC3339))
		next.ServeHTTP(w, r)
	})
}
