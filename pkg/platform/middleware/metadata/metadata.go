// Package metadata extracts client-identifying request metadata at the edge
// of the HTTP stack and publishes it through pkg/requestcontext so services
// stay free of net/http.
package metadata

import (
	"net/http"
	"strings"

	"petition/internal/fingerprint"
	"petition/pkg/requestcontext"
)

// ClientMetadata captures the client IP, User-Agent, Accept-Language and
// Accept-Encoding headers, derives the device fingerprint, and stores all of
// them in the request context. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		lang := r.Header.Get("Accept-Language")
		enc := r.Header.Get("Accept-Encoding")

		ctx := r.Context()
		ctx = requestcontext.WithClientIP(ctx, ClientIPFromRequest(r))
		ctx = requestcontext.WithUserAgent(ctx, ua)
		ctx = requestcontext.WithAcceptLanguage(ctx, lang)
		ctx = requestcontext.WithAcceptEncoding(ctx, enc)
		ctx = requestcontext.WithDeviceFingerprint(ctx, fingerprint.Compute(ua, lang, enc))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the best-effort client IP, handling proxies
// and load balancers. Returns "unknown" when nothing usable is present; that
// value is exempt from IP-based throttling since it cannot discriminate
// between submitters.
func ClientIPFromRequest(r *http.Request) string {
	// Cloudflare puts the original client address here when proxying.
	if cf := r.Header.Get("Cf-Connecting-Ip"); cf != "" {
		return strings.TrimSpace(cf)
	}

	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
	// the first entry is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// X-Real-IP is set by nginx and similar reverse proxies.
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" ("[::1]:port" for IPv6); strip the port.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
