// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values at the edge; services read them without
// importing net/http. Tests inject them directly:
//
//	ctx = requestcontext.WithClientIP(ctx, "203.0.113.9")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	clientIPKey          struct{}
	userAgentKey         struct{}
	acceptLanguageKey    struct{}
	acceptEncodingKey    struct{}
	deviceFingerprintKey struct{}
	requestIDKey         struct{}
	requestTimeKey       struct{}
)

// ClientIP retrieves the best-effort client network address. Returns
// "unknown" when no middleware populated it, matching the value stored for
// signatures whose origin could not be determined.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// WithClientIP injects a client IP into the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// UserAgent retrieves the User-Agent header value, or "" if unset.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithUserAgent injects a User-Agent value into the context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// AcceptLanguage retrieves the Accept-Language header value, or "" if unset.
func AcceptLanguage(ctx context.Context) string {
	if v, ok := ctx.Value(acceptLanguageKey{}).(string); ok {
		return v
	}
	return ""
}

// WithAcceptLanguage injects an Accept-Language value into the context.
func WithAcceptLanguage(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, acceptLanguageKey{}, v)
}

// AcceptEncoding retrieves the Accept-Encoding header value, or "" if unset.
func AcceptEncoding(ctx context.Context) string {
	if v, ok := ctx.Value(acceptEncodingKey{}).(string); ok {
		return v
	}
	return ""
}

// WithAcceptEncoding injects an Accept-Encoding value into the context.
func WithAcceptEncoding(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, acceptEncodingKey{}, v)
}

// DeviceFingerprint retrieves the pre-computed device fingerprint, or "".
func DeviceFingerprint(ctx context.Context) string {
	if fp, ok := ctx.Value(deviceFingerprintKey{}).(string); ok {
		return fp
	}
	return ""
}

// WithDeviceFingerprint injects a device fingerprint into the context.
func WithDeviceFingerprint(ctx context.Context, fp string) context.Context {
	return context.WithValue(ctx, deviceFingerprintKey{}, fp)
}

// RequestID retrieves the request correlation ID, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now retrieves the request-scoped time, falling back to the wall clock when
// no middleware captured one. All time-window checks within one request see
// the same instant.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
