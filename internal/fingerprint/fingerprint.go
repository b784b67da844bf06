// Package fingerprint derives a pseudonymous device identifier from client
// request headers. The identifier is a weak abuse-prevention signal, not an
// authentication factor: it only needs to be deterministic and one-way.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

// Compute returns a deterministic SHA-256 hex digest over the three header
// values. Missing headers must be passed as empty strings so the function is
// total; two requests with identical header triples always map to the same
// fingerprint, and the digest cannot be inverted to recover the headers.
func Compute(userAgent, acceptLanguage, acceptEncoding string) string {
	sum := sha256.Sum256([]byte(userAgent + "-" + acceptLanguage + "-" + acceptEncoding))
	return hex.EncodeToString(sum[:])
}

// DescribeUserAgent renders a short human-readable device label ("Chrome on
// Mac OS X") for logs and support triage. It never contributes to the
// fingerprint itself.
func DescribeUserAgent(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return "Unknown Device"
	}

	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := parsed.OSInfo().Name
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
