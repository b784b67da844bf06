// Package email holds the address normalization rules shared by validation,
// duplicate detection, and storage. Every equality comparison in the system
// goes through Normalize; raw input casing is only ever kept for display.
package email

import "strings"

// Normalize lowercases and trims an email address. This is the canonical key
// for uniqueness and all duplicate checks.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Split returns the local part and domain of an address. ok is false when the
// address has no '@', an empty local part, or an empty domain; callers that
// run heuristics on address shape must treat that as "skip", not as an error,
// since malformed addresses are rejected by upstream validation.
func Split(addr string) (local, domain string, ok bool) {
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 || at == len(addr)-1 {
		return "", "", false
	}
	return addr[:at], addr[at+1:], true
}
