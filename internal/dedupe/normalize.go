// Package dedupe owns the canonical set of seen profile URLs and the
// normalization that makes two URLs comparable.
package dedupe

import "strings"

// NormalizeProfileURL reduces a profile URL to its canonical comparable
// form: lower-cased, scheme and "www." prefix stripped, trailing
// slashes stripped. It is pure and idempotent.
func NormalizeProfileURL(rawURL string) string {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	u = strings.TrimRight(u, "/")
	return u
}
