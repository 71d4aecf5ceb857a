package search

import "strings"

// NormalizeQuery canonicalizes raw query text: trimmed, lowercased. Total
// and idempotent. It runs before every cache lookup and embedding call so
// equivalent queries (" Cats ", "cats") share cache entries.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
