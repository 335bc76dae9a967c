// api/cache/keys.go
package cache

import (
	"regexp"
	"strings"
)

const (
	keyDelimiter  = ":"
	metakeySuffix = "_keys"
)

// Old clients append a jQuery cache-busting nonce to every request.
// It has to be stripped before deriving a key or nothing would ever hit.
var cacheBusterPattern = regexp.MustCompile(`&?_=\d+`)

// StripCacheBuster removes the client-side cache-busting parameter from
// a raw query string.
func StripCacheBuster(query string) string {
	return cacheBusterPattern.ReplaceAllString(query, "")
}

// ResponseKey derives the cache key for a response from the request
// path, the negotiated content type, the normalized query string, and
// the principal's group token. Requests that differ only in group token
// must never share a key; the token is always the final component.
func ResponseKey(path, accept, query, groupToken string) string {
	return strings.Join([]string{path, accept, StripCacheBuster(query), groupToken}, keyDelimiter)
}

// Metakey returns the key under which the set of all response keys ever
// issued for a resource path is tracked. One metakey covers every
// content-type, query, and group variation of the path.
func Metakey(path string) string {
	return path + metakeySuffix
}
