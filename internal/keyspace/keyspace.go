// Package keyspace maps logical object paths onto backend keys under an
// optional sub-path prefix.
package keyspace

import "strings"

// Namespace prefixes logical paths with a fixed sub-path.
// The zero value is the bucket root.
type Namespace struct {
	prefix string
}

// New returns a Namespace rooted at subPath. Leading and trailing slashes
// are trimmed, so "/exports/", "exports/" and "exports" are equivalent.
func New(subPath string) Namespace {
	trimmed := strings.Trim(strings.TrimSpace(subPath), "/")
	if trimmed == "" {
		return Namespace{}
	}
	return Namespace{prefix: trimmed + "/"}
}

// Prefix returns the backend key prefix including its trailing slash,
// or "" for the bucket root.
func (n Namespace) Prefix() string {
	return n.prefix
}

// Full returns the backend key for a logical path.
func (n Namespace) Full(path string) string {
	return n.prefix + path
}

// Strip returns the logical path for a backend key. Keys outside the
// namespace are returned unchanged.
func (n Namespace) Strip(key string) string {
	return strings.TrimPrefix(key, n.prefix)
}

// StripAll strips every key in place and returns the slice.
func (n Namespace) StripAll(keys []string) []string {
	if n.prefix == "" {
		return keys
	}
	for i, k := range keys {
		keys[i] = n.Strip(k)
	}
	return keys
}
