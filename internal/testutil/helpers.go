package testutil

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// GenerateRandomData returns size pseudo-random bytes for upload payloads.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i += 8 {
		v := rand.Uint64()
		for j := 0; j < 8 && i+j < size; j++ {
			data[i+j] = byte(v >> (8 * j))
		}
	}
	return data
}

// UniqueKey returns prefix + a random segment + "/" + name, so tests sharing
// a bucket never collide.
func UniqueKey(prefix, name string) string {
	return prefix + uuid.NewString() + "/" + name
}

// UniqueBucketName returns a DNS-compliant bucket name starting with prefix.
func UniqueBucketName(prefix string) string {
	name := strings.ToLower(prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}
