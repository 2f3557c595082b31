// Package validation provides centralized input validation logic.
//
// All caller-supplied paths are validated before they reach a backend so
// that malformed keys fail locally without a network round trip.
package validation

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// maxKeyLength is the S3 limit for object keys in bytes.
const maxKeyLength = 1024

// keyRule rejects a key when broken reports true.
type keyRule struct {
	broken func(string) bool
	reason string
}

var keyRules = []keyRule{
	{func(k string) bool { return strings.TrimSpace(k) == "" }, "object key cannot be empty"},
	{hasPathTraversal, "object key cannot contain path traversal sequences"},
	{func(k string) bool { return len(k) > maxKeyLength }, fmt.Sprintf("object key cannot exceed %d bytes", maxKeyLength)},
	{func(k string) bool { return strings.IndexFunc(k, unicode.IsControl) >= 0 }, "object key cannot contain control characters"},
}

// ValidateObjectKey validates a logical object path against keyRules.
// The first broken rule determines the error message.
func ValidateObjectKey(key string) error {
	for _, rule := range keyRules {
		if rule.broken(key) {
			return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
				WithKey(key).
				WithMessage(rule.reason)
		}
	}
	return nil
}

// ValidatePrefix validates a listing prefix. Unlike object keys, an empty
// prefix is allowed and lists the namespace root.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	return ValidateObjectKey(prefix)
}

// ValidatePartNumber validates a 1-based multipart part number.
func ValidatePartNumber(partNumber int32) error {
	if partNumber < 1 || partNumber > storetypes.MaxPartNumber {
		return errors.NewError("validatePartNumber", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("part number %d outside 1..%d", partNumber, storetypes.MaxPartNumber))
	}
	return nil
}

// ValidateUploadID validates a multipart upload identifier.
func ValidateUploadID(uploadID string) error {
	if strings.TrimSpace(uploadID) == "" {
		return errors.NewError("validateUploadID", errors.ErrInvalidInput).
			WithMessage("upload id cannot be empty")
	}
	return nil
}

// hasPathTraversal reports a ".." segment or a drive-letter prefix such as `C:\`.
func hasPathTraversal(key string) bool {
	if slices.Contains(strings.Split(key, "/"), "..") {
		return true
	}
	if len(key) >= 3 && key[1] == ':' && (key[2] == '\\' || key[2] == '/') {
		return true
	}
	cleaned := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}
