package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantError bool
		errMsg    string
	}{
		// Valid object keys
		{"valid_simple", "my-file.txt", false, ""},
		{"valid_with_path", "folder/subfolder/file.txt", false, ""},
		{"valid_directory", "a/b/", false, ""},
		{"valid_unicode", "файл.txt", false, ""},
		{"valid_dots_in_name", "report..final.csv", false, ""},
		{"valid_spaces", "file with spaces.txt", false, ""},
		{"valid_max_length", strings.Repeat("a", 1024), false, ""},

		// Invalid object keys
		{"empty", "", true, "object key cannot be empty"},
		{"blank", "   ", true, "object key cannot be empty"},
		{"too_long", strings.Repeat("a", 1025), true, "object key cannot exceed 1024 bytes"},
		{"path_traversal_dot_dot", "../secret.txt", true, "path traversal"},
		{"path_traversal_nested", "folder/../../../secret.txt", true, "path traversal"},
		{"path_traversal_windows", "C:\\Windows\\System32\\config\\system", true, "path traversal"},
		{"control_characters", "file\x00with\x01null.txt", true, "control characters"},
		{"newline", "file\nwith\nnewlines.txt", true, "control characters"},
		{"tab", "file\twith\ttabs.txt", true, "control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.True(t, errors.IsInvalidInput(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	assert.NoError(t, ValidatePrefix(""))
	assert.NoError(t, ValidatePrefix("a/"))
	assert.ErrorIs(t, ValidatePrefix("../"), errors.ErrInvalidObjectKey)
}

func TestValidatePartNumber(t *testing.T) {
	tests := []struct {
		name       string
		partNumber int32
		wantError  bool
	}{
		{"first", 1, false},
		{"last", 10000, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too_high", 10001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePartNumber(tt.partNumber)
			if tt.wantError {
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUploadID(t *testing.T) {
	assert.NoError(t, ValidateUploadID("abc"))
	assert.ErrorIs(t, ValidateUploadID(""), errors.ErrInvalidInput)
	assert.ErrorIs(t, ValidateUploadID(" "), errors.ErrInvalidInput)
}
