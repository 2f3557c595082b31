package objectstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-multierror"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Write stores the contents of r at path. The length of r is unknown, so
// the backend either streams it in parts or stages it to a temp file.
// It returns path.
func (c *Client) Write(ctx context.Context, path string, r io.Reader) (string, error) {
	return c.WriteWithOptions(ctx, path, r, -1, storetypes.PutOptions{})
}

// WriteWithSize stores exactly size bytes from r at path.
func (c *Client) WriteWithSize(ctx context.Context, path string, r io.Reader, size int64) (string, error) {
	return c.WriteWithOptions(ctx, path, r, size, storetypes.PutOptions{})
}

// WriteWithOptions stores r at path with the given headers.
// A negative size means the length of r is unknown.
//
// Errors:
//   - ErrInvalidObjectKey: If path is blank or malformed
//   - ErrInvalidInput: If r is nil
//   - ErrProtocol: If the server rejects the request
//   - ErrTransport: If the server cannot be reached
//   - ErrLocalResource: If a stream of unknown length cannot be staged
func (c *Client) WriteWithOptions(
	ctx context.Context,
	path string,
	r io.Reader,
	size int64,
	opts storetypes.PutOptions,
) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}
	if r == nil {
		return "", errors.NewError("write", errors.ErrInvalidInput).
			WithKey(path).
			WithMessage("reader cannot be nil")
	}

	if err := c.backend.Put(ctx, path, r, size, opts); err != nil {
		c.logger.Error("failed to write object", "path", path, "error", err)
		return "", err
	}
	return path, nil
}

// Upload stores the local file filename at path. The content type is
// detected from the file contents.
//
// Example:
//
//	path, err := client.Upload(ctx, "reports/2024.pdf", "/tmp/report.pdf")
func (c *Client) Upload(ctx context.Context, path, filename string) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}

	file, size, err := c.openLocal("upload", path, filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", errors.NewError("upload", errors.Mark(errors.ErrLocalResource, err)).WithKey(path)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", errors.NewError("upload", errors.Mark(errors.ErrLocalResource, err)).WithKey(path)
	}

	c.logger.Debug("uploading file", "path", path, "file", filename, "content_type", mt.String())
	return c.WriteWithOptions(ctx, path, file, size, storetypes.PutOptions{ContentType: mt.String()})
}

// Read opens the object at path. The caller must close the reader.
func (c *Client) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return nil, err
	}
	return c.backend.Get(ctx, path)
}

// List returns the keys directly under path. Deeper keys are collapsed into
// prefixes ending in "/". Listing "a/" over the object "a/b/c.txt" returns
// ["a/b/"].
func (c *Client) List(ctx context.Context, path string) ([]string, error) {
	return c.list(ctx, storetypes.ListOptions{Prefix: path})
}

// ListPage returns at most maxKeys entries directly under path that sort
// after startAfter. A maxKeys of zero returns every entry.
func (c *Client) ListPage(ctx context.Context, path string, maxKeys int32, startAfter string) ([]string, error) {
	if maxKeys < 0 {
		return nil, errors.NewError("listObjects", errors.ErrInvalidInput).
			WithKey(path).
			WithMessage(fmt.Sprintf("max keys cannot be negative: %d", maxKeys))
	}
	return c.list(ctx, storetypes.ListOptions{Prefix: path, MaxKeys: maxKeys, StartAfter: startAfter})
}

// ListRecursive returns every object key under path.
func (c *Client) ListRecursive(ctx context.Context, path string) ([]string, error) {
	return c.list(ctx, storetypes.ListOptions{Prefix: path, Recursive: true})
}

func (c *Client) list(ctx context.Context, opts storetypes.ListOptions) ([]string, error) {
	if err := validation.ValidatePrefix(opts.Prefix); err != nil {
		return nil, err
	}
	return c.backend.List(ctx, opts)
}

// Remove deletes the object at path and returns path.
// Removing a missing object succeeds.
func (c *Client) Remove(ctx context.Context, path string) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}
	if err := c.backend.Remove(ctx, path); err != nil {
		c.logger.Error("failed to remove object", "path", path, "error", err)
		return "", err
	}
	return path, nil
}

// RemoveMany deletes the given objects and returns the paths removed.
// Invalid paths fail the whole call before any request is made. Per-object
// failures are aggregated into the returned error alongside the paths that
// were removed.
func (c *Client) RemoveMany(ctx context.Context, paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return []string{}, nil
	}

	var invalid *multierror.Error
	for _, path := range paths {
		if err := validation.ValidateObjectKey(path); err != nil {
			invalid = multierror.Append(invalid, err)
		}
	}
	if err := invalid.ErrorOrNil(); err != nil {
		return nil, err
	}

	removed, err := c.backend.RemoveMany(ctx, paths)
	if err != nil {
		c.logger.Error("failed to remove objects",
			"requested", len(paths), "removed", len(removed), "error", err)
	}
	return removed, err
}

// GetSize returns the size of the object at path in bytes.
func (c *Client) GetSize(ctx context.Context, path string) (int64, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return 0, err
	}
	info, err := c.backend.Stat(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

// PresignedURL returns a URL authorizing method on path for the configured
// lifetime (10 minutes by default). The URL is signed locally.
func (c *Client) PresignedURL(ctx context.Context, path string, method storetypes.Method) (string, error) {
	return c.issuer.URL(ctx, path, method)
}

// PresignedURLWithExpiry returns a URL authorizing method on path for expiry.
func (c *Client) PresignedURLWithExpiry(
	ctx context.Context,
	path string,
	method storetypes.Method,
	expiry time.Duration,
) (string, error) {
	return c.issuer.URLWithExpiry(ctx, path, method, expiry)
}
