package objectstore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/staging"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
)

// DefaultWriterBufferSize is the buffer size used when NewRemoteStorageWriter
// is given a non-positive size.
const DefaultWriterBufferSize = 64 * 1024

// RemoteStorageWriter buffers writes in a local temp file and uploads the
// file to its path on Close. The temp file is removed on Close whether or
// not the upload succeeds.
//
// A writer that received no bytes uploads nothing.
type RemoteStorageWriter struct {
	ctx    context.Context
	client *Client
	path   string

	mu      sync.Mutex
	file    fs.File
	buf     *bufio.Writer
	written int64
	closed  bool
}

var _ io.WriteCloser = (*RemoteStorageWriter)(nil)

// NewRemoteStorageWriter returns a writer that uploads to path on Close.
// ctx governs the upload performed by Close.
//
// Example:
//
//	w, err := client.NewRemoteStorageWriter(ctx, "exports/data.csv", 0)
//	if err != nil {
//	    return err
//	}
//	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
//	    _ = w.Close()
//	    return err
//	}
//	return w.Close()
func (c *Client) NewRemoteStorageWriter(ctx context.Context, path string, bufferSize int) (*RemoteStorageWriter, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return nil, err
	}
	if bufferSize <= 0 {
		bufferSize = DefaultWriterBufferSize
	}

	file, err := c.stager.Create()
	if err != nil {
		return nil, errors.NewError("newWriter", err).WithKey(path)
	}

	return &RemoteStorageWriter{
		ctx:    ctx,
		client: c,
		path:   path,
		file:   file,
		buf:    bufio.NewWriterSize(file, bufferSize),
	}, nil
}

// Path returns the object path the writer uploads to.
func (w *RemoteStorageWriter) Path() string {
	return w.path
}

// Write buffers p for upload.
func (w *RemoteStorageWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, errors.NewError("write", errors.ErrInvalidInput).
			WithKey(w.path).
			WithMessage("writer is closed")
	}

	n, err := w.buf.Write(p)
	w.written += int64(n)
	if err != nil {
		return n, errors.NewError("write", errors.Mark(errors.ErrLocalResource, err)).WithKey(w.path)
	}
	return n, nil
}

// Close flushes the buffer, uploads the temp file and removes it.
// A failure to remove the temp file is returned as ErrLocalResource, joined
// with the upload error when both fail. Calling Close more than once has no
// effect.
func (w *RemoteStorageWriter) Close() (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	name := w.file.Name()
	defer func() {
		_ = w.file.Close()
		removeErr := w.client.stager.Remove(name)
		if removeErr == nil {
			return
		}
		w.client.logger.Warn("failed to remove temp file", "file", name, "error", removeErr)
		if err == nil {
			err = errors.NewError("close", removeErr).WithKey(w.path)
			return
		}
		err = errors.NewError("close", staging.Join(err, removeErr)).WithKey(w.path)
	}()

	if err := w.buf.Flush(); err != nil {
		return errors.NewError("close", errors.Mark(errors.ErrLocalResource, err)).WithKey(w.path)
	}
	if w.written == 0 {
		w.client.logger.Debug("nothing written, skipping upload", "path", w.path)
		return nil
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return errors.NewError("close", errors.Mark(errors.ErrLocalResource, err)).WithKey(w.path)
	}

	w.client.logger.Debug("uploading buffered object",
		"path", w.path,
		"size", humanize.IBytes(uint64(w.written)))
	_, err = w.client.WriteWithSize(w.ctx, w.path, w.file, w.written)
	return err
}

// openLocal opens a local file for upload and returns it with its size.
func (c *Client) openLocal(op, path, filename string) (fs.File, int64, error) {
	if filename == "" {
		return nil, 0, errors.NewError(op, errors.ErrInvalidInput).
			WithKey(path).
			WithMessage("filename cannot be empty")
	}

	info, err := c.fs.Stat(filename)
	if err != nil {
		return nil, 0, errors.NewError(op, errors.Mark(errors.ErrLocalResource, err)).WithKey(path)
	}
	if info.IsDir() {
		return nil, 0, errors.NewError(op, errors.ErrInvalidInput).
			WithKey(path).
			WithMessage(fmt.Sprintf("%s is a directory, not a file", filename))
	}

	file, err := c.fs.Open(filename)
	if err != nil {
		return nil, 0, errors.NewError(op, errors.Mark(errors.ErrLocalResource, err)).WithKey(path)
	}
	return file, info.Size(), nil
}
