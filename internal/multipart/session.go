// Package multipart exposes the manual multipart upload lifecycle:
// initiate, presign or upload parts, then complete or abort.
//
// No session state is kept locally. Every call addresses the upload by
// (path, uploadID) and the backend enforces the Initiated -> Completed |
// Aborted transitions, so a second abort or a part upload after completion
// fails with whatever the backend reports.
package multipart

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/presign"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Session drives multipart uploads against a backend.
type Session struct {
	backend backend.Backend
	issuer  *presign.Issuer
	logger  *slog.Logger
}

// New returns a Session. A nil logger discards output.
func New(b backend.Backend, issuer *presign.Issuer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{backend: b, issuer: issuer, logger: logger}
}

// Initiate starts an upload for path and returns its upload id.
func (s *Session) Initiate(ctx context.Context, path string) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}

	uploadID, err := s.backend.CreateMultipartUpload(ctx, path)
	if err != nil {
		return "", err
	}
	s.logger.Debug("multipart upload initiated", "path", path, "upload_id", uploadID)
	return uploadID, nil
}

// PresignPart returns a URL a third party can PUT one part to.
// The upload id is not checked against the server.
func (s *Session) PresignPart(ctx context.Context, path, uploadID string, partNumber int32) (string, error) {
	return s.issuer.PartURL(ctx, path, uploadID, partNumber)
}

// UploadPart uploads size bytes from r as part partNumber and returns its ETag.
func (s *Session) UploadPart(
	ctx context.Context,
	path, uploadID string,
	partNumber int32,
	r io.Reader,
	size int64,
) (string, error) {
	if err := validatePart(path, uploadID, partNumber); err != nil {
		return "", err
	}
	if size < 0 {
		return "", errors.NewError("uploadPart", errors.ErrInvalidInput).
			WithKey(path).
			WithMessage("part size must be known")
	}

	return s.backend.UploadPart(ctx, path, uploadID, partNumber, r, size)
}

// Complete assembles the upload. ETags are assigned part numbers 1..N in
// the order given. An empty list fails before any request is made.
func (s *Session) Complete(ctx context.Context, path, uploadID string, etags []string) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}
	if err := validation.ValidateUploadID(uploadID); err != nil {
		return "", err
	}
	if len(etags) == 0 {
		return "", errors.NewError("completeMultipartUpload", errors.ErrInvalidInput).
			WithKey(path).
			WithMessage("at least one part is required")
	}
	if len(etags) > int(storetypes.MaxPartNumber) {
		return "", errors.NewError("completeMultipartUpload", errors.ErrInvalidInput).
			WithKey(path).
			WithMessage(fmt.Sprintf("%d parts exceed the limit of %d", len(etags), storetypes.MaxPartNumber))
	}

	if err := s.backend.CompleteMultipartUpload(ctx, path, uploadID, Parts(etags)); err != nil {
		return "", err
	}
	s.logger.Debug("multipart upload completed", "path", path, "upload_id", uploadID, "parts", len(etags))
	return path, nil
}

// Abort discards the upload. Errors from the backend are returned as is.
func (s *Session) Abort(ctx context.Context, path, uploadID string) error {
	if err := validation.ValidateObjectKey(path); err != nil {
		return err
	}
	if err := validation.ValidateUploadID(uploadID); err != nil {
		return err
	}
	return s.backend.AbortMultipartUpload(ctx, path, uploadID)
}

// Parts numbers etags from 1 in order.
func Parts(etags []string) []storetypes.Part {
	parts := make([]storetypes.Part, len(etags))
	for i, etag := range etags {
		parts[i] = storetypes.Part{PartNumber: int32(i + 1), ETag: etag}
	}
	return parts
}

func validatePart(path, uploadID string, partNumber int32) error {
	if err := validation.ValidateObjectKey(path); err != nil {
		return err
	}
	if err := validation.ValidateUploadID(uploadID); err != nil {
		return err
	}
	return validation.ValidatePartNumber(partNumber)
}
