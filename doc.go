// Package objectstore provides a single client for S3-protocol object
// storage that runs on either the AWS SDK for Go v2 or minio-go.
//
// Both SDK families implement one backend contract. The AWS backend streams
// writes through the transfer manager with CRC32 checksums; the MinIO
// backend sends single requests and stages streams of unknown length to a
// temporary file. Everything above the backend behaves identically:
//
//   - object CRUD, listing and presigned URLs,
//   - appends, which rewrite small objects client-side and compose large
//     ones server-side from a copied part and an uploaded part,
//   - an explicit multipart lifecycle (initiate, presign or upload parts,
//     complete, abort) for callers that drive uploads themselves.
//
// All paths are logical: a configured sub-path is prepended before any
// request and stripped from listed keys.
//
// Example usage:
//
//	cfg, err := config.Load("OBJECTSTORE", "")
//	if err != nil {
//	    return err
//	}
//
//	client, err := objectstore.New(ctx, cfg, objectstore.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	if _, err := client.Append(ctx, "logs/app.log", strings.NewReader("line\n")); err != nil {
//	    return err
//	}
//
// Errors returned by the client are *errors.Error values. Use errors.Code or
// the errors.Is* helpers to tell invalid input, missing objects, server
// rejections, network failures and local temp-file failures apart.
package objectstore
