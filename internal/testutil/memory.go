package testutil

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// APIError is a service error returned by MemoryBackend, carrying the S3
// error code a real backend would report.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// StoredObject is an object held by MemoryBackend.
type StoredObject struct {
	Data               []byte
	ETag               string
	ContentType        string
	ContentDisposition string
	LastModified       time.Time
}

type memoryUpload struct {
	key   string
	parts map[int32]memoryPart
}

type memoryPart struct {
	data []byte
	etag string
}

// MemoryBackend is a stateful in-memory backend.Backend. It enforces the
// multipart rules of S3: unknown or finished uploads fail with NoSuchUpload,
// non-final parts under 5 MiB fail with EntityTooSmall, and mismatched part
// ETags fail with InvalidPart.
type MemoryBackend struct {
	mu       sync.Mutex
	bucket   string
	caps     backend.Capabilities
	exists   bool
	objects  map[string]StoredObject
	uploads  map[string]*memoryUpload
	failures map[string]error
	calls    []string
}

var _ backend.Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty backend whose bucket already exists.
func NewMemoryBackend(bucket string) *MemoryBackend {
	return &MemoryBackend{
		bucket: bucket,
		caps: backend.Capabilities{
			Name:             "memory",
			SizedStreaming:   true,
			MinMultipartSize: storetypes.MinMultipartSize,
			MaxPartNumber:    storetypes.MaxPartNumber,
		},
		exists:   true,
		objects:  make(map[string]StoredObject),
		uploads:  make(map[string]*memoryUpload),
		failures: make(map[string]error),
	}
}

// SetCapabilities replaces the reported capabilities.
func (m *MemoryBackend) SetCapabilities(caps backend.Capabilities) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caps = caps
}

// SetBucketExists controls whether EnsureBucket finds the bucket.
func (m *MemoryBackend) SetBucketExists(exists bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exists = exists
}

// BucketExists reports whether the bucket exists.
func (m *MemoryBackend) BucketExists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists
}

// FailOn makes every later call of the named operation return err.
// Operation names match the backend.Backend method names.
func (m *MemoryBackend) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

// Calls returns the names of the operations invoked so far, in order.
func (m *MemoryBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Called reports whether the named operation was invoked.
func (m *MemoryBackend) Called(op string) bool {
	for _, c := range m.Calls() {
		if c == op {
			return true
		}
	}
	return false
}

// Object returns a stored object.
func (m *MemoryBackend) Object(key string) (StoredObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// PutObject stores data directly, bypassing call recording.
func (m *MemoryBackend) PutObject(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = newStoredObject(data, storetypes.PutOptions{})
}

// PendingUploads returns the number of multipart uploads neither completed nor aborted.
func (m *MemoryBackend) PendingUploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

// enter records the call and returns an injected failure, if any.
// The caller must hold m.mu.
func (m *MemoryBackend) enter(op string) error {
	m.calls = append(m.calls, op)
	return m.failures[op]
}

func (m *MemoryBackend) protocolError(op, key, code, message string) error {
	return errors.NewObjectError(op, m.bucket, key,
		errors.Mark(errors.ErrProtocol, &APIError{Code: code, Message: message}))
}

func (m *MemoryBackend) notFoundError(op, key string) error {
	return errors.NewObjectError(op, m.bucket, key,
		errors.Mark(errors.ErrObjectNotFound, &APIError{Code: "NoSuchKey", Message: "The specified key does not exist."}))
}

// Capabilities returns the configured capabilities.
func (m *MemoryBackend) Capabilities() backend.Capabilities {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caps
}

// Bucket returns the bucket name.
func (m *MemoryBackend) Bucket() string {
	return m.bucket
}

// EnsureBucket marks the bucket as existing.
func (m *MemoryBackend) EnsureBucket(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("EnsureBucket"); err != nil {
		return err
	}
	m.exists = true
	return nil
}

// Put stores the full contents of r.
func (m *MemoryBackend) Put(_ context.Context, key string, r io.Reader, size int64, opts storetypes.PutOptions) error {
	data, readErr := io.ReadAll(r)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Put"); err != nil {
		return err
	}
	if readErr != nil {
		return errors.NewObjectError("putObject", m.bucket, key, errors.Mark(errors.ErrTransport, readErr))
	}
	if size >= 0 && int64(len(data)) != size {
		return m.protocolError("putObject", key, "IncompleteBody",
			fmt.Sprintf("declared %d bytes, received %d", size, len(data)))
	}
	m.objects[key] = newStoredObject(data, opts)
	return nil
}

// Get returns a reader over a copy of the object data.
func (m *MemoryBackend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Get"); err != nil {
		return nil, err
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, m.notFoundError("getObject", key)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.Data))), nil
}

// Stat returns object metadata.
func (m *MemoryBackend) Stat(_ context.Context, key string) (storetypes.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Stat"); err != nil {
		return storetypes.ObjectInfo{}, err
	}
	obj, ok := m.objects[key]
	if !ok {
		return storetypes.ObjectInfo{}, m.notFoundError("headObject", key)
	}
	return storetypes.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.Data)),
		ETag:         obj.ETag,
		ContentType:  obj.ContentType,
		LastModified: obj.LastModified,
	}, nil
}

// List returns keys under the prefix. Non-recursive listings collapse
// deeper keys into common prefixes ending in "/".
func (m *MemoryBackend) List(_ context.Context, opts storetypes.ListOptions) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("List"); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for key := range m.objects {
		if !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		entry := key
		if !opts.Recursive {
			rest := strings.TrimPrefix(key, opts.Prefix)
			if i := strings.Index(rest, "/"); i >= 0 {
				entry = opts.Prefix + rest[:i+1]
			}
		}
		if opts.StartAfter != "" && entry <= opts.StartAfter {
			continue
		}
		seen[entry] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if opts.MaxKeys > 0 && len(keys) > int(opts.MaxKeys) {
		keys = keys[:opts.MaxKeys]
	}
	return keys, nil
}

// Remove deletes an object. Missing objects are not an error.
func (m *MemoryBackend) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Remove"); err != nil {
		return err
	}
	delete(m.objects, key)
	return nil
}

// RemoveMany deletes every key and returns them all.
func (m *MemoryBackend) RemoveMany(_ context.Context, keys []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("RemoveMany"); err != nil {
		return nil, err
	}
	for _, key := range keys {
		delete(m.objects, key)
	}
	return append([]string(nil), keys...), nil
}

// CreateMultipartUpload starts an upload with a random id.
func (m *MemoryBackend) CreateMultipartUpload(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateMultipartUpload"); err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.uploads[id] = &memoryUpload{key: key, parts: make(map[int32]memoryPart)}
	return id, nil
}

// upload returns the in-progress upload for key, or a NoSuchUpload error.
// The caller must hold m.mu.
func (m *MemoryBackend) upload(op, key, uploadID string, partNumber int32) (*memoryUpload, error) {
	up, ok := m.uploads[uploadID]
	if !ok || up.key != key {
		return nil, m.protocolError(op, key, "NoSuchUpload",
			"The specified multipart upload does not exist. The upload ID may be invalid, "+
				"or the upload may have been aborted or completed.")
	}
	if partNumber != 0 && (partNumber < 1 || partNumber > m.caps.MaxPartNumber) {
		return nil, m.protocolError(op, key, "InvalidArgument",
			"Part number must be an integer between 1 and "+strconv.Itoa(int(m.caps.MaxPartNumber)))
	}
	return up, nil
}

// UploadPart stores a part and returns its MD5 ETag.
func (m *MemoryBackend) UploadPart(
	_ context.Context,
	key, uploadID string,
	partNumber int32,
	r io.Reader,
	size int64,
) (string, error) {
	data, readErr := io.ReadAll(r)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UploadPart"); err != nil {
		return "", err
	}
	up, err := m.upload("uploadPart", key, uploadID, partNumber)
	if err != nil {
		return "", err
	}
	if readErr != nil {
		return "", errors.NewObjectError("uploadPart", m.bucket, key, errors.Mark(errors.ErrTransport, readErr))
	}
	if int64(len(data)) != size {
		return "", m.protocolError("uploadPart", key, "IncompleteBody",
			fmt.Sprintf("declared %d bytes, received %d", size, len(data)))
	}
	part := memoryPart{data: data, etag: etagOf(data)}
	up.parts[partNumber] = part
	return part.etag, nil
}

// UploadPartCopy copies the first size bytes of srcKey into a part.
func (m *MemoryBackend) UploadPartCopy(
	_ context.Context,
	key, uploadID string,
	partNumber int32,
	srcKey string,
	size int64,
) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UploadPartCopy"); err != nil {
		return "", err
	}
	up, err := m.upload("uploadPartCopy", key, uploadID, partNumber)
	if err != nil {
		return "", err
	}
	src, ok := m.objects[srcKey]
	if !ok {
		return "", m.notFoundError("uploadPartCopy", srcKey)
	}
	if size > int64(len(src.Data)) {
		return "", m.protocolError("uploadPartCopy", key, "InvalidRange", "The requested range is not satisfiable")
	}
	data := bytes.Clone(src.Data[:size])
	part := memoryPart{data: data, etag: etagOf(data)}
	up.parts[partNumber] = part
	return part.etag, nil
}

// CompleteMultipartUpload validates the part list and stores the assembled object.
func (m *MemoryBackend) CompleteMultipartUpload(
	_ context.Context,
	key, uploadID string,
	parts []storetypes.Part,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CompleteMultipartUpload"); err != nil {
		return err
	}
	up, err := m.upload("completeMultipartUpload", key, uploadID, 0)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return m.protocolError("completeMultipartUpload", key, "MalformedXML",
			"The XML you provided was not well-formed")
	}

	var assembled bytes.Buffer
	for i, p := range parts {
		if i > 0 && p.PartNumber <= parts[i-1].PartNumber {
			return m.protocolError("completeMultipartUpload", key, "InvalidPartOrder",
				"The list of parts was not in ascending order")
		}
		stored, ok := up.parts[p.PartNumber]
		if !ok || stored.etag != p.ETag {
			return m.protocolError("completeMultipartUpload", key, "InvalidPart",
				fmt.Sprintf("part %d could not be found or its ETag did not match", p.PartNumber))
		}
		if i < len(parts)-1 && int64(len(stored.data)) < storetypes.MinMultipartSize {
			return m.protocolError("completeMultipartUpload", key, "EntityTooSmall",
				"Your proposed upload is smaller than the minimum allowed object size")
		}
		assembled.Write(stored.data)
	}

	m.objects[key] = newStoredObject(assembled.Bytes(), storetypes.PutOptions{})
	delete(m.uploads, uploadID)
	return nil
}

// AbortMultipartUpload discards an upload. Aborting an unknown, aborted or
// completed upload fails with NoSuchUpload.
func (m *MemoryBackend) AbortMultipartUpload(_ context.Context, key, uploadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AbortMultipartUpload"); err != nil {
		return err
	}
	if _, err := m.upload("abortMultipartUpload", key, uploadID, 0); err != nil {
		return err
	}
	delete(m.uploads, uploadID)
	return nil
}

// Presign returns a deterministic fake URL carrying the request parameters.
func (m *MemoryBackend) Presign(_ context.Context, req backend.PresignRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Presign"); err != nil {
		return "", err
	}
	query := req.Query()
	if query == nil {
		query = url.Values{}
	}
	query.Set("X-Amz-Expires", strconv.Itoa(int(req.Expiry/time.Second)))
	query.Set("X-Method", string(req.Method))

	u := url.URL{
		Scheme:   "https",
		Host:     m.bucket + ".memory.local",
		Path:     "/" + req.Key,
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

func newStoredObject(data []byte, opts storetypes.PutOptions) StoredObject {
	return StoredObject{
		Data:               bytes.Clone(data),
		ETag:               etagOf(data),
		ContentType:        opts.ContentType,
		ContentDisposition: opts.ContentDisposition,
		LastModified:       time.Now(),
	}
}

func etagOf(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
