package appender

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/staging"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

const stageDir = "/stage"

func newAppender(files fs.Filesystem) (*Appender, *testutil.MemoryBackend) {
	mem := testutil.NewMemoryBackend("bucket")
	return New(mem, staging.New(files, stageDir), nil), mem
}

func assertNoStagedFiles(t *testing.T, files fs.Filesystem) {
	t.Helper()
	names, err := testutil.DirNames(files, stageDir)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestAppender_CreatesMissingObject(t *testing.T) {
	a, mem := newAppender(billy.NewInMemoryFS())

	path, err := a.Append(context.Background(), "logs/app.log", strings.NewReader("first"))

	require.NoError(t, err)
	assert.Equal(t, "logs/app.log", path)
	obj, ok := mem.Object("logs/app.log")
	require.True(t, ok)
	assert.Equal(t, "first", string(obj.Data))
	assert.False(t, mem.Called("Stat"))
}

func TestAppender_ConcatenatesSmallObject(t *testing.T) {
	a, mem := newAppender(billy.NewInMemoryFS())
	mem.PutObject("logs/app.log", []byte("hello "))

	_, err := a.Append(context.Background(), "logs/app.log", strings.NewReader("world"))

	require.NoError(t, err)
	obj, _ := mem.Object("logs/app.log")
	assert.Equal(t, "hello world", string(obj.Data))
	assert.False(t, mem.Called("CreateMultipartUpload"))
}

func TestAppender_ThresholdIsInclusive(t *testing.T) {
	a, mem := newAppender(billy.NewInMemoryFS())
	mem.PutObject("k", make([]byte, storetypes.MinMultipartSize))

	_, err := a.Append(context.Background(), "k", strings.NewReader("x"))

	require.NoError(t, err)
	assert.False(t, mem.Called("CreateMultipartUpload"))
	obj, _ := mem.Object("k")
	assert.Len(t, obj.Data, int(storetypes.MinMultipartSize)+1)
}

func TestAppender_ComposesLargeObject(t *testing.T) {
	files := billy.NewInMemoryFS()
	a, mem := newAppender(files)
	original := testutil.GenerateRandomData(6*1024*1024 + 1)
	mem.PutObject("big.bin", original)

	_, err := a.Append(context.Background(), "big.bin", strings.NewReader("tail"))

	require.NoError(t, err)
	obj, _ := mem.Object("big.bin")
	assert.True(t, bytes.Equal(append(bytes.Clone(original), "tail"...), obj.Data))
	assert.Equal(t, []string{
		"List", "Stat", "CreateMultipartUpload", "UploadPartCopy", "UploadPart", "CompleteMultipartUpload",
	}, mem.Calls())
	assert.Zero(t, mem.PendingUploads())
	assertNoStagedFiles(t, files)
}

func TestAppender_ComposeFailureAborts(t *testing.T) {
	injected := io.ErrUnexpectedEOF

	tests := []struct {
		name     string
		failOn   []string
		files    fs.Filesystem
		wantCode errors.ErrorCode
	}{
		{name: "part copy fails", failOn: []string{"UploadPartCopy"}, files: billy.NewInMemoryFS()},
		{name: "part upload fails", failOn: []string{"UploadPart"}, files: billy.NewInMemoryFS()},
		{name: "complete fails", failOn: []string{"CompleteMultipartUpload"}, files: billy.NewInMemoryFS()},
		{name: "abort error is discarded", failOn: []string{"UploadPart", "AbortMultipartUpload"}, files: billy.NewInMemoryFS()},
		{
			name:     "temp file removal fails",
			files:    testutil.NewNoRemoveFS(),
			wantCode: errors.CodeLocalResource,
		},
		{
			name:     "staging fails",
			files:    testutil.NewReadOnlyFS(),
			wantCode: errors.CodeLocalResource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, mem := newAppender(tt.files)
			original := testutil.GenerateRandomData(int(storetypes.MinMultipartSize) + 1)
			mem.PutObject("big.bin", original)
			for _, op := range tt.failOn {
				mem.FailOn(op, injected)
			}

			_, err := a.Append(context.Background(), "big.bin", strings.NewReader("tail"))

			require.Error(t, err)
			var storeErr *errors.Error
			require.True(t, errors.As(err, &storeErr))
			assert.Equal(t, "append", storeErr.Op)
			assert.Equal(t, "big.bin", storeErr.Key)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errors.Code(err))
			} else {
				assert.ErrorIs(t, err, injected)
			}

			assert.True(t, mem.Called("AbortMultipartUpload"))
			if len(tt.failOn) < 2 {
				assert.Zero(t, mem.PendingUploads())
			}
			obj, _ := mem.Object("big.bin")
			assert.True(t, bytes.Equal(original, obj.Data))
		})
	}
}

func TestAppender_CreateMultipartFailureSkipsAbort(t *testing.T) {
	a, mem := newAppender(billy.NewInMemoryFS())
	mem.PutObject("big.bin", make([]byte, storetypes.MinMultipartSize+1))
	mem.FailOn("CreateMultipartUpload", io.ErrUnexpectedEOF)

	_, err := a.Append(context.Background(), "big.bin", strings.NewReader("tail"))

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, mem.Called("AbortMultipartUpload"))
}

func TestAppender_PrefixWithoutObjectCreates(t *testing.T) {
	a, mem := newAppender(billy.NewInMemoryFS())
	mem.PutObject("logs/app.log.1", []byte("rotated"))

	_, err := a.Append(context.Background(), "logs/app.log", strings.NewReader("new"))

	require.NoError(t, err)
	obj, ok := mem.Object("logs/app.log")
	require.True(t, ok)
	assert.Equal(t, "new", string(obj.Data))
}

func TestAppender_ListFailure(t *testing.T) {
	a, mem := newAppender(billy.NewInMemoryFS())
	mem.FailOn("List", io.ErrClosedPipe)

	_, err := a.Append(context.Background(), "k", strings.NewReader("x"))

	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.False(t, mem.Called("Put"))
}

// abortRecorder captures the context state seen by AbortMultipartUpload.
type abortRecorder struct {
	*testutil.MemoryBackend
	abortCtxErr error
}

func (r *abortRecorder) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	r.abortCtxErr = ctx.Err()
	return r.MemoryBackend.AbortMultipartUpload(ctx, key, uploadID)
}

func TestAppender_AbortSurvivesCancellation(t *testing.T) {
	mem := testutil.NewMemoryBackend("bucket")
	mem.PutObject("big.bin", make([]byte, storetypes.MinMultipartSize+1))
	mem.FailOn("UploadPart", context.Canceled)
	rec := &abortRecorder{MemoryBackend: mem}
	a := New(rec, staging.New(billy.NewInMemoryFS(), stageDir), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Append(ctx, "big.bin", strings.NewReader("tail"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, mem.Called("AbortMultipartUpload"))
	assert.NoError(t, rec.abortCtxErr)
	assert.Zero(t, mem.PendingUploads())
}
