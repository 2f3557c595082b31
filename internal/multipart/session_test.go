package multipart

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/presign"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

func newSession() (*Session, *testutil.MemoryBackend) {
	mem := testutil.NewMemoryBackend("bucket")
	return New(mem, presign.New(mem, 0), nil), mem
}

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, mem := newSession()

	first := testutil.GenerateRandomData(int(storetypes.MinMultipartSize))

	id, err := s.Initiate(ctx, "big.bin")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	e1, err := s.UploadPart(ctx, "big.bin", id, 1, bytes.NewReader(first), int64(len(first)))
	require.NoError(t, err)
	e2, err := s.UploadPart(ctx, "big.bin", id, 2, strings.NewReader("end"), 3)
	require.NoError(t, err)

	path, err := s.Complete(ctx, "big.bin", id, []string{e1, e2})
	require.NoError(t, err)
	assert.Equal(t, "big.bin", path)

	obj, ok := mem.Object("big.bin")
	require.True(t, ok)
	assert.Len(t, obj.Data, len(first)+3)
	assert.Equal(t, "end", string(obj.Data[len(first):]))
}

func TestSession_CompleteEmptyFailsLocally(t *testing.T) {
	s, mem := newSession()

	_, err := s.Complete(context.Background(), "big.bin", "some-id", nil)

	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.False(t, mem.Called("CompleteMultipartUpload"))
}

func TestSession_CompleteIsTerminal(t *testing.T) {
	ctx := context.Background()
	s, mem := newSession()

	id, err := s.Initiate(ctx, "k")
	require.NoError(t, err)
	etag, err := s.UploadPart(ctx, "k", id, 1, strings.NewReader("only"), 4)
	require.NoError(t, err)
	_, err = s.Complete(ctx, "k", id, []string{etag})
	require.NoError(t, err)

	_, err = s.Complete(ctx, "k", id, []string{etag})
	assert.True(t, errors.IsProtocol(err))
	assert.Equal(t, errors.CodeProtocol, errors.Code(err))

	_, err = s.UploadPart(ctx, "k", id, 2, strings.NewReader("more"), 4)
	assert.True(t, errors.IsProtocol(err))

	obj, ok := mem.Object("k")
	require.True(t, ok)
	assert.Equal(t, "only", string(obj.Data))
}

func TestSession_AbortIsTerminal(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession()

	id, err := s.Initiate(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, s.Abort(ctx, "k", id))

	_, err = s.UploadPart(ctx, "k", id, 1, strings.NewReader("x"), 1)
	assert.True(t, errors.IsProtocol(err))

	_, err = s.Complete(ctx, "k", id, []string{`"etag"`})
	assert.True(t, errors.IsProtocol(err))

	// a second abort is not normalized
	err = s.Abort(ctx, "k", id)
	assert.True(t, errors.IsProtocol(err))
}

func TestSession_PresignPartMakesNoRemoteCall(t *testing.T) {
	s, mem := newSession()

	u, err := s.PresignPart(context.Background(), "big.bin", "not-a-real-upload", 7)

	require.NoError(t, err)
	assert.Contains(t, u, "partNumber=7")
	assert.Contains(t, u, "uploadId=not-a-real-upload")
	assert.Equal(t, []string{"Presign"}, mem.Calls())
}

func TestSession_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(s *Session) error
	}{
		{"initiate blank path", func(s *Session) error {
			_, err := s.Initiate(ctx, " ")
			return err
		}},
		{"upload part zero", func(s *Session) error {
			_, err := s.UploadPart(ctx, "k", "id", 0, strings.NewReader("x"), 1)
			return err
		}},
		{"upload part unknown size", func(s *Session) error {
			_, err := s.UploadPart(ctx, "k", "id", 1, strings.NewReader("x"), -1)
			return err
		}},
		{"abort empty upload id", func(s *Session) error {
			return s.Abort(ctx, "k", "")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mem := newSession()
			err := tt.call(s)
			assert.True(t, errors.IsInvalidInput(err))
			assert.Empty(t, mem.Calls())
		})
	}
}

func TestParts(t *testing.T) {
	assert.Equal(t, []storetypes.Part{
		{PartNumber: 1, ETag: "a"},
		{PartNumber: 2, ETag: "b"},
	}, Parts([]string{"a", "b"}))
}
