package objectstore

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/config"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

const tempDir = "/tmp/objectstore"

func newTestClient(t *testing.T, opts ...Option) (*Client, *testutil.MemoryBackend, *billy.FS) {
	t.Helper()
	mem := testutil.NewMemoryBackend("test-bucket")
	files := billy.NewInMemoryFS()
	opts = append([]Option{WithFilesystem(files), WithTempDir(tempDir)}, opts...)
	return NewWithBackend(mem, opts...), mem, files
}

func assertTempDirEmpty(t *testing.T, files fs.Filesystem) {
	t.Helper()
	names, err := testutil.DirNames(files, tempDir)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config", func(t *testing.T) {
		_, err := New(ctx, nil)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := New(ctx, &config.Config{})
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("minio backend logs without secrets", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		cfg := config.Default()
		cfg.Endpoint = "http://localhost:9000"
		cfg.Bucket = "test-bucket"
		cfg.AccessKey = "AKIDEXAMPLE"
		cfg.SecretKey = "very-secret"

		client, err := New(ctx, cfg, WithLogger(logger))
		require.NoError(t, err)
		assert.Equal(t, "test-bucket", client.Bucket())

		out := logs.String()
		assert.Contains(t, out, "object storage client created")
		assert.Contains(t, out, "sdk=minio")
		assert.Contains(t, out, "<set>")
		assert.NotContains(t, out, "very-secret")
		assert.NotContains(t, out, "AKIDEXAMPLE")
	})

	t.Run("aws backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.AWSSDK = true
		cfg.Bucket = "test-bucket"
		cfg.AccessKey = "AKIDEXAMPLE"
		cfg.SecretKey = "very-secret"

		client, err := New(ctx, cfg)
		require.NoError(t, err)

		u, err := client.PresignedURL(ctx, "d/f.csv", storetypes.MethodGet)
		require.NoError(t, err)
		assert.Contains(t, u, "d/f.csv")
		assert.Contains(t, u, "X-Amz-Expires=600")
	})
}

func TestClient_WriteReadListRemove(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)
	data := testutil.GenerateRandomData(1024)

	path, err := client.Write(ctx, "d/f.csv", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "d/f.csv", path)

	keys, err := client.List(ctx, "d/")
	require.NoError(t, err)
	assert.Equal(t, []string{"d/f.csv"}, keys)

	size, err := client.GetSize(ctx, "d/f.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)

	rc, err := client.Read(ctx, "d/f.csv")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	removed, err := client.Remove(ctx, "d/f.csv")
	require.NoError(t, err)
	assert.Equal(t, "d/f.csv", removed)

	_, err = client.Read(ctx, "d/f.csv")
	assert.True(t, errors.IsObjectNotFound(err))
	assert.Equal(t, errors.CodeNotFound, errors.Code(err))
}

func TestClient_Listing(t *testing.T) {
	ctx := context.Background()
	client, mem, _ := newTestClient(t)
	mem.PutObject("a/b/c.txt", []byte("c"))
	mem.PutObject("a/d.txt", []byte("d"))
	mem.PutObject("a/e.txt", []byte("e"))

	tests := []struct {
		name string
		list func() ([]string, error)
		want []string
	}{
		{
			name: "one level",
			list: func() ([]string, error) { return client.List(ctx, "a/") },
			want: []string{"a/b/", "a/d.txt", "a/e.txt"},
		},
		{
			name: "recursive",
			list: func() ([]string, error) { return client.ListRecursive(ctx, "a/") },
			want: []string{"a/b/c.txt", "a/d.txt", "a/e.txt"},
		},
		{
			name: "page",
			list: func() ([]string, error) { return client.ListPage(ctx, "a/", 1, "a/b/") },
			want: []string{"a/d.txt"},
		},
		{
			name: "root",
			list: func() ([]string, error) { return client.List(ctx, "") },
			want: []string{"a/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.list()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("negative page size", func(t *testing.T) {
		_, err := client.ListPage(ctx, "a/", -1, "")
		assert.True(t, errors.IsInvalidInput(err))
	})
}

func TestClient_InvalidPathsMakeNoCalls(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(c *Client) error
	}{
		{"write", func(c *Client) error {
			_, err := c.Write(ctx, "   ", strings.NewReader("x"))
			return err
		}},
		{"read", func(c *Client) error {
			_, err := c.Read(ctx, "")
			return err
		}},
		{"append", func(c *Client) error {
			_, err := c.Append(ctx, "../escape", strings.NewReader("x"))
			return err
		}},
		{"remove", func(c *Client) error {
			_, err := c.Remove(ctx, "bad\x00key")
			return err
		}},
		{"remove many", func(c *Client) error {
			_, err := c.RemoveMany(ctx, "ok", "")
			return err
		}},
		{"get size", func(c *Client) error {
			_, err := c.GetSize(ctx, "")
			return err
		}},
		{"presign", func(c *Client) error {
			_, err := c.PresignedURL(ctx, "", storetypes.MethodGet)
			return err
		}},
		{"initiate", func(c *Client) error {
			_, err := c.InitiateMultipartUpload(ctx, "")
			return err
		}},
		{"writer", func(c *Client) error {
			_, err := c.NewRemoteStorageWriter(ctx, "", 0)
			return err
		}},
		{"nil reader", func(c *Client) error {
			_, err := c.Write(ctx, "k", nil)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mem, _ := newTestClient(t)
			err := tt.call(client)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err))
			assert.Empty(t, mem.Calls())
		})
	}
}

func TestClient_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("creates then concatenates", func(t *testing.T) {
		client, mem, _ := newTestClient(t)

		_, err := client.Append(ctx, "logs/app.log", strings.NewReader("one\n"))
		require.NoError(t, err)
		_, err = client.Append(ctx, "logs/app.log", strings.NewReader("two\n"))
		require.NoError(t, err)

		obj, ok := mem.Object("logs/app.log")
		require.True(t, ok)
		assert.Equal(t, "one\ntwo\n", string(obj.Data))
	})

	t.Run("composes large objects", func(t *testing.T) {
		client, mem, files := newTestClient(t)
		original := testutil.GenerateRandomData(6*1024*1024 + 1)
		_, err := client.WriteWithSize(ctx, "big.bin", bytes.NewReader(original), int64(len(original)))
		require.NoError(t, err)

		_, err = client.Append(ctx, "big.bin", strings.NewReader("tail"))
		require.NoError(t, err)

		size, err := client.GetSize(ctx, "big.bin")
		require.NoError(t, err)
		assert.Equal(t, int64(len(original)+4), size)
		assert.True(t, mem.Called("UploadPartCopy"))
		assert.Zero(t, mem.PendingUploads())
		assertTempDirEmpty(t, files)
	})
}

func TestClient_MultipartLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("upload local parts and complete", func(t *testing.T) {
		client, mem, files := newTestClient(t)
		first := testutil.GenerateRandomData(int(storetypes.MinMultipartSize))
		require.NoError(t, files.WriteFile("/data/part1", first, 0o644))
		require.NoError(t, files.WriteFile("/data/part2", []byte("last"), 0o644))

		id, err := client.InitiateMultipartUpload(ctx, "big.bin")
		require.NoError(t, err)

		e1, err := client.UploadMultipartPart(ctx, "big.bin", id, 1, "/data/part1")
		require.NoError(t, err)
		e2, err := client.UploadMultipartPart(ctx, "big.bin", id, 2, "/data/part2")
		require.NoError(t, err)

		path, err := client.CompleteMultipartUpload(ctx, "big.bin", id, []string{e1, e2})
		require.NoError(t, err)
		assert.Equal(t, "big.bin", path)

		obj, ok := mem.Object("big.bin")
		require.True(t, ok)
		assert.Len(t, obj.Data, len(first)+4)
	})

	t.Run("aborted upload rejects parts and completion", func(t *testing.T) {
		client, _, files := newTestClient(t)
		require.NoError(t, files.WriteFile("/data/part", []byte("x"), 0o644))

		id, err := client.InitiateMultipartUpload(ctx, "k")
		require.NoError(t, err)
		require.NoError(t, client.AbortMultipartUpload(ctx, "k", id))

		_, err = client.UploadMultipartPart(ctx, "k", id, 1, "/data/part")
		assert.True(t, errors.IsProtocol(err))

		_, err = client.CompleteMultipartUpload(ctx, "k", id, []string{`"x"`})
		assert.True(t, errors.IsProtocol(err))
	})

	t.Run("empty etag list fails locally", func(t *testing.T) {
		client, mem, _ := newTestClient(t)

		_, err := client.CompleteMultipartUpload(ctx, "k", "id", []string{})
		assert.True(t, errors.IsInvalidInput(err))
		assert.Empty(t, mem.Calls())
	})

	t.Run("missing local file", func(t *testing.T) {
		client, _, _ := newTestClient(t)

		_, err := client.UploadMultipartPart(ctx, "k", "id", 1, "/does/not/exist")
		assert.True(t, errors.IsLocalResource(err))
	})

	t.Run("presigned part url", func(t *testing.T) {
		client, _, _ := newTestClient(t)

		raw, err := client.PresignedMultipartUploadURL(ctx, "big.bin", "upload-1", 2)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "2", u.Query().Get("partNumber"))
		assert.Equal(t, "upload-1", u.Query().Get("uploadId"))
	})
}

func TestClient_Upload(t *testing.T) {
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	tests := []struct {
		name     string
		filename string
		content  []byte
		wantType string
	}{
		{name: "png", filename: "/src/image", content: png, wantType: "image/png"},
		{name: "text", filename: "/src/notes", content: []byte("plain notes"), wantType: "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mem, files := newTestClient(t)
			require.NoError(t, files.WriteFile(tt.filename, tt.content, 0o644))

			path, err := client.Upload(ctx, "uploads/file", tt.filename)
			require.NoError(t, err)
			assert.Equal(t, "uploads/file", path)

			obj, ok := mem.Object("uploads/file")
			require.True(t, ok)
			assert.Equal(t, tt.content, obj.Data)
			assert.Equal(t, tt.wantType, obj.ContentType)
		})
	}

	t.Run("directory", func(t *testing.T) {
		client, _, files := newTestClient(t)
		require.NoError(t, files.MkdirAll("/src/dir", 0o755))

		_, err := client.Upload(ctx, "uploads/file", "/src/dir")
		assert.True(t, errors.IsInvalidInput(err))
	})
}

func TestClient_WriteWithOptions(t *testing.T) {
	client, mem, _ := newTestClient(t)

	_, err := client.WriteWithOptions(context.Background(), "report.csv", strings.NewReader("a,b"), 3,
		storetypes.PutOptions{ContentType: "text/csv", ContentDisposition: `attachment; filename="report.csv"`})
	require.NoError(t, err)

	obj, _ := mem.Object("report.csv")
	assert.Equal(t, "text/csv", obj.ContentType)
	assert.Equal(t, `attachment; filename="report.csv"`, obj.ContentDisposition)
}

func TestClient_RemoveMany(t *testing.T) {
	client, mem, _ := newTestClient(t)
	mem.PutObject("a", []byte("a"))
	mem.PutObject("b", []byte("b"))

	removed, err := client.RemoveMany(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, removed)

	_, ok := mem.Object("a")
	assert.False(t, ok)

	removed, err = client.RemoveMany(context.Background())
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestClient_Presign(t *testing.T) {
	ctx := context.Background()

	t.Run("default ttl", func(t *testing.T) {
		client, _, _ := newTestClient(t)
		raw, err := client.PresignedURL(ctx, "d/f.csv", storetypes.MethodPut)
		require.NoError(t, err)
		assert.Contains(t, raw, "X-Amz-Expires=600")
	})

	t.Run("configured ttl", func(t *testing.T) {
		client, _, _ := newTestClient(t, WithPresignTTL(time.Hour))
		raw, err := client.PresignedURL(ctx, "d/f.csv", storetypes.MethodGet)
		require.NoError(t, err)
		assert.Contains(t, raw, "X-Amz-Expires=3600")
	})

	t.Run("explicit expiry", func(t *testing.T) {
		client, _, _ := newTestClient(t)
		raw, err := client.PresignedURLWithExpiry(ctx, "d/f.csv", storetypes.MethodGet, 30*time.Second)
		require.NoError(t, err)
		assert.Contains(t, raw, "X-Amz-Expires=30")
	})
}

func TestClient_CreateBucketIfNotExists(t *testing.T) {
	client, mem, _ := newTestClient(t)
	mem.SetBucketExists(false)

	require.NoError(t, client.CreateBucketIfNotExists(context.Background()))
	assert.True(t, mem.BucketExists())
}
