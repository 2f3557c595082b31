package testutil

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockS3Client_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &MockS3Client{}

	created, err := m.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{Key: aws.String("k")})
	require.NoError(t, err)
	assert.Equal(t, MockUploadID, aws.ToString(created.UploadId))

	deleted, err := m.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Delete: &types.Delete{Objects: []types.ObjectIdentifier{{Key: aws.String("a")}, {Key: aws.String("b")}}},
	})
	require.NoError(t, err)
	assert.Len(t, deleted.Deleted, 2)

	got, err := m.GetObject(ctx, &s3.GetObjectInput{Key: aws.String("k")})
	require.NoError(t, err)
	assert.NoError(t, got.Body.Close())

	assert.Equal(t, []string{"CreateMultipartUpload", "DeleteObjects", "GetObject"}, m.Calls())
}

func TestMockS3Client_FuncOverrides(t *testing.T) {
	m := &MockS3Client{
		HeadObjectFunc: func(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return nil, &types.NotFound{}
		},
	}

	_, err := m.HeadObject(context.Background(), &s3.HeadObjectInput{Key: aws.String("k")})

	var notFound *types.NotFound
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"HeadObject"}, m.Calls())
}

func TestListResult(t *testing.T) {
	var keys []string
	for info := range ListResult(minio.ObjectInfo{Key: "a"}, minio.ObjectInfo{Key: "b"}) {
		keys = append(keys, info.Key)
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}
