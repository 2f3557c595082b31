package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Endpoint describes a running S3-compatible server.
type Endpoint struct {
	URL       string
	Region    string
	AccessKey string
	SecretKey string
}

// StartLocalStack starts a LocalStack container with S3 enabled and
// terminates it when the test ends.
func StartLocalStack(ctx context.Context, t *testing.T) Endpoint {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container, err := localstack.Run(ctx,
		"localstack/localstack:latest",
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566").
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start LocalStack container: %v", err)
	}
	terminateOnCleanup(t, container)

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return Endpoint{
		URL:       fmt.Sprintf("http://%s:%s", host, port.Port()),
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
	}
}

// StartMinio starts a MinIO container and terminates it when the test ends.
func StartMinio(ctx context.Context, t *testing.T) Endpoint {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container, err := tcminio.Run(ctx,
		"minio/minio:RELEASE.2024-01-16T16-07-38Z",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	if err != nil {
		t.Fatalf("Failed to start MinIO container: %v", err)
	}
	terminateOnCleanup(t, container)

	address, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get MinIO address: %v", err)
	}

	return Endpoint{
		URL:       "http://" + address,
		Region:    "us-east-1",
		AccessKey: container.Username,
		SecretKey: container.Password,
	}
}

func terminateOnCleanup(t *testing.T, container testcontainers.Container) {
	t.Helper()
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})
}
