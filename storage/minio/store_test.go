package minio

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hupe1980/feeddown/storage"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	assert.Equal(t, storage.ErrNotFound, mapError(minio.ErrorResponse{Code: "NoSuchKey"}))
	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/zstd", contentType("b1.json.zst"))
	assert.Equal(t, "application/x-lz4", contentType("b1.json.lz4"))
	assert.Equal(t, "application/json", contentType("b1.json"))
	assert.Equal(t, "application/octet-stream", contentType("b1"))
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	bucket := "test-feeddown"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, fmt.Sprintf("run-%d/", time.Now().UnixNano()))

	data := []byte(`{"metadata":{}}`)
	require.NoError(t, store.Put(ctx, "f1200/b1.json", data))

	got, err := store.Get(ctx, "f1200/b1.json")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "f1200/")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1200/b1.json"}, names)

	require.NoError(t, store.Delete(ctx, "f1200/b1.json"))
	_, err = store.Get(ctx, "f1200/b1.json")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
