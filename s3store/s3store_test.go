/* Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gregjones/httpcache/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memS3 is an in-memory stand-in for the bucket.
type memS3 struct {
	mu        sync.Mutex
	bucket    string
	objects   map[string][]byte
	encodings map[string]string
}

func newMemS3(bucket string) *memS3 {
	return &memS3{
		bucket:    bucket,
		objects:   make(map[string][]byte),
		encodings: make(map[string]string),
	}
}

func (m *memS3) GetObject(ctx context.Context, in *s3.GetObjectInput,
	optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey",
			Message: "The specified key does not exist."}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *memS3) PutObject(ctx context.Context, in *s3.PutObjectInput,
	optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[aws.ToString(in.Key)] = data
	m.encodings[aws.ToString(in.Key)] = aws.ToString(in.ContentEncoding)
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput,
	optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput,
	optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {

	if aws.ToString(in.Bucket) != m.bucket {
		return nil, &smithy.GenericAPIError{Code: "NotFound"}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (m *memS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {

	return &s3.ListObjectsV2Output{}, nil
}

func newTestStore(t *testing.T, gzip bool) (*Store, *memS3) {
	t.Helper()
	api := newMemS3("sim-bucket")
	store := New(context.Background(), "sim-bucket", "pairingsim", gzip, nil)
	store.Client = api
	require.NoError(t, store.Init())
	return store, api
}

func TestStoreCache(t *testing.T) {
	store, _ := newTestStore(t, false)
	test.Cache(t, store)
}

func TestStoreCacheWithGzip(t *testing.T) {
	store, api := newTestStore(t, true)
	test.Cache(t, store)

	store.Set("https://example.org/roster", []byte("roster body"))
	for key, enc := range api.encodings {
		assert.True(t, strings.HasSuffix(key, ".gz"), key)
		assert.Equal(t, "gzip", enc)
	}
}

func TestInitMissingBucket(t *testing.T) {
	store := New(context.Background(), "other-bucket", "pairingsim", false, nil)
	store.Client = newMemS3("sim-bucket")
	assert.Error(t, store.Init())
}

func TestCacheKeys(t *testing.T) {
	store, _ := newTestStore(t, false)
	k1 := store.cacheKeyToObjectKey("https://example.org/a")
	k2 := store.cacheKeyToObjectKey("https://example.org/b")
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "pairingsim/webcache/"), k1)
	assert.Len(t, strings.TrimPrefix(k1, "pairingsim/webcache/"), 32)
}

func TestArchive(t *testing.T) {
	tests := []struct {
		name    string
		gzip    bool
		wantKey string
	}{
		{"plain", false, "pairingsim/runs/run-1/round1.fast.trfx"},
		{"gzip", true, "pairingsim/runs/run-1/round1.fast.trfx.gz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, api := newTestStore(t, tc.gzip)
			store.RunID = "run-1"
			ctx := context.Background()
			body := []byte("012 pairingsim\nXXR 3\n")

			require.NoError(t, store.Archive(ctx, "round1.fast.trfx", body))
			stored, ok := api.objects[tc.wantKey]
			require.True(t, ok, "objects: %v", api.objects)
			if tc.gzip {
				gr, err := gzip.NewReader(bytes.NewReader(stored))
				require.NoError(t, err)
				stored, err = io.ReadAll(gr)
				require.NoError(t, err)
			}
			assert.Equal(t, body, stored)
			assert.Len(t, api.objects, 1)
		})
	}
}

func TestArchiveDefaultRun(t *testing.T) {
	store, _ := newTestStore(t, false)
	assert.Equal(t, "pairingsim/runs/default/round1.dutch.txt",
		store.ArchiveKey("round1.dutch.txt"))
}

// TestS3Store runs against a real bucket when PAIRINGSIM_TEST_BUCKET names one.
func TestS3Store(t *testing.T) {
	bucket := os.Getenv("PAIRINGSIM_TEST_BUCKET")
	if bucket == "" {
		t.Skip("Skipping test; PAIRINGSIM_TEST_BUCKET not set")
	}
	store := New(context.Background(), bucket, "pairingsim-test", true, nil)
	if err := store.Init(); err != nil {
		t.Skip(fmt.Sprintf("Skipping test due to lack of access to %v: %v",
			bucket, err))
	}

	test.Cache(t, store)
}
