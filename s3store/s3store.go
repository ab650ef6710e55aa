/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package s3store keeps pairingsim's remote state in Amazon S3: an
 * implementation of httpcache.Cache for fetched rosters, and an archive of
 * the exchange files each engine invocation produced. The cache half is
 * based on github.com/sourcegraph/s3cache, updated for aws-sdk-go-v2.
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// API is the subset of *s3.Client the store uses.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput,
		optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput,
		optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput,
		optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

const (
	cachePrefix   = "webcache"
	archivePrefix = "runs"
)

type Store struct {
	// Config is the Amazon S3 configuration.
	Config aws.Config

	// Client is initialized in Init() from the default Config unless the
	// caller has already set one.
	Client API

	// RunID groups the archived files of one invocation.
	RunID string

	bucketName string
	prefix     string

	// gzip indicates whether objects should be gzipped on write and
	// gunzipped on read. If true, object keys get a ".gz" suffix.
	gzip bool

	logger *zap.Logger

	// used by the httpcache.Cache methods, which carry no context
	ctx context.Context
}

// New returns a Store keeping objects under prefix in bucketName. Callers
// must invoke Init() on the returned Store before use.
func New(ctx context.Context, bucketName string, prefix string, gzip bool,
	logger *zap.Logger) *Store {

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		ctx:        ctx,
		bucketName: bucketName,
		prefix:     prefix,
		gzip:       gzip,
		logger:     logger,
	}
}

func (s *Store) Bucket() string {
	return s.bucketName
}

// Init loads the default AWS configuration and verifies the bucket can be
// listed. The default configuration sources are:
// * Environment Variables (e.g. AWS_ACCESS_KEY_ID and AWS_SECRET_KEY)
// * Shared Configuration and Shared Credentials files.
func (s *Store) Init() error {
	if s.Client == nil {
		var err error
		s.Config, err = config.LoadDefaultConfig(s.ctx)
		if err != nil {
			return fmt.Errorf("s3store.init: failed to load AWS config: %w", err)
		}
		s.Client = s3.NewFromConfig(s.Config)
	}

	if _, err := s.Client.HeadBucket(s.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	}); err != nil {
		return fmt.Errorf("s3store.init: head bucket failed for %s: %w",
			s.bucketName, err)
	}
	if _, err := s.Client.ListObjectsV2(s.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucketName),
		Prefix:  aws.String(s.prefix),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3store.init: list objects failed for %s: %w",
			s.bucketName, err)
	}

	return nil
}

func (s *Store) Get(key string) ([]byte, bool) {
	objKey := s.cacheKeyToObjectKey(key)
	data, err := s.get(s.ctx, objKey)
	if err != nil {
		var apiErr smithy.APIError
		// no such key just indicates a cache miss
		if !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
			s.logger.Warn("s3store.get: failed to get object",
				zap.String("bucket", s.bucketName),
				zap.String("key", objKey),
				zap.Error(err))
		}
		return []byte{}, false
	}

	return data, true
}

// Set stores the provided data in the cache under the given key.
func (s *Store) Set(key string, data []byte) {
	objKey := s.cacheKeyToObjectKey(key)
	if err := s.put(s.ctx, objKey, data); err != nil {
		s.logger.Warn("s3store.set: put failed",
			zap.String("bucket", s.bucketName),
			zap.String("key", objKey),
			zap.Error(err))
	}
}

func (s *Store) Delete(key string) {
	objKey := s.cacheKeyToObjectKey(key)
	_, err := s.Client.DeleteObject(s.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objKey),
	})
	if err != nil {
		s.logger.Warn("s3store.delete: delete failed",
			zap.String("key", objKey),
			zap.Error(err))
	}
}

// Archive uploads one exchange file under <prefix>/runs/<run id>/<name>.
func (s *Store) Archive(ctx context.Context, name string, data []byte) error {
	objKey := s.ArchiveKey(name)
	if err := s.put(ctx, objKey, data); err != nil {
		return fmt.Errorf("s3store.archive: %v: %w", objKey, err)
	}
	s.logger.Debug("s3store.archive: uploaded",
		zap.String("bucket", s.bucketName),
		zap.String("key", objKey),
		zap.Int("bytes", len(data)))
	return nil
}

func (s *Store) ArchiveKey(name string) string {
	runID := s.RunID
	if runID == "" {
		runID = "default"
	}
	return s.withSuffix(path.Join(s.prefix, archivePrefix, runID, name))
}

func (s *Store) cacheKeyToObjectKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	return s.withSuffix(path.Join(s.prefix, cachePrefix,
		hex.EncodeToString(h.Sum(nil))))
}

func (s *Store) withSuffix(objKey string) string {
	if s.gzip {
		objKey += ".gz"
	}
	return objKey
}

func (s *Store) get(ctx context.Context, objKey string) ([]byte, error) {
	resp, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objKey),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rdr := io.Reader(resp.Body)
	if s.gzip {
		gr, err := gzip.NewReader(rdr)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed object: %w", err)
		}
		defer gr.Close()
		rdr = gr
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return data, nil
}

func (s *Store) put(ctx context.Context, objKey string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objKey),
		Body:   bytes.NewReader(data),
	}

	if s.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("failed to gzip data: %w", err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer: %w", err)
		}
		input.Body = bytes.NewReader(buf.Bytes())
		input.ContentEncoding = aws.String("gzip")
	}

	_, err := s.Client.PutObject(ctx, input)
	return err
}
