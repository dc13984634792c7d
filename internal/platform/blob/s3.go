// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Store implements [ObjectStore] on any S3-compatible backend
// (AWS S3, Cloudflare R2, MinIO).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// S3Options holds the connection settings for an S3-compatible backend.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string

	// PublicURL is the base URL under which stored keys are retrievable.
	// Falls back to "<endpoint>/<bucket>" when empty.
	PublicURL string
}

// NewS3Store constructs an [S3Store] from explicit options.
func NewS3Store(context context.Context, options S3Options) (*S3Store, error) {
	if options.Bucket == "" {
		return nil, fmt.Errorf("blob: bucket must not be empty")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context,
		awsconfig.WithRegion(options.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			options.AccessKey,
			options.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("blob: failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
		}
		o.UsePathStyle = true
	})

	publicURL := options.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimSuffix(options.Endpoint, "/") + "/" + options.Bucket
	}

	return &S3Store{
		client:    client,
		bucket:    options.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Store uploads the object under the given key and returns its public address.
func (store *S3Store) Store(context context.Context, key string, contentType string, body io.Reader) (string, error) {
	_, err := store.client.PutObject(context, &s3.PutObjectInput{
		Bucket:      aws.String(store.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("blob: failed to store object %q: %w", key, err)
	}

	return store.publicURL + "/" + key, nil
}

// NewObjectKey builds a collision-free, date-partitioned storage key.
// The extension is accepted with or without its leading dot.
//
// # Example
//
//	NewObjectKey("users", "png") // "users/2026/8/31/<uuid>.png"
func NewObjectKey(prefix, extension string) string {
	extension = strings.TrimPrefix(extension, ".")
	if extension != "" {
		extension = "." + extension
	}

	now := time.Now()
	return fmt.Sprintf("%s/%d/%d/%d/%s%s", prefix, now.Year(), now.Month(), now.Day(), uuid.New(), extension)
}
