package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"billboardwatch/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const uploadPrefix = "billboard-reports"

// S3ImageStore uploads report photos to an S3 bucket and serves them through
// a public base URL. The object key doubles as the deletion handle.
type S3ImageStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3ImageStore(client *s3.Client, bucket, baseURL string) *S3ImageStore {
	return &S3ImageStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Upload stores the image and returns its public URL and deletion handle.
func (s *S3ImageStore) Upload(ctx context.Context, fileName, contentType string, body io.Reader) (string, string, error) {
	key := fmt.Sprintf("%s/%s%s", uploadPrefix, utils.NanoID(), path.Ext(fileName))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("put object %s: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), key, nil
}

// Delete removes a previously uploaded image by its handle.
func (s *S3ImageStore) Delete(ctx context.Context, handle string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", handle, err)
	}

	return nil
}
