package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3RecipeState implements RecipeState backed by S3

type S3RecipeState struct {
	bucket string
	key    string
	s3     s3API
}

func NewS3RecipeState(s3Client s3API, bucket, key string) *S3RecipeState {
	return &S3RecipeState{
		bucket: bucket,
		key:    key,
		s3:     s3Client,
	}
}

func (s *S3RecipeState) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe object from S3: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// S3ListSink implements ListSink by writing each saved list to bucket/prefix/name.

type S3ListSink struct {
	bucket string
	prefix string
	s3     s3API
}

func NewS3ListSink(s3Client s3API, bucket, prefix string) *S3ListSink {
	return &S3ListSink{
		bucket: bucket,
		prefix: prefix,
		s3:     s3Client,
	}
}

func (s *S3ListSink) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path.Join(s.prefix, name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to put grocery list object to S3: %w", err)
	}
	return nil
}
