// Package storage issues time-boxed presigned URLs against an S3-compatible
// object store and deletes stored objects. The rest of the server never
// speaks the storage protocol beyond these URLs.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/skydrive/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// Presigner issues presigned PUT/GET URLs and deletes objects.
type Presigner struct {
	config *sc.Config
}

func NewPresigner(config *sc.Config) *Presigner {
	return &Presigner{config: config}
}

// ObjectKey derives the storage key for a record deterministically from its
// identity, matching the key used when the upload URL was issued.
func ObjectKey(ownerID, fileID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", ownerID, fileID, fileName)
}

func (p *Presigner) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3AccessKey,
			p.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
	})

	return client, nil
}

func (p *Presigner) expiry() time.Duration {
	if p.config.PresignExpiry > 0 {
		return p.config.PresignExpiry
	}
	return 1 * time.Hour
}

// PresignPut returns a time-boxed URL for a raw byte PUT of the object at key.
func (p *Presigner) PresignPut(ctx context.Context, key string) (string, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.config.S3Bucket

	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.expiry()))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// PresignGet returns a time-boxed URL for a raw byte GET of the object at key.
func (p *Presigner) PresignGet(ctx context.Context, key string) (string, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.config.S3Bucket

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.expiry()))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// DeleteObject removes the stored bytes for key. Metadata tombstoning is the
// caller's responsibility.
func (p *Presigner) DeleteObject(ctx context.Context, key string) error {
	client, err := p.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := p.config.S3Bucket

	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	return err
}
