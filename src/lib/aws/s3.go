package aws

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	log "github.com/sirupsen/logrus"
)

const presignTTL = time.Hour

type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// AssetStore uploads QR images and hands out time-limited links to them.
type AssetStore struct {
	client  S3PutAPI
	presign S3PresignAPI
	bucket  string
}

func NewAssetStore(client *s3.Client, bucket string) *AssetStore {
	return &AssetStore{client: client, presign: s3.NewPresignClient(client), bucket: bucket}
}

func (a *AssetStore) TTL() time.Duration {
	return presignTTL
}

// S3UploadAsset stores a jpeg under name and returns a presigned GET URL.
func (a *AssetStore) S3UploadAsset(ctx context.Context, name string, body []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return "", err
	}
	log.Printf("Added object '%s' to bucket '%s'", name, a.bucket)
	r, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(name),
	}, func(po *s3.PresignOptions) {
		po.Expires = presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("could not generate presigned URL for object [%s]: %w", name, err)
	}
	return r.URL, nil
}
