package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/realorfakerf/myblog/config"
	"github.com/realorfakerf/myblog/internal/repository"
)

type minioRepository struct {
	cli       *minio.Client
	bucket    string
	publicURL string
}

func New(conf config.MinIO) (*minioRepository, error) {
	client, err := minio.New(fmt.Sprintf("%s:%s", conf.Host, conf.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(conf.User, conf.Pass, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio.BucketExists: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio.MakeBucket: %v", err)
		}
	}

	return &minioRepository{
		cli:       client,
		bucket:    conf.Bucket,
		publicURL: conf.PublicURL,
	}, nil
}

func (mr minioRepository) Put(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	_, err := mr.cli.PutObject(
		ctx,
		mr.bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchBucket" {
			return "", repository.ErrBucketNotFound
		}
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", mr.publicURL, mr.bucket, objectName), nil
}
