package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSClient struct {
	client     *storage.Client
	bucketName string
}

func NewGCSClient(ctx context.Context, bucketName, credentialsFile string) (*GCSClient, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("GCS 存储桶未配置")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCSClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *GCSClient) UploadFile(ctx context.Context, file *multipart.FileHeader, path string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	writer := c.client.Bucket(c.bucketName).Object(path).NewWriter(ctx)
	writer.ContentType = file.Header.Get("Content-Type")
	if _, err = io.Copy(writer, src); err != nil {
		writer.Close()
		return "", err
	}
	// Close 才真正完成上传
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("上传到 GCS 失败: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, path), nil
}

func (c *GCSClient) Close() error {
	return c.client.Close()
}
