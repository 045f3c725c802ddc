// Package storage 保存商品图片，支持本地磁盘、S3 和 GCS
package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	"coffeeshop-backend/config"
)

// FileStorage 上传文件并返回可访问的URL
type FileStorage interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader, path string) (string, error)
}

// New 根据配置选择存储后端
func New(ctx context.Context, cfg config.Config) (FileStorage, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewLocalStorage(cfg.LocalStoragePath, cfg.BackendURL+"/uploads")
	case "s3":
		return NewS3Client(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSClient(ctx, cfg.GCSBucketName, cfg.GCSCredentialsFile)
	}
	return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.StorageDriver)
}
