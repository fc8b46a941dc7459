package minio

import (
	"Agora/internal/api/config"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// UploadFile 上传文件到MinIO，返回对象名
func UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	uploadInfo, err := Client.PutObject(ctx, MainBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return uploadInfo.Key, nil
}

// DeleteFile 删除MinIO中的文件
func DeleteFile(ctx context.Context, objectName string) error {
	if Client == nil {
		return fmt.Errorf("minio client is not initialized")
	}
	if err := Client.RemoveObject(ctx, MainBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeleteFileByURL 按公共URL反解对象名后删除，外部图床的URL直接忽略
func DeleteFileByURL(ctx context.Context, fileURL string) error {
	if Client == nil {
		return fmt.Errorf("minio client is not initialized")
	}
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return fmt.Errorf("invalid file url: %w", err)
	}
	prefix := "/" + MainBucket + "/"
	if !strings.HasPrefix(parsed.Path, prefix) {
		return nil
	}
	return DeleteFile(ctx, strings.TrimPrefix(parsed.Path, prefix))
}

// GetPublicURL 获取文件的公共访问URL
func GetPublicURL(objectName string) string {
	cfg := config.Cfg.MinIO

	protocol := "http"
	if cfg.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, cfg.Endpoint, MainBucket, objectName)
}
