package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
)

func uploadDirectory(ctx context.Context, client *minio.Client, bucket, localPath, remotePrefix string) error {
	return filepath.Walk(localPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		relativePath, err := filepath.Rel(localPath, path)
		if err != nil {
			return err
		}

		objectName := filepath.Join(remotePrefix, relativePath)
		objectName = strings.ReplaceAll(objectName, "\\", "/")

		_, uploadErr := client.FPutObject(ctx, bucket, objectName, path, minio.PutObjectOptions{})
		return uploadErr
	})
}
