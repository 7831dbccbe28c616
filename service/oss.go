package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"storybook-server/config"
	"storybook-server/models"
)

var MinioClient *minio.Client

// InitMinIO 初始化连接，在 main.go 中调用；未启用时跳过
func InitMinIO() {
	cfg := config.AppConfig.MinIO
	if !cfg.Enabled {
		log.Println("MinIO 未启用，条目分享功能关闭")
		return
	}
	var err error
	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatalf("MinIO 初始化失败: %v", err)
	}
	log.Println("MinIO 连接成功")
}

// PublishEntry 把已保存条目的文件上传到对象存储，
// 返回 条目内相对路径 -> 预签名 URL 的映射。条目本身不被修改。
func PublishEntry(ctx context.Context, entry *models.LibraryEntry) (map[string]string, error) {
	if MinioClient == nil {
		return nil, fmt.Errorf("minio not configured")
	}
	cfg := config.AppConfig.MinIO
	bucketName := cfg.Bucket

	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 Bucket 失败: %w", err)
	}
	if !exists {
		if err := MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 Bucket 失败: %w", err)
		}
		log.Printf("Bucket '%s' 已创建", bucketName)
	}

	rels := []string{"story.txt", "title.txt"}
	if entry.CoverImage != "" {
		rels = append(rels, entry.CoverImage)
	}
	if entry.LastStoryPDF != "" {
		rels = append(rels, entry.LastStoryPDF)
	}
	if entry.LastScenePDF != "" {
		rels = append(rels, entry.LastScenePDF)
	}
	for _, sc := range entry.Scenes {
		if sc.ImagePath != "" {
			rels = append(rels, sc.ImagePath)
		}
	}

	urls := make(map[string]string, len(rels))
	for _, rel := range rels {
		localPath := filepath.Join(entry.Dir, filepath.FromSlash(rel))
		if _, err := os.Stat(localPath); err != nil {
			continue
		}
		objectName := fmt.Sprintf("books/%s/%s", entry.ID, rel)
		presigned, err := uploadFile(ctx, bucketName, localPath, objectName)
		if err != nil {
			log.Printf("上传失败 %s: %v", rel, err)
			continue
		}
		urls[rel] = presigned
	}
	return urls, nil
}

func uploadFile(ctx context.Context, bucketName, localPath, objectName string) (string, error) {
	// 根据文件扩展名确定 ContentType
	contentType := "application/octet-stream"
	switch filepath.Ext(objectName) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	case ".pdf":
		contentType = "application/pdf"
	case ".txt":
		contentType = "text/plain; charset=utf-8"
	case ".wav":
		contentType = "audio/wav"
	case ".mp3":
		contentType = "audio/mpeg"
	}

	_, err := MinioClient.FPutObject(ctx, bucketName, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传到 MinIO 失败: %w", err)
	}

	expiry := time.Hour * 72
	reqParams := make(url.Values)
	presignedURL, err := MinioClient.PresignedGetObject(ctx, bucketName, objectName, expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("生成签名 URL 失败: %w", err)
	}
	return presignedURL.String(), nil
}
