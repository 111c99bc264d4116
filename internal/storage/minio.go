package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resume-insight-go/internal/config"
)

// ObjectStorage 原始简历文件的归档存储接口
type ObjectStorage interface {
	// UploadOriginal 按记录ID归档原始简历文件，返回对象键
	UploadOriginal(ctx context.Context, resumeID, fileExt string, reader io.Reader, fileSize int64, contentType string) (string, error)
	// GetOriginal 按对象键取回原始文件内容
	GetOriginal(ctx context.Context, objectKey string) ([]byte, error)
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO 把上传的原始简历归档到对象存储，解析后的结构化记录仍由 ArtifactStore 管理
type MinIO struct {
	client          *minio.Client
	originalsBucket string
}

// NewMinIO 创建MinIO客户端并确保归档桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	bucket := cfg.OriginalsBucket
	if bucket == "" {
		bucket = "resume-originals"
	}

	m := &MinIO{client: client, originalsBucket: bucket}
	if err := m.ensureBucketExists(context.Background(), bucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保归档存储桶 %s 存在失败: %w", bucket, err)
	}
	return m, nil
}

func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
	}
	return nil
}

// UploadOriginal 实现 ObjectStorage 接口
func (m *MinIO) UploadOriginal(ctx context.Context, resumeID, fileExt string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	objectKey := fmt.Sprintf("originals/%s%s", resumeID, fileExt)

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := m.client.PutObject(ctx, m.originalsBucket, objectKey, reader, fileSize, opts); err != nil {
		return "", fmt.Errorf("上传原始简历到MinIO失败: %w", err)
	}
	return objectKey, nil
}

// GetOriginal 实现 ObjectStorage 接口
func (m *MinIO) GetOriginal(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.originalsBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("从MinIO获取对象 %s 失败: %w", objectKey, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, fmt.Errorf("读取对象 %s 内容失败: %w", objectKey, err)
	}
	return buf.Bytes(), nil
}
