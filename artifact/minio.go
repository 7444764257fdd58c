package artifact

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions 是 MinIO / S3 连接参数
type MinioOptions struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinioClient 基于 minio-go 实现 S3Client
type MinioClient struct {
	client *minio.Client
}

// NewMinioClient 创建 MinIO 客户端（不检查桶是否存在，读取时再报错）
func NewMinioClient(opts MinioOptions) (*MinioClient, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}
	return &MinioClient{client: cli}, nil
}

// GetObject 读取对象。minio 的对象是惰性读取的，先 Stat 以便尽早暴露不存在等错误。
func (c *MinioClient) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}
