// Package builders 注册内置的工件源：file、http、s3。
package builders

import (
	"fmt"

	"github.com/rushteam/cardiokit/artifact"
	"github.com/rushteam/cardiokit/config"
)

func init() {
	config.Register("file", BuildFileSource)
	config.Register("http", BuildHTTPSource)
	config.Register("s3", BuildS3Source)
}

func BuildFileSource(cfg config.ArtifactsConfig) (artifact.Source, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("artifacts.dir is required")
	}
	return artifact.NewFileSource(cfg.Dir), nil
}

func BuildHTTPSource(cfg config.ArtifactsConfig) (artifact.Source, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("artifacts.url is required")
	}
	return artifact.NewHTTPSource(cfg.URL, cfg.Timeout), nil
}

func BuildS3Source(cfg config.ArtifactsConfig) (artifact.Source, error) {
	s3 := cfg.S3
	if s3.Endpoint == "" || s3.Bucket == "" {
		return nil, fmt.Errorf("artifacts.s3.endpoint and artifacts.s3.bucket are required")
	}
	client, err := artifact.NewMinioClient(artifact.MinioOptions{
		Endpoint:  s3.Endpoint,
		Region:    s3.Region,
		AccessKey: s3.AccessKey,
		SecretKey: s3.SecretKey,
		UseSSL:    s3.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return artifact.NewS3Source(client, s3.Bucket, s3.Prefix), nil
}
