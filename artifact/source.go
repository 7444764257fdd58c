package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Source 按键读取工件内容（清单、列清单、变换参数、模型）。
// 键是相对于工件根的 "/" 分隔路径。
type Source interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// FileSource 从本地目录读取工件
type FileSource struct {
	Dir string
}

// NewFileSource 创建本地目录工件源
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Dir, filepath.FromSlash(key)))
}

func (s *FileSource) String() string { return "file://" + s.Dir }

// HTTPSource 通过 HTTP GET <BaseURL>/<key> 读取工件
type HTTPSource struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPSource 创建 HTTP 工件源
//
// 用法：
//
//	src := artifact.NewHTTPSource("http://models.internal/heart/v3", 5*time.Second)
//	bundle, err := artifact.Load(ctx, src)
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// NewHTTPSourceWithClient 使用自定义 HTTP 客户端创建工件源
func NewHTTPSourceWithClient(baseURL string, client *http.Client) *HTTPSource {
	return &HTTPSource{BaseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *HTTPSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	url := s.BaseURL + "/" + strings.TrimLeft(key, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("http get %s: status=%d, body=%s", url, resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string { return s.BaseURL }

// S3Client S3 兼容协议客户端接口（不直接依赖具体 SDK，支持依赖注入）。
// S3 兼容协议支持 AWS S3、MinIO、阿里云 OSS、腾讯云 COS 等。
type S3Client interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// S3Source 从对象存储的 <Bucket>/<Prefix>/<key> 读取工件
type S3Source struct {
	client S3Client
	Bucket string
	Prefix string
}

// NewS3Source 创建对象存储工件源
func NewS3Source(client S3Client, bucket, prefix string) *S3Source {
	return &S3Source{client: client, Bucket: bucket, Prefix: strings.Trim(prefix, "/")}
}

func (s *S3Source) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("s3 client not configured")
	}
	objectKey := strings.TrimLeft(key, "/")
	if s.Prefix != "" {
		objectKey = path.Join(s.Prefix, objectKey)
	}
	rc, err := s.client.GetObject(ctx, s.Bucket, objectKey)
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", s.Bucket, objectKey, err)
	}
	return rc, nil
}

func (s *S3Source) String() string { return "s3://" + path.Join(s.Bucket, s.Prefix) }
