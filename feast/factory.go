package feast

import (
	"strconv"
	"strings"
	"time"
)

// NewClient 根据端点创建客户端：http:// 或 https:// 前缀使用 HTTP feature server，
// 其余按 host:port 使用 gRPC。
//
// 示例：
//
//	client, err := feast.NewClient("localhost:6565", "heart", feast.WithTimeout(2*time.Second))
//	client, err := feast.NewClient("http://feast:6566", "heart")
func NewClient(endpoint, project string, opts ...ClientOption) (Client, error) {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		c, err := NewHTTPClient(endpoint, project, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	host, port := parseEndpoint(endpoint)
	c, err := NewGrpcClient(host, port, project, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 配置选项：设置认证信息
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}

// parseEndpoint 解析端点地址，返回 host 和 port
func parseEndpoint(endpoint string) (string, int) {
	// 移除协议前缀
	endpoint = strings.TrimPrefix(endpoint, "grpc://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	// 分割 host:port
	if i := strings.LastIndex(endpoint, ":"); i > 0 {
		if port, err := strconv.Atoi(endpoint[i+1:]); err == nil {
			return endpoint[:i], port
		}
	}

	// 如果没有端口，返回默认值
	return endpoint, 0
}
