package feast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient 是 Feast Feature Server（feast serve）的 HTTP 客户端实现。
type HTTPClient struct {
	// Endpoint 服务端点，例如 "http://localhost:6566"
	Endpoint string

	// Project 项目名称（feature server 只服务一个项目，仅用于日志）
	Project string

	auth       *AuthConfig
	httpClient *http.Client
}

// NewHTTPClient 创建一个新的 Feast HTTP 客户端。
func NewHTTPClient(endpoint, project string, opts ...ClientOption) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	config := &ClientConfig{
		Endpoint: endpoint,
		Project:  project,
		Timeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(config)
	}

	return &HTTPClient{
		Endpoint:   strings.TrimRight(config.Endpoint, "/"),
		Project:    config.Project,
		auth:       config.Auth,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// onlineFeaturesResponse 是 /get-online-features 的响应：按特征列组织，
// results[i] 对应 metadata.feature_names[i]，values[j] 对应第 j 个实体。
type onlineFeaturesResponse struct {
	Metadata struct {
		FeatureNames []string `json:"feature_names"`
	} `json:"metadata"`
	Results []struct {
		Values   []interface{} `json:"values"`
		Statuses []string      `json:"statuses"`
	} `json:"results"`
}

// GetOnlineFeatures 获取在线特征（实现 Client 接口）
func (c *HTTPClient) GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("features are required")
	}
	if len(req.EntityRows) == 0 {
		return nil, fmt.Errorf("entity rows are required")
	}

	// 实体行转为列式：{"patient_id": ["p-1", "p-2"]}
	entities := make(map[string][]interface{})
	for _, row := range req.EntityRows {
		for k, v := range row {
			entities[k] = append(entities[k], v)
		}
	}
	for k, col := range entities {
		if len(col) != len(req.EntityRows) {
			return nil, fmt.Errorf("entity key %q missing in some rows", k)
		}
	}

	jsonData, err := json.Marshal(map[string]interface{}{
		"features":           req.Features,
		"entities":           entities,
		"full_feature_names": false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/get-online-features", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.addAuth(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("feast error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	var result onlineFeaturesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Metadata.FeatureNames) != len(result.Results) {
		return nil, fmt.Errorf("response has %d feature names but %d result columns",
			len(result.Metadata.FeatureNames), len(result.Results))
	}

	// 不带视图前缀的特征名映射回请求中的 <view>:<feature>
	refs := make(map[string]string, len(req.Features))
	for _, ref := range req.Features {
		_, name, ok := strings.Cut(ref, ":")
		if !ok {
			name = ref
		}
		refs[name] = ref
	}

	vectors := make([]FeatureVector, len(req.EntityRows))
	for i := range vectors {
		vectors[i] = FeatureVector{Values: make(map[string]interface{}), EntityRow: req.EntityRows[i]}
	}
	for col, name := range result.Metadata.FeatureNames {
		ref, ok := refs[name]
		if !ok {
			continue // 实体列
		}
		r := result.Results[col]
		for i := range vectors {
			if i >= len(r.Values) || r.Values[i] == nil {
				continue
			}
			if i < len(r.Statuses) && r.Statuses[i] != "PRESENT" {
				continue
			}
			vectors[i].Values[ref] = r.Values[i]
		}
	}
	return &GetOnlineFeaturesResponse{FeatureVectors: vectors}, nil
}

// Close 关闭空闲连接（实现 Client 接口）
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// addAuth 添加认证头
func (c *HTTPClient) addAuth(req *http.Request) {
	if c.auth == nil || c.auth.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.auth.Token)
}

var _ Client = (*HTTPClient)(nil)
