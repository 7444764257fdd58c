// Package feast 封装 Feast Feature Store 的在线特征读取，用于按病人 ID 拉取临床测量值。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Store 的客户端接口。
//
// 只使用在线特征存储（Online Store）：按实体（病人 ID）读取最新的特征值。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 获取在线特征
	//
	// 参数：
	//   - features: 特征名称列表，例如 ["patient_vitals:age", "patient_vitals:chol"]
	//   - entityRows: 实体行，例如 [{"patient_id": "p-1001"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，格式 <feature_view>:<feature>
	Features []string

	// EntityRows 实体行，例如 [{"patient_id": "p-1001"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，缺省使用客户端的项目）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称；缺失（null）的特征不出现
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	// Endpoint 服务端点
	Endpoint string

	// Project 项目名称
	Project string

	// Timeout 单次请求超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig
}

// AuthConfig 认证配置
type AuthConfig struct {
	// Type 认证类型，目前支持 static（静态 Token）
	Type string

	// Token 静态 Token；HTTP 客户端以 Bearer 头发送
	Token string

	// EnableTLS 是否启用 TLS（仅 gRPC）
	EnableTLS bool
}
