package feast

import (
	"context"
	"os"
	"strconv"
	"testing"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	"github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// TestGrpcClient_GetOnlineFeatures 需要连接真实的 Feast Serving：
// FEAST_HOST=localhost FEAST_PORT=6565 FEAST_PROJECT=heart go test ./feast/
func TestGrpcClient_GetOnlineFeatures(t *testing.T) {
	host := os.Getenv("FEAST_HOST")
	if host == "" {
		t.Skip("需要连接真实的 Feast 服务器才能运行")
	}
	port, _ := strconv.Atoi(os.Getenv("FEAST_PORT"))

	client, err := NewGrpcClient(host, port, os.Getenv("FEAST_PROJECT"))
	if err != nil {
		t.Fatalf("创建客户端失败: %v", err)
	}
	defer client.Close()

	resp, err := client.GetOnlineFeatures(context.Background(), &GetOnlineFeaturesRequest{
		Features:   []string{"patient_vitals:age", "patient_vitals:chol"},
		EntityRows: []map[string]interface{}{{"patient_id": "p-1001"}},
	})
	if err != nil {
		t.Fatalf("获取特征失败: %v", err)
	}
	if len(resp.FeatureVectors) != 1 {
		t.Errorf("期望 1 个特征向量，实际得到 %d 个", len(resp.FeatureVectors))
	}
}

func TestGrpcClient_RequestValidation(t *testing.T) {
	client := &GrpcClient{Project: "heart"}
	tests := []struct {
		name string
		req  *GetOnlineFeaturesRequest
	}{
		{"no features", &GetOnlineFeaturesRequest{EntityRows: []map[string]interface{}{{"patient_id": "1"}}}},
		{"no entities", &GetOnlineFeaturesRequest{Features: []string{"v:age"}}},
		{"closed", &GetOnlineFeaturesRequest{Features: []string{"v:age"}, EntityRows: []map[string]interface{}{{"patient_id": "1"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.GetOnlineFeatures(context.Background(), tt.req); err == nil {
				t.Error("期望返回错误")
			}
		})
	}
}

// TestConvertToSDKValue 测试值类型转换
func TestConvertToSDKValue(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"string", "p-1001"},
		{"int", 100},
		{"int64", int64(100)},
		{"float64", 3.14},
		{"bool", true},
		{"[]byte", []byte("test")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := convertToSDKValue(tt.input); result == nil || result.GetVal() == nil {
				t.Errorf("转换结果不应该为空")
			}
		})
	}
}

// TestConvertFromSDKValue 测试从 SDK 值类型转换
func TestConvertFromSDKValue(t *testing.T) {
	tests := []struct {
		name  string
		input *types.Value
		want  interface{}
	}{
		{"double", feastsdk.DoubleVal(2.3), 2.3},
		{"float", feastsdk.FloatVal(0.5), 0.5},
		{"int64", feastsdk.Int64Val(63), float64(63)},
		{"int32", &types.Value{Val: &types.Value_Int32Val{Int32Val: 1}}, float64(1)},
		{"bool_true", feastsdk.BoolVal(true), float64(1)},
		{"bool_false", feastsdk.BoolVal(false), float64(0)},
		{"string", feastsdk.StrVal("3"), "3"},
		{"null", &types.Value{}, nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertFromSDKValue(tt.input); got != tt.want {
				t.Errorf("convertFromSDKValue() = %v (%T), want %v", got, got, tt.want)
			}
		})
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		host     string
		port     int
	}{
		{"localhost:6565", "localhost", 6565},
		{"grpc://feast.internal:7000", "feast.internal", 7000},
		{"feast.internal", "feast.internal", 0},
	}
	for _, tt := range tests {
		host, port := parseEndpoint(tt.endpoint)
		if host != tt.host || port != tt.port {
			t.Errorf("parseEndpoint(%q) = %s, %d; want %s, %d", tt.endpoint, host, port, tt.host, tt.port)
		}
	}
}
