package source

import (
	"context"
	"fmt"

	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feast"
	"github.com/rushteam/cardiokit/pkg/conv"
	"github.com/rushteam/cardiokit/schema"
)

// FeastSource 从 Feast 在线特征存储读取病人记录。
// 特征名为 <View>:<field>，实体键为 Entity（默认 patient_id）。
type FeastSource struct {
	client  feast.Client
	View    string
	Entity  string
	Project string
	Fields  []string
}

// FeastOption 修改 FeastSource 的可选配置
type FeastOption func(*FeastSource)

// WithEntity 设置实体键名
func WithEntity(entity string) FeastOption { return func(s *FeastSource) { s.Entity = entity } }

// WithProject 覆盖客户端的项目名
func WithProject(project string) FeastOption { return func(s *FeastSource) { s.Project = project } }

// WithFields 覆盖读取的字段（默认 13 个原始字段）
func WithFields(fields []string) FeastOption {
	return func(s *FeastSource) { s.Fields = append([]string(nil), fields...) }
}

// NewFeastSource 创建 Feast 病人记录源
func NewFeastSource(client feast.Client, view string, opts ...FeastOption) *FeastSource {
	s := &FeastSource{
		client: client,
		View:   view,
		Entity: "patient_id",
		Fields: append([]string(nil), schema.RawFeatures...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FeastSource) featureName(field string) string {
	return s.View + ":" + field
}

func (s *FeastSource) Fetch(ctx context.Context, patientID string) (core.RawInput, error) {
	features := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		features[i] = s.featureName(f)
	}
	resp, err := s.client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
		Features:   features,
		EntityRows: []map[string]interface{}{{s.Entity: patientID}},
		Project:    s.Project,
	})
	if err != nil {
		return nil, &core.DomainError{
			Module:  core.ModuleSource,
			Code:    core.ErrorCodeUnavailable,
			Message: "feature store request failed",
			Field:   patientID,
			Err:     err,
		}
	}
	if len(resp.FeatureVectors) != 1 {
		return nil, &core.DomainError{
			Module:  core.ModuleSource,
			Code:    core.ErrorCodeUnavailable,
			Message: fmt.Sprintf("expected 1 feature vector, got %d", len(resp.FeatureVectors)),
			Field:   patientID,
		}
	}
	values := resp.FeatureVectors[0].Values
	if len(values) == 0 {
		return nil, core.NotFoundError(core.ModuleSource, patientID)
	}

	raw := make(core.RawInput, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := values[s.featureName(f)]
		if !ok {
			return nil, core.ValidationError(f, "missing in feature store for patient %s", patientID)
		}
		num, ok := conv.ToFloat64(v)
		if !ok {
			return nil, core.ValidationError(f, "non-numeric value %v in feature store", v)
		}
		raw[f] = num
	}
	return raw, nil
}
